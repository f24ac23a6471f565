package media

import "encoding/base64"

// compactMarker tags the legacy compact thumbnail encoding: the marker
// byte followed by a JPEG payload with its SOI/EOI markers stripped.
const compactMarker = 0x01

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// ThumbnailDataURI expands a participant thumbnail blob into an image
// data URI. Nil or empty input yields ""; no decoding is attempted. A
// blob without the compact marker is assumed to be a plain JPEG and is
// wrapped as-is.
func ThumbnailDataURI(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	payload := b
	if b[0] == compactMarker {
		restored := make([]byte, 0, len(b)+3)
		restored = append(restored, jpegSOI...)
		restored = append(restored, b[1:]...)
		restored = append(restored, jpegEOI...)
		payload = restored
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
}

// CompactThumbnail converts a plain JPEG into the compact encoding by
// stripping its SOI/EOI markers behind the marker byte. Non-JPEG input
// is returned unchanged.
func CompactThumbnail(b []byte) []byte {
	if len(b) < 4 || b[0] != 0xFF || b[1] != 0xD8 {
		return b
	}
	trimmed := b[2:]
	if n := len(trimmed); n >= 2 && trimmed[n-2] == 0xFF && trimmed[n-1] == 0xD9 {
		trimmed = trimmed[:n-2]
	}
	out := make([]byte, 0, len(trimmed)+1)
	out = append(out, compactMarker)
	out = append(out, trimmed...)
	return out
}
