package media

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnailDataURIEmpty(t *testing.T) {
	assert.Equal(t, "", ThumbnailDataURI(nil))
	assert.Equal(t, "", ThumbnailDataURI([]byte{}))
}

func TestThumbnailDataURIExpandsCompactEncoding(t *testing.T) {
	compact := []byte{compactMarker, 0xAA, 0xBB, 0xCC}

	uri := ThumbnailDataURI(compact)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xAA, 0xBB, 0xCC, 0xFF, 0xD9}, decoded)
}

func TestThumbnailDataURIWrapsPlainJPEG(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}

	uri := ThumbnailDataURI(jpeg)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, jpeg, decoded)
}

func TestCompactThumbnailRoundTrip(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0x10, 0x20, 0x30, 0xFF, 0xD9}

	compact := CompactThumbnail(jpeg)
	require.Equal(t, byte(compactMarker), compact[0])
	assert.Len(t, compact, len(jpeg)-3)

	uri := ThumbnailDataURI(compact)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, jpeg, decoded)
}

func TestCompactThumbnailLeavesNonJPEGAlone(t *testing.T) {
	blob := []byte{0x89, 0x50, 0x4E, 0x47}
	assert.Equal(t, blob, CompactThumbnail(blob))
}

func TestByteStoreNeverShrinks(t *testing.T) {
	store := NewByteStore()
	store.Put("a", []byte{1})
	store.Put("b", []byte{2})
	store.Put("", []byte{3})

	assert.Equal(t, 2, store.Len())
	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte{1}, got)
	_, ok = store.Get("missing")
	assert.False(t, ok)
}
