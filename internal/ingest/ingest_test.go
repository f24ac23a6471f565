package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/transcript"
)

const testDump = `{
  "name": "Weekend plans",
  "type": "private_group",
  "id": 42,
  "messages": [
    {
      "id": 1,
      "type": "service",
      "date": "2024-03-09T10:00:00",
      "date_unixtime": "1709978400",
      "actor": "Alice Archer",
      "actor_id": "user100",
      "action": "create_group",
      "text": ""
    },
    {
      "id": 2,
      "type": "message",
      "date_unixtime": "1709978460",
      "from": "Alice Archer",
      "from_id": "user100",
      "text": "hello there"
    },
    {
      "id": 3,
      "type": "message",
      "date_unixtime": "1709978520",
      "from": "Bob",
      "from_id": "user200",
      "text": [
        "check ",
        {"type": "link", "text": "https://example.org"},
        " out"
      ],
      "photo": "photos/pic.jpg"
    },
    {
      "id": 4,
      "type": "message",
      "date_unixtime": "1709978580",
      "from": "Bob",
      "from_id": "user200",
      "text": "",
      "file": "stickers/wave.webp",
      "media_type": "sticker"
    },
    {
      "id": 5,
      "type": "message",
      "date_unixtime": "1709978640",
      "from": "Alice Archer",
      "from_id": "user100",
      "text": "the report",
      "file": "files/report.pdf",
      "mime_type": "application/pdf"
    },
    {
      "id": 6,
      "type": "message",
      "date_unixtime": "1709978700",
      "from": "Bob",
      "from_id": "user200",
      "text": "lost attachment",
      "file": "files/gone.bin",
      "mime_type": "application/octet-stream"
    }
  ]
}`

func writeDump(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "photos"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profile_pictures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photos", "pic.jpg"), []byte{0xFF, 0xD8, 0x11, 0xFF, 0xD9}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "report.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile_pictures", "user100.jpg"), []byte{0xFF, 0xD8, 0x22, 0xFF, 0xD9}, 0o644))

	path := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(path, []byte(testDump), 0o644))
	return path
}

func runImport(t *testing.T, arch *archive.Archive, dumpPath string) Report {
	t.Helper()
	report, err := Run(context.Background(), arch, dumpPath, Options{
		BackupID: "b1",
		Period:   backup.Period{Start: 1709900000, End: 0},
	})
	require.NoError(t, err)
	return report
}

func TestRunImportsDump(t *testing.T) {
	arch, err := archive.Create(t.TempDir())
	require.NoError(t, err)
	defer arch.Close()
	ctx := context.Background()

	report := runImport(t, arch, writeDump(t))

	assert.Equal(t, "b1", report.BackupID)
	assert.Equal(t, backup.DialogGroup, report.Dialog.Kind)
	assert.Equal(t, "Weekend plans", report.Dialog.Name)
	assert.Equal(t, 5, report.Messages)
	assert.Equal(t, 1, report.ServiceMsgs)
	assert.Equal(t, 3, report.Participants, "two senders plus the service actor counted once each")
	assert.Equal(t, 2, report.Blobs)
	assert.Equal(t, 1, report.MissingFiles)

	meta, err := arch.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1709900000), meta.Period.Start)

	page, _, more, err := arch.MessagesBefore(ctx, report.Dialog, archive.Cursor{}, 50)
	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, page, 6)

	assert.True(t, page[0].IsService())
	assert.Equal(t, backup.ServiceKind("create_group"), page[0].Service)
	assert.Equal(t, "hello there", page[1].Body)
	assert.Equal(t, "check https://example.org out", page[2].Body, "rich-text runs concatenate")

	require.NotNil(t, page[2].Media)
	assert.Equal(t, backup.MediaPhoto, page[2].Media.Kind)
	data, ok, err := arch.Blobs().Get(page[2].Media.ContentRef)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x11, 0xFF, 0xD9}, data)

	require.NotNil(t, page[3].Media)
	assert.Equal(t, backup.MediaUnsupported, page[3].Media.Kind, "stickers map to unsupported")
	assert.Empty(t, page[3].Media.ContentRef)

	require.NotNil(t, page[4].Media)
	assert.Equal(t, backup.MediaDocument, page[4].Media.Kind)
	assert.Equal(t, "application/pdf", page[4].Media.MIME)

	require.NotNil(t, page[5].Media)
	_, ok, err = arch.Blobs().Get(page[5].Media.ContentRef)
	require.NoError(t, err)
	assert.False(t, ok, "missing file leaves an unresolvable ref")
}

func TestRunRecordsParticipantAvatars(t *testing.T) {
	arch, err := archive.Create(t.TempDir())
	require.NoError(t, err)
	defer arch.Close()

	report := runImport(t, arch, writeDump(t))

	participants, err := arch.Participants(context.Background(), report.Dialog)
	require.NoError(t, err)
	require.Contains(t, participants, "user100")
	require.Contains(t, participants, "user200")

	assert.NotEmpty(t, participants["user100"].Thumbnail, "profile picture stored compacted")
	assert.Equal(t, byte(0x01), participants["user100"].Thumbnail[0])
	assert.Empty(t, participants["user200"].Thumbnail)
}

func TestRunIsIdempotent(t *testing.T) {
	arch, err := archive.Create(t.TempDir())
	require.NoError(t, err)
	defer arch.Close()
	dumpPath := writeDump(t)

	first := runImport(t, arch, dumpPath)
	second := runImport(t, arch, dumpPath)

	assert.Equal(t, 0, second.Messages)
	assert.Equal(t, 0, second.ServiceMsgs)
	assert.Equal(t, 0, second.Blobs, "skipped messages store no new blobs")
	assert.Equal(t, first.Messages+first.ServiceMsgs, second.Skipped)

	n, err := arch.MessageCount(context.Background(), first.Dialog)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestImportedStreamFiltersCleanly(t *testing.T) {
	arch, err := archive.Create(t.TempDir())
	require.NoError(t, err)
	defer arch.Close()

	report := runImport(t, arch, writeDump(t))
	page, _, _, err := arch.MessagesBefore(context.Background(), report.Dialog, archive.Cursor{}, 50)
	require.NoError(t, err)

	visible := transcript.Filter(page)
	assert.Len(t, visible, 4, "service event and sticker are excluded from display")
}

func TestFlattenText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"hello"`, "hello"},
		{"empty array", `[]`, ""},
		{"mixed runs", `["a ", {"type":"bold","text":"b"}, " c"]`, "a b c"},
		{"invalid", `12`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenText(json.RawMessage(tt.raw)))
		})
	}
}
