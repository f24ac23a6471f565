package viewer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/transcript"
)

var rowsZone = time.FixedZone("UTC+2", 2*60*60)

func projectedEntries(t *testing.T, msgs []backup.Message) []transcript.Entry {
	t.Helper()
	participants := map[string]backup.Participant{
		"alice": {ID: "alice", DisplayName: "Alice Archer"},
		"me":    {ID: "me", DisplayName: "Viewer"},
	}
	return transcript.Project(msgs, "me", participants, rowsZone, nil)
}

func TestRenderLinesStructure(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, rowsZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base, Body: "hello there"},
		{ID: "2", SenderID: "me", Time: base.Add(time.Minute), Body: "hi"},
	}

	lines := renderLines(projectedEntries(t, msgs), 60, themePalette(ThemeDefault), rowsZone)
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "10 March 2024", "date separator present")
	assert.Contains(t, joined, "Alice Archer", "incoming sender header present")
	assert.Contains(t, joined, "hello there")
	assert.Contains(t, joined, "hi")
	assert.NotContains(t, joined, "Viewer", "outgoing messages show no sender header")
}

func TestRenderLinesMediaIndicators(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, rowsZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base,
			Media: &backup.Media{ContentRef: "gone", Kind: backup.MediaPhoto, MIME: backup.PhotoMIME}},
		{ID: "2", SenderID: "alice", Time: base.Add(time.Minute), Body: "report",
			Media: &backup.Media{ContentRef: "gone2", Kind: backup.MediaDocument, MIME: "application/pdf"}},
	}

	lines := renderLines(projectedEntries(t, msgs), 60, themePalette(ThemeDefault), rowsZone)
	joined := strings.Join(lines, "\n")

	// Without a resolver every ref projects as missing.
	assert.Contains(t, joined, "[media not loaded]")
}

func TestRenderLinesWrapsLongBodies(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, rowsZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base, Body: strings.Repeat("longish words ", 20)},
	}

	lines := renderLines(projectedEntries(t, msgs), 40, themePalette(ThemeDefault), rowsZone)
	require.Greater(t, len(lines), 4, "long body wraps over several lines")
}

func TestNewModelRejectsUnknownTheme(t *testing.T) {
	_, err := NewModel(Config{Theme: "neon"}, nil)
	assert.Error(t, err)
}

func TestSeparatorLineCentered(t *testing.T) {
	line := separatorLine("10 March 2024", 40)
	assert.Contains(t, line, " 10 March 2024 ")
	assert.True(t, strings.HasPrefix(line, "─"))
	assert.True(t, strings.HasSuffix(line, "─"))
}
