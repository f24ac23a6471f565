package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/backup"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    backup.Period
		wantErr string
	}{
		{name: "empty keeps both sides open", input: "", want: backup.Period{}},
		{name: "open start", input: ",2026-02-01", want: backup.Period{
			End: time.Date(2026, 2, 1, 23, 59, 59, 0, time.Local).Unix(),
		}},
		{name: "open end", input: "2026-01-15,", want: backup.Period{
			Start: time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local).Unix(),
		}},
		{name: "both bounds", input: "2026-01-15,2026-02-01", want: backup.Period{
			Start: time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local).Unix(),
			End:   time.Date(2026, 2, 1, 23, 59, 59, 0, time.Local).Unix(),
		}},
		{name: "missing comma", input: "2026-01-15", wantErr: "expected start,end"},
		{name: "bad date", input: "15/01/2026,", wantErr: "invalid --period date"},
		{name: "inverted", input: "2026-02-01,2026-01-15", wantErr: "end precedes start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePeriod(tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTableAligns(t *testing.T) {
	var b strings.Builder
	err := writeTable(&b, []string{"NAME", "COUNT"}, [][]string{
		{"short", "1"},
		{"much longer name", "23"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "1"), strings.Index(lines[2], "23"),
		"second column starts at the same offset in every row")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(1536*1024))
}
