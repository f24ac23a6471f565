package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tOgg1/scrollback/internal/backup"
)

// HTMLMIME is the MIME type of the serialized document.
const HTMLMIME = "text/html; charset=utf-8"

// Sink is the file-save collaborator: it persists a finished document
// under a suggested name and reports where it landed.
type Sink interface {
	Save(ctx context.Context, name, mime string, data []byte) (string, error)
}

// DirSink saves documents into a directory on the local filesystem.
type DirSink struct {
	Dir string
}

// Save writes the blob under the suggested name, creating the directory
// if needed.
func (s DirSink) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// Filename derives the suggested export filename from the dialog name
// and the formatted period bounds, with every whitespace run collapsed
// to the underscore filler.
func Filename(dialogName string, period backup.Period, loc *time.Location, dateFormat string) string {
	parts := []string{
		collapse(dialogName),
		collapse(FormatPeriodBound(period.Start, loc, LabelAllTime, dateFormat)),
		collapse(FormatPeriodBound(period.End, loc, LabelUnknown, dateFormat)),
	}
	return strings.Join(parts, "_") + ".html"
}

func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "_"
	}
	return strings.Join(fields, "_")
}
