// Package ingest builds a backup archive from a chat-export JSON dump:
// the {name, type, id, messages} shape desktop chat exporters write,
// with media files referenced by relative path beside the dump.
package ingest

import (
	"encoding/json"
	"strings"

	"github.com/tOgg1/scrollback/internal/backup"
)

type dumpFile struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	ID       json.Number   `json:"id"`
	Messages []dumpMessage `json:"messages"`
}

type dumpMessage struct {
	ID           json.Number     `json:"id"`
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	DateUnixtime string          `json:"date_unixtime"`
	From         string          `json:"from"`
	FromID       string          `json:"from_id"`
	Actor        string          `json:"actor"`
	ActorID      string          `json:"actor_id"`
	Action       string          `json:"action"`
	Text         json.RawMessage `json:"text"`
	Photo        string          `json:"photo"`
	File         string          `json:"file"`
	FileName     string          `json:"file_name"`
	MimeType     string          `json:"mime_type"`
	MediaType    string          `json:"media_type"`
}

type textRun struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// flattenText handles the two shapes the dump uses for a message body:
// a plain string, or an array mixing strings and rich-text runs. Runs
// concatenate in order.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var b strings.Builder
	for _, part := range parts {
		var s string
		if err := json.Unmarshal(part, &s); err == nil {
			b.WriteString(s)
			continue
		}
		var run textRun
		if err := json.Unmarshal(part, &run); err == nil {
			b.WriteString(run.Text)
		}
	}
	return b.String()
}

// dialogKind maps the dump's chat type to a dialog kind.
func dialogKind(dumpType string) backup.DialogKind {
	switch dumpType {
	case "personal_chat", "saved_messages", "bot_chat":
		return backup.DialogUser
	case "public_channel", "private_channel":
		return backup.DialogChannel
	default:
		return backup.DialogGroup
	}
}

// unsupportedMediaTypes lists dump media kinds the viewer cannot
// render. They are archived but filtered from display.
var unsupportedMediaTypes = map[string]bool{
	"sticker":       true,
	"animation":     true,
	"voice_message": true,
	"video_message": true,
	"video_file":    true,
	"audio_file":    true,
}
