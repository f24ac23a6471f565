// Package transcript projects a backup's flat message stream into the
// grouped, display-ordered form the viewer and exporter render: filter
// out never-displayed records, derive per-message render directives,
// and pace the loading of older pages.
package transcript

import "github.com/tOgg1/scrollback/internal/backup"

// Filter drops records that must never be displayed: service events and
// content messages whose media kind is unsupported. Order and all other
// fields are preserved, so filtering an already-filtered sequence is a
// no-op.
func Filter(msgs []backup.Message) []backup.Message {
	filtered := make([]backup.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsService() {
			continue
		}
		if msg.Media != nil && msg.Media.Kind == backup.MediaUnsupported {
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered
}
