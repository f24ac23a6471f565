package archive

import (
	"context"
	"fmt"

	"github.com/tOgg1/scrollback/internal/backup"
)

// PutDialog upserts the dialog row.
func (a *Archive) PutDialog(ctx context.Context, d backup.Dialog) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO dialogs (kind, id, name) VALUES (?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET name = excluded.name
	`, d.Kind, d.ID, d.Name)
	if err != nil {
		return fmt.Errorf("store dialog: %w", err)
	}
	return nil
}

// PutParticipant upserts one participant of a dialog. A later import
// with a thumbnail wins over an earlier one without.
func (a *Archive) PutParticipant(ctx context.Context, dialog backup.Dialog, p backup.Participant) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO participants (dialog_kind, dialog_id, id, display_name, thumbnail)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(dialog_kind, dialog_id, id) DO UPDATE SET
			display_name = excluded.display_name,
			thumbnail = COALESCE(excluded.thumbnail, participants.thumbnail)
	`, dialog.Kind, dialog.ID, p.ID, p.DisplayName, p.Thumbnail)
	if err != nil {
		return fmt.Errorf("store participant: %w", err)
	}
	return nil
}

// AppendMessage inserts one message. Messages are append-only and keyed
// by (dialog, id): re-importing the same dump is a no-op per message.
// It reports whether a row was actually written.
func (a *Archive) AppendMessage(ctx context.Context, dialog backup.Dialog, msg backup.Message) (bool, error) {
	if err := msg.Validate(); err != nil {
		return false, err
	}

	mediaRef, mediaKind, mediaMIME := "", "", ""
	if msg.Media != nil {
		mediaRef = msg.Media.ContentRef
		mediaKind = string(msg.Media.Kind)
		mediaMIME = msg.Media.MIME
	}

	res, err := a.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages
			(dialog_kind, dialog_id, id, sender_id, ts, body, media_ref, media_kind, media_mime, service)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, dialog.Kind, dialog.ID, msg.ID, msg.SenderID, msg.Time.Unix(), msg.Body,
		mediaRef, mediaKind, mediaMIME, string(msg.Service))
	if err != nil {
		return false, fmt.Errorf("append message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append message result: %w", err)
	}
	return n > 0, nil
}
