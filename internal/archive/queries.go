package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tOgg1/scrollback/internal/backup"
)

// Cursor marks a keyset pagination position in a dialog's message
// stream. The zero cursor starts from the newest message.
type Cursor struct {
	TS int64
	ID string
}

// Zero reports whether the cursor is the start-from-newest position.
func (c Cursor) Zero() bool {
	return c.TS == 0 && c.ID == ""
}

// Dialogs lists every dialog in the archive.
func (a *Archive) Dialogs(ctx context.Context) ([]backup.Dialog, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT kind, id, name FROM dialogs ORDER BY kind, id`)
	if err != nil {
		return nil, fmt.Errorf("query dialogs: %w", err)
	}
	defer rows.Close()

	var dialogs []backup.Dialog
	for rows.Next() {
		var d backup.Dialog
		if err := rows.Scan(&d.Kind, &d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan dialog row: %w", err)
		}
		dialogs = append(dialogs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialog query error: %w", err)
	}
	return dialogs, nil
}

// Dialog looks one dialog up by kind and id.
func (a *Archive) Dialog(ctx context.Context, kind backup.DialogKind, id string) (backup.Dialog, error) {
	var d backup.Dialog
	err := a.db.QueryRowContext(ctx, `
		SELECT kind, id, name FROM dialogs WHERE kind = ? AND id = ?
	`, kind, id).Scan(&d.Kind, &d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return backup.Dialog{}, fmt.Errorf("%w: %s/%s", ErrDialogNotFound, kind, id)
	}
	if err != nil {
		return backup.Dialog{}, fmt.Errorf("read dialog: %w", err)
	}
	return d, nil
}

// Participants returns the dialog's participant set keyed by id.
func (a *Archive) Participants(ctx context.Context, dialog backup.Dialog) (map[string]backup.Participant, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, display_name, thumbnail FROM participants
		WHERE dialog_kind = ? AND dialog_id = ?
	`, dialog.Kind, dialog.ID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[string]backup.Participant)
	for rows.Next() {
		var p backup.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Thumbnail); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("participant query error: %w", err)
	}
	return participants, nil
}

// MessagesBefore returns the next page of messages strictly older than
// the cursor, ascending in (ts, id). The returned cursor points at the
// oldest message of the page; more reports whether older records remain.
func (a *Archive) MessagesBefore(ctx context.Context, dialog backup.Dialog, before Cursor, limit int) (msgs []backup.Message, next Cursor, more bool, err error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, sender_id, ts, body, media_ref, media_kind, media_mime, service
		FROM messages
		WHERE dialog_kind = ? AND dialog_id = ?`
	args := []any{dialog.Kind, dialog.ID}

	if !before.Zero() {
		query += ` AND (ts < ? OR (ts = ? AND id < ?))`
		args = append(args, before.TS, before.TS, before.ID)
	}

	// One extra row answers "are there older messages" without a second
	// query.
	query += ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Cursor{}, false, fmt.Errorf("query message page: %w", err)
	}
	defer rows.Close()

	var page []backup.Message
	for rows.Next() {
		var (
			msg       backup.Message
			ts        int64
			mediaRef  string
			mediaKind string
			mediaMIME string
			service   string
		)
		if err := rows.Scan(&msg.ID, &msg.SenderID, &ts, &msg.Body, &mediaRef, &mediaKind, &mediaMIME, &service); err != nil {
			return nil, Cursor{}, false, fmt.Errorf("scan message row: %w", err)
		}
		msg.Time = time.Unix(ts, 0)
		msg.Service = backup.ServiceKind(service)
		if mediaKind != "" {
			msg.Media = &backup.Media{ContentRef: mediaRef, Kind: backup.MediaKind(mediaKind), MIME: mediaMIME}
		}
		page = append(page, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, Cursor{}, false, fmt.Errorf("message page query error: %w", err)
	}

	if len(page) > limit {
		page = page[:limit]
		more = true
	}
	if len(page) == 0 {
		return nil, before, false, nil
	}

	oldest := page[len(page)-1]
	next = Cursor{TS: oldest.Time.Unix(), ID: oldest.ID}

	// Descending from the query, ascending for display.
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, next, more, nil
}

// MessageCount returns the number of stored messages for the dialog,
// service events included.
func (a *Archive) MessageCount(ctx context.Context, dialog backup.Dialog) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE dialog_kind = ? AND dialog_id = ?
	`, dialog.Kind, dialog.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
