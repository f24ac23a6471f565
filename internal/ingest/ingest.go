package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/media"
)

// Options controls one import run.
type Options struct {
	// BackupID names the backup; empty generates one.
	BackupID string

	// Period is the requested capture window recorded on the backup.
	Period backup.Period
}

// Report summarizes what one run wrote.
type Report struct {
	BackupID     string
	Dialog       backup.Dialog
	Messages     int
	ServiceMsgs  int
	Skipped      int
	Participants int
	Blobs        int
	MissingFiles int
}

// Run reads the dump at dumpPath into the archive. Runs are idempotent
// per (dialog, message id): re-importing the same dump skips every
// already-stored message instead of double-writing.
func Run(ctx context.Context, arch *archive.Archive, dumpPath string, opts Options) (Report, error) {
	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return Report{}, fmt.Errorf("read dump: %w", err)
	}

	var dump dumpFile
	if err := json.Unmarshal(data, &dump); err != nil {
		return Report{}, fmt.Errorf("decode dump: %w", err)
	}

	backupID := strings.TrimSpace(opts.BackupID)
	if backupID == "" {
		backupID = uuid.NewString()
	}
	log := logging.WithBackup(backupID)

	dialog := backup.Dialog{
		ID:   dump.ID.String(),
		Kind: dialogKind(dump.Type),
		Name: dump.Name,
	}
	if dialog.Name == "" {
		dialog.Name = "Untitled"
	}

	if err := arch.SetMeta(ctx, archive.Meta{
		ID:         backupID,
		Period:     opts.Period,
		ImportedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return Report{}, err
	}
	if err := arch.PutDialog(ctx, dialog); err != nil {
		return Report{}, err
	}

	report := Report{BackupID: backupID, Dialog: dialog}
	dumpDir := filepath.Dir(dumpPath)
	seenParticipants := map[string]bool{}

	for i := range dump.Messages {
		dm := &dump.Messages[i]

		msg, blobPath, ok := convertMessage(dm)
		if !ok {
			continue
		}

		if err := recordParticipant(ctx, arch, dialog, dumpDir, dm, seenParticipants, &report); err != nil {
			return report, err
		}

		written, err := arch.AppendMessage(ctx, dialog, msg)
		if err != nil {
			return report, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		if !written {
			report.Skipped++
			continue
		}

		if blobPath != "" {
			stored, err := storeBlob(arch, dumpDir, blobPath, msg.Media.ContentRef, log)
			if err != nil {
				return report, err
			}
			if stored {
				report.Blobs++
			} else {
				// Keep the record; the ref stays unresolvable and the
				// viewer shows a placeholder.
				report.MissingFiles++
			}
		}
		if msg.IsService() {
			report.ServiceMsgs++
		} else {
			report.Messages++
		}
		log.Debug().Str("id", msg.ID).Str("body", logging.Snippet(msg.Body)).Msg("message imported")
	}

	log.Info().
		Str("dialog", dialog.Name).
		Int("messages", report.Messages).
		Int("service", report.ServiceMsgs).
		Int("skipped", report.Skipped).
		Int("blobs", report.Blobs).
		Msg("import finished")
	return report, nil
}

// convertMessage maps one dump record to the domain model. The blob
// path, when non-empty, names the media file to store for the message.
func convertMessage(dm *dumpMessage) (msg backup.Message, blobPath string, ok bool) {
	msg.ID = dm.ID.String()
	if msg.ID == "" {
		return backup.Message{}, "", false
	}
	msg.Time = parseDumpTime(dm)
	if msg.Time.IsZero() {
		return backup.Message{}, "", false
	}

	if dm.Type == "service" {
		msg.Service = backup.ServiceKind(dm.Action)
		if msg.Service == "" {
			msg.Service = "unknown"
		}
		return msg, "", true
	}

	msg.SenderID = dm.FromID
	msg.Body = flattenText(dm.Text)

	switch {
	case dm.Photo != "":
		msg.Media = &backup.Media{ContentRef: uuid.NewString(), Kind: backup.MediaPhoto, MIME: backup.PhotoMIME}
		blobPath = dm.Photo
	case dm.File != "":
		if unsupportedMediaTypes[dm.MediaType] {
			msg.Media = &backup.Media{Kind: backup.MediaUnsupported}
			return msg, "", true
		}
		mime := dm.MimeType
		if mime == "" {
			mime = "application/octet-stream"
		}
		kind := backup.MediaDocument
		if strings.HasPrefix(mime, "image/") {
			kind = backup.MediaPhoto
			mime = backup.PhotoMIME
		}
		msg.Media = &backup.Media{ContentRef: uuid.NewString(), Kind: kind, MIME: mime}
		blobPath = dm.File
	}

	return msg, blobPath, true
}

// recordParticipant upserts the message's sender, attaching a compacted
// avatar when a profile picture exists beside the dump.
func recordParticipant(ctx context.Context, arch *archive.Archive, dialog backup.Dialog, dumpDir string, dm *dumpMessage, seen map[string]bool, report *Report) error {
	id, name := dm.FromID, dm.From
	if dm.Type == "service" {
		id, name = dm.ActorID, dm.Actor
	}
	if id == "" || seen[id] {
		return nil
	}
	seen[id] = true

	p := backup.Participant{ID: id, DisplayName: name}
	avatarPath := filepath.Join(dumpDir, "profile_pictures", id+".jpg")
	if data, err := os.ReadFile(avatarPath); err == nil {
		p.Thumbnail = media.CompactThumbnail(data)
	}

	if err := arch.PutParticipant(ctx, dialog, p); err != nil {
		return err
	}
	report.Participants++
	return nil
}

// storeBlob reads a media file referenced by the dump and stores it
// under the message's content ref. A missing file is not fatal.
func storeBlob(arch *archive.Archive, dumpDir, rel, ref string, log zerolog.Logger) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dumpDir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		log.Warn().Str("file", rel).Msg("media file missing from dump")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read media file %s: %w", rel, err)
	}
	if err := arch.Blobs().Put(ref, data); err != nil {
		return false, err
	}
	return true, nil
}

func parseDumpTime(dm *dumpMessage) time.Time {
	if dm.DateUnixtime != "" {
		if sec, err := strconv.ParseInt(dm.DateUnixtime, 10, 64); err == nil && sec > 0 {
			return time.Unix(sec, 0)
		}
	}
	if dm.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", dm.Date, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
