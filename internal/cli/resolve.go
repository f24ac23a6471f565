package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/logging"
)

const maxSuggestions = 5

// selection holds the shared lookup flags: which backup, which dialog.
type selection struct {
	backupID   string
	entityID   string
	entityKind string
}

func shortID(id string) string {
	const limit = 8
	if len(id) <= limit {
		return id
	}
	return id[:limit]
}

// listBackups returns the ids of every archive under the backups dir.
func listBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), "backup.db")); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// resolveBackup picks the backup to operate on: explicit flag, then the
// last viewed one, then the sole archive on disk.
func (a *app) resolveBackup(explicit string) (string, error) {
	ids, err := listBackups(a.cfg.BackupsDir())
	if err != nil {
		return "", err
	}

	if explicit != "" {
		matches := matchPrefix(ids, explicit)
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
			if len(ids) == 0 {
				return "", fmt.Errorf("backup '%s' not found (no backups imported yet)", explicit)
			}
			return "", fmt.Errorf("backup '%s' not found. Example input: '%s'", explicit, shortID(ids[0]))
		default:
			return "", fmt.Errorf("backup '%s' is ambiguous; matches: %s (use a longer prefix)", explicit, formatMatches(matches))
		}
	}

	if stored, err := a.contexts.Load(); err == nil && stored.HasBackup() {
		for _, id := range ids {
			if id == stored.BackupID {
				return id, nil
			}
		}
		// The remembered backup is gone; fall through to the sole-archive
		// default rather than erroring on stale state.
	}

	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return "", errors.New("no backups found: run 'scrollback import <dump.json>' first")
	default:
		return "", fmt.Errorf("multiple backups found, use --backup: %s", formatMatches(ids))
	}
}

// resolveDialog picks the dialog within an already-open archive:
// explicit entity flags, then the last viewed dialog, then the
// archive's sole dialog.
func (a *app) resolveDialog(ctx context.Context, arch *archive.Archive, backupID string, sel selection) (backup.Dialog, error) {
	if sel.entityID != "" {
		if sel.entityKind != "" {
			return arch.Dialog(ctx, backup.DialogKind(sel.entityKind), sel.entityID)
		}
		return findDialog(ctx, arch, sel.entityID)
	}

	dialogs, err := arch.Dialogs(ctx)
	if err != nil {
		return backup.Dialog{}, err
	}

	if stored, err := a.contexts.Load(); err == nil && stored.HasDialog() && stored.BackupID == backupID {
		for _, d := range dialogs {
			if d.ID == stored.DialogID && string(d.Kind) == stored.DialogKind {
				return d, nil
			}
		}
	}

	switch len(dialogs) {
	case 1:
		return dialogs[0], nil
	case 0:
		return backup.Dialog{}, fmt.Errorf("%w: backup %s holds no dialogs", archive.ErrDialogNotFound, shortID(backupID))
	default:
		return backup.Dialog{}, fmt.Errorf("multiple dialogs found, use --entity: %s", formatDialogMatches(dialogs))
	}
}

// findDialog looks an entity id up without a kind: exact id match
// first, then name prefix/substring the way backups match.
func findDialog(ctx context.Context, arch *archive.Archive, idOrName string) (backup.Dialog, error) {
	dialogs, err := arch.Dialogs(ctx)
	if err != nil {
		return backup.Dialog{}, err
	}

	var matches []backup.Dialog
	normalized := strings.ToLower(strings.TrimSpace(idOrName))
	for _, d := range dialogs {
		if d.ID == idOrName {
			matches = append(matches, d)
			continue
		}
		name := strings.ToLower(d.Name)
		if strings.HasPrefix(name, normalized) || (len(normalized) >= 3 && strings.Contains(name, normalized)) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if len(dialogs) == 0 {
			return backup.Dialog{}, fmt.Errorf("%w: '%s' (archive holds no dialogs)", archive.ErrDialogNotFound, idOrName)
		}
		return backup.Dialog{}, fmt.Errorf("%w: '%s'. Example input: '%s' or '%s'", archive.ErrDialogNotFound, idOrName, dialogs[0].Name, dialogs[0].ID)
	default:
		return backup.Dialog{}, fmt.Errorf("entity '%s' is ambiguous; matches: %s (add --entity-type or use the full id)", idOrName, formatDialogMatches(matches))
	}
}

// rememberSelection stores the selection so the next bare invocation
// reopens it. Failures only warn; remembering is a convenience.
func (a *app) rememberSelection(backupID string, dialog backup.Dialog) {
	ctx, err := a.contexts.Load()
	if err != nil {
		logging.Warn().Err(err).Msg("context load failed")
		return
	}
	if ctx.BackupID != backupID {
		ctx.SetBackup(backupID)
	}
	ctx.SetDialog(dialog.ID, string(dialog.Kind), dialog.Name)
	if err := a.contexts.Save(ctx); err != nil {
		logging.Warn().Err(err).Msg("context save failed")
	}
}

func matchPrefix(ids []string, query string) []string {
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, query) {
			matches = append(matches, id)
		}
	}
	return matches
}

func formatMatches(ids []string) string {
	limit := len(ids)
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	parts := make([]string, 0, limit+1)
	for i := 0; i < limit; i++ {
		parts = append(parts, shortID(ids[i]))
	}
	if len(ids) > maxSuggestions {
		parts = append(parts, fmt.Sprintf("... and %d more", len(ids)-maxSuggestions))
	}
	return strings.Join(parts, ", ")
}

func formatDialogMatches(dialogs []backup.Dialog) string {
	limit := len(dialogs)
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	parts := make([]string, 0, limit+1)
	for i := 0; i < limit; i++ {
		d := dialogs[i]
		name := d.Name
		if name == "" {
			name = shortID(d.ID)
		}
		parts = append(parts, fmt.Sprintf("%s (%s %s)", name, d.Kind, shortID(d.ID)))
	}
	if len(dialogs) > maxSuggestions {
		parts = append(parts, fmt.Sprintf("... and %d more", len(dialogs)-maxSuggestions))
	}
	return strings.Join(parts, ", ")
}
