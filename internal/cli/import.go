package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/ingest"
)

func newImportCmd(state *app) *cobra.Command {
	var (
		backupID string
		period   string
	)

	cmd := &cobra.Command{
		Use:   "import <dump.json>",
		Short: "Import a chat dump into a local backup archive",
		Long:  "import reads an exported chat dump (the JSON file plus its media directories) and builds a paginated archive under the data directory. Re-importing the same dump is a no-op per message.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := state.cfg

			p, err := parsePeriod(period)
			if err != nil {
				return err
			}

			opts := ingest.Options{BackupID: backupID, Period: p}
			// The archive directory is named by the backup id, so it has
			// to exist before the run even when generated.
			if opts.BackupID == "" {
				opts.BackupID = uuid.NewString()
			}

			arch, err := archive.Create(cfg.BackupDir(opts.BackupID))
			if err != nil {
				return err
			}
			defer arch.Close()

			report, err := ingest.Run(ctx, arch, args[0], opts)
			if err != nil {
				return err
			}
			state.rememberSelection(report.BackupID, report.Dialog)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported backup %s\n\n", report.BackupID)
			return writeTable(out,
				[]string{"DIALOG", "KIND", "MESSAGES", "SERVICE", "SKIPPED", "PARTICIPANTS", "BLOBS", "MISSING"},
				[][]string{{
					report.Dialog.Name,
					string(report.Dialog.Kind),
					strconv.Itoa(report.Messages),
					strconv.Itoa(report.ServiceMsgs),
					strconv.Itoa(report.Skipped),
					strconv.Itoa(report.Participants),
					strconv.Itoa(report.Blobs),
					strconv.Itoa(report.MissingFiles),
				}})
		},
	}

	cmd.Flags().StringVar(&backupID, "backup", "", "Backup id (default: generated)")
	cmd.Flags().StringVar(&period, "period", "", "Capture window as start,end dates (2006-01-02,2006-02-01); either side may be empty")

	return cmd
}

// parsePeriod reads the "start,end" flag value. Empty sides stay open.
func parsePeriod(s string) (backup.Period, error) {
	if strings.TrimSpace(s) == "" {
		return backup.Period{}, nil
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return backup.Period{}, fmt.Errorf("invalid --period %q: expected start,end", s)
	}

	var p backup.Period
	for i, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return backup.Period{}, fmt.Errorf("invalid --period date %q: %w", raw, err)
		}
		if i == 0 {
			p.Start = t.Unix()
		} else {
			// The end bound covers its whole day.
			p.End = t.AddDate(0, 0, 1).Add(-time.Second).Unix()
		}
	}
	if p.Start != 0 && p.End != 0 && p.End < p.Start {
		return backup.Period{}, fmt.Errorf("invalid --period %q: end precedes start", s)
	}
	return p, nil
}
