package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/export"
)

func newInspectCmd(state *app) *cobra.Command {
	var backupID string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a backup's dialogs, message counts, and blob stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := state.cfg

			id, err := state.resolveBackup(backupID)
			if err != nil {
				return err
			}
			arch, err := archive.Open(cfg.BackupDir(id))
			if err != nil {
				return err
			}
			defer arch.Close()

			meta, err := arch.Meta(ctx)
			if err != nil {
				return err
			}
			dialogs, err := arch.Dialogs(ctx)
			if err != nil {
				return err
			}
			blobCount, blobSize, err := arch.Blobs().Stats()
			if err != nil {
				return err
			}

			loc := cfg.Location()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backup %s\n", meta.ID)
			fmt.Fprintf(out, "period %s to %s\n",
				export.FormatPeriodBound(meta.Period.Start, loc, export.LabelAllTime, cfg.Export.DateFormat),
				export.FormatPeriodBound(meta.Period.End, loc, export.LabelUnknown, cfg.Export.DateFormat))
			fmt.Fprintf(out, "imported %s\n", meta.ImportedAt)
			fmt.Fprintf(out, "blobs %d (%s)\n\n", blobCount, formatBytes(blobSize))

			rows := make([][]string, 0, len(dialogs))
			for _, d := range dialogs {
				count, err := arch.MessageCount(ctx, d)
				if err != nil {
					return err
				}
				participants, err := arch.Participants(ctx, d)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					d.Name,
					string(d.Kind),
					d.ID,
					strconv.Itoa(count),
					strconv.Itoa(len(participants)),
				})
			}
			return writeTable(out, []string{"DIALOG", "KIND", "ID", "MESSAGES", "PARTICIPANTS"}, rows)
		},
	}

	cmd.Flags().StringVar(&backupID, "backup", "", "Backup id (prefix allowed)")

	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
