package cli

import (
	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/media"
	"github.com/tOgg1/scrollback/internal/viewer"
)

func newViewCmd(state *app) *cobra.Command {
	var (
		sel   selection
		theme string
		me    string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a dialog's transcript in the terminal",
		Long:  "view opens the scrollable transcript of one dialog. Without flags it reopens the last viewed dialog, or the sole one if only one backup and dialog exist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := state.cfg

			backupID, err := state.resolveBackup(sel.backupID)
			if err != nil {
				return err
			}
			arch, err := archive.Open(cfg.BackupDir(backupID))
			if err != nil {
				return err
			}
			defer arch.Close()

			dialog, err := state.resolveDialog(ctx, arch, backupID, sel)
			if err != nil {
				return err
			}

			session, err := archive.OpenSession(ctx, arch, dialog, cfg.Viewer.PageSize, media.NewByteStore())
			if err != nil {
				return err
			}
			state.rememberSelection(backupID, dialog)

			// The alt screen owns the terminal from here; console logs
			// would corrupt it.
			if cfg.Logging.File == "" {
				logging.Suppress()
			}

			if theme == "" {
				theme = cfg.Viewer.Theme
			}
			if me == "" {
				me = cfg.Viewer.Identity
			}
			return viewer.Run(viewer.Config{
				Theme:      theme,
				ViewerID:   me,
				EdgeRows:   cfg.Viewer.EdgeRows,
				ExportDir:  cfg.Export.OutputDir,
				DateFormat: cfg.Export.DateFormat,
				TimeFormat: cfg.Export.TimeFormat,
				Location:   cfg.Location(),
			}, session)
		},
	}

	cmd.Flags().StringVar(&sel.backupID, "backup", "", "Backup id (prefix allowed)")
	cmd.Flags().StringVar(&sel.entityID, "entity", "", "Dialog id or name")
	cmd.Flags().StringVar(&sel.entityKind, "entity-type", "", "Dialog kind (user, group, channel)")
	cmd.Flags().StringVar(&theme, "theme", "", "Color theme (default, high-contrast)")
	cmd.Flags().StringVar(&me, "me", "", "Own participant id, marks outgoing messages")

	return cmd
}
