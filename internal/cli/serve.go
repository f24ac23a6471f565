package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/media"
	"github.com/tOgg1/scrollback/internal/webview"
)

func newServeCmd(state *app) *cobra.Command {
	var (
		sel  selection
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only web preview of a dialog's transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
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
			if err := session.LoadAll(ctx); err != nil {
				return err
			}
			state.rememberSelection(backupID, dialog)

			if addr == "" {
				addr = cfg.Serve.Addr
			}
			server := webview.NewServer(webview.Config{
				Addr:        addr,
				CORSOrigins: cfg.Serve.CORSOrigins,
				Location:    cfg.Location(),
				DateFormat:  cfg.Export.DateFormat,
				TimeFormat:  cfg.Export.TimeFormat,
			}, session)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&sel.backupID, "backup", "", "Backup id (prefix allowed)")
	cmd.Flags().StringVar(&sel.entityID, "entity", "", "Dialog id or name")
	cmd.Flags().StringVar(&sel.entityKind, "entity-type", "", "Dialog kind (user, group, channel)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
