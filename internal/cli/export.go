package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/export"
	"github.com/tOgg1/scrollback/internal/media"
	"github.com/tOgg1/scrollback/internal/transcript"
)

func newExportCmd(state *app) *cobra.Command {
	var (
		sel    selection
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dialog's transcript as a standalone HTML document",
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
			if err := session.LoadAll(ctx); err != nil {
				return err
			}
			state.rememberSelection(backupID, dialog)

			snap := session.Snapshot()
			loc := cfg.Location()
			doc := export.Document{
				Title:        snap.Dialog.Name,
				Period:       snap.Period,
				Messages:     transcript.Filter(snap.Messages),
				Participants: snap.Participants,
				Bytes:        session.Store(),
				Location:     loc,
				DateFormat:   cfg.Export.DateFormat,
				TimeFormat:   cfg.Export.TimeFormat,
			}

			var buf bytes.Buffer
			if err := doc.Serialize(&buf); err != nil {
				return err
			}

			if outDir == "" {
				outDir = cfg.Export.OutputDir
			}
			name := export.Filename(snap.Dialog.Name, snap.Period, loc, cfg.Export.DateFormat)
			sink := export.DirSink{Dir: outDir}
			path, err := sink.Save(ctx, name, export.HTMLMIME, buf.Bytes())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&sel.backupID, "backup", "", "Backup id (prefix allowed)")
	cmd.Flags().StringVar(&sel.entityID, "entity", "", "Dialog id or name")
	cmd.Flags().StringVar(&sel.entityKind, "entity-type", "", "Dialog kind (user, group, channel)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")

	return cmd
}
