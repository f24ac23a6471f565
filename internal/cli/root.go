// Package cli wires the scrollback commands: import a dump, view a
// dialog in the terminal, export it to HTML, serve a web preview, and
// inspect an archive.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/logging"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// app carries the loaded configuration into subcommands.
type app struct {
	cfg      *config.Config
	contexts *config.ContextStore
}

func newRootCmd(version string) *cobra.Command {
	var (
		configFile string
		logLevel   string
		logFormat  string
	)
	state := &app{}

	cmd := &cobra.Command{
		Use:           "scrollback",
		Short:         "Offline chat-backup transcript viewer and exporter",
		Long:          "scrollback imports chat backup dumps into a local archive and renders them as scrollable transcripts, standalone HTML exports, or a local web preview.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configFile != "" {
				cfg, err = config.LoadFromFile(configFile)
			} else {
				cfg, err = config.LoadDefault()
			}
			if err != nil {
				return err
			}

			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if logFormat != "" {
				cfg.Logging.Format = logFormat
			}
			logCfg := logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			}
			if cfg.Logging.File != "" {
				f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				logCfg.Output = f
			}
			logging.Init(logCfg)

			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			state.cfg = cfg
			state.contexts = config.NewContextStore("")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	cmd.AddCommand(
		newImportCmd(state),
		newViewCmd(state),
		newExportCmd(state),
		newServeCmd(state),
		newInspectCmd(state),
	)

	return cmd
}
