package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/vytor/web3profile/internal/app"
	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/logger"
)

var (
	dbPath   string
	logLevel string
	appCtx   *app.App
)

func Execute() error {
	err := NewRootCmd().Execute()
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	return err
}

// NewRootCmd builds the command tree. Configuration comes from the same
// environment as the server, with flags taking precedence.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "profilectl",
		Short:        "Inspect web3 profiles and maintain the local store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithRedact(cfg.Secrets()...),
			))

			if err := closeApp(); err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeApp()
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (default $DB_PATH)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL)")

	root.AddCommand(resolveCmd(), profileCmd(), searchesCmd(), purgeCacheCmd())
	return root
}

func closeApp() error {
	if appCtx == nil {
		return nil
	}
	err := appCtx.Close()
	appCtx = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
