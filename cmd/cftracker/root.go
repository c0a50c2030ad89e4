package main

import (
	"github.com/spf13/cobra"

	"github.com/vytor/cftracker/internal/config"
	"github.com/vytor/cftracker/internal/logger"
)

type options struct {
	logLevel string
	dbPath   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "cftracker",
		Short: "Personal analytics for a Codeforces profile",
		Long: `cftracker fetches a Codeforces user's submissions, rating history and
profile, and derives solved counts, upsolve candidates and recent activity.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "override DB_PATH")

	cmd.AddCommand(newServeCmd(opts), newSummaryCmd(opts), newNoteCmd(opts))
	return cmd
}

// load reads the environment configuration, applies flag overrides and
// installs the default logger.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(cmd.ErrOrStderr()),
	))
	return cfg, cfg.Validate()
}
