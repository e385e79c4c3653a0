package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/config"
	"github.com/crypton-club/clubdata/internal/logger"
)

// RootOptions holds global flags for all commands. Non-empty values
// override the config file.
type RootOptions struct {
	ConfigPath string
	Strategy   string
	APIBase    string
	LogLevel   string
}

// NewRootCommand creates the root command for the clubdata CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clubdata",
		Short: "Club site data layer",
		Long: `clubdata keeps the club's events, members, achievements and blog posts
in sync with a backend: the REST API record by record (remote), the REST API
one collection at a time (bulk), a local sqlite cache (local), or nothing at
all (none). It also ships the reference REST server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/clubdata/config.toml)")
	cmd.PersistentFlags().StringVarP(&opts.Strategy, "strategy", "s", "", "sync strategy (remote|bulk|local|none)")
	cmd.PersistentFlags().StringVar(&opts.APIBase, "api-base", "", "REST API root, e.g. http://127.0.0.1:3001/api")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (DEBUG|INFO|WARN|ERROR)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.Strategy != "" {
		cfg.Strategy = o.Strategy
	}
	if o.APIBase != "" {
		cfg.APIBase = o.APIBase
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger used by every non-TUI command.
func newLogger(cfg config.Config, w io.Writer) *zap.Logger {
	return logger.New(cfg.Log.Level, logger.Format(cfg.Log.Format), w)
}
