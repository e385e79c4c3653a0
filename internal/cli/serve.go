package cli

import (
	"github.com/spf13/cobra"

	"github.com/crypton-club/clubdata/internal/app"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Bind    string
	Backend string
	DataDir string
	Seed    bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference REST server",
		Long: `Serve the club collections over REST under /api, backed by JSON files or a
sqlite database. With --seed, empty collections are filled with the
built-in defaults before the server starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if opts.Bind != "" {
				cfg.Server.Bind = opts.Bind
			}
			if opts.Backend != "" {
				cfg.Server.Backend = opts.Backend
			}
			if opts.DataDir != "" {
				cfg.Server.DataDir = opts.DataDir
			}
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}

			log := newLogger(cfg, cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()
			return app.Serve(cmd.Context(), cfg, log, opts.Seed)
		},
	}

	cmd.Flags().StringVar(&opts.Bind, "bind", "", "listen address (default from config, 127.0.0.1:3001)")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "storage backend (file|sqlite)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the backend's files")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "fill empty collections with defaults")

	return cmd
}
