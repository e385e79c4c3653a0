package cli

import (
	"github.com/spf13/cobra"

	"github.com/crypton-club/clubdata/internal/app"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := app.BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the collections in a terminal UI",
		Long: `Open the terminal browser on the configured strategy. Collections that fail
to load are retried in the background. Deleting records requires --editor.
Logs are written to the configured log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			return app.Browse(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Editor, "editor", false, "allow deleting records")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "prefs file (default ~/.config/clubdata/prefs.toml)")
	cmd.Flags().IntVar(&opts.RetryEvery, "retry", 0, "base retry interval for failed loads in seconds (default 2)")

	return cmd
}
