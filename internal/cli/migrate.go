package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypton-club/clubdata/internal/app"
	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/server"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	From    string
	To      string
	DataDir string
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every collection between server backends",
		Long: `Copy all collections from one server backend to another inside the data
directory, replacing what the destination holds. The usual move is from the
JSON files to sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if opts.DataDir != "" {
				cfg.Server.DataDir = opts.DataDir
			}

			counts, err := app.Migrate(cmd.Context(), cfg, server.Backend(opts.From), server.Backend(opts.To))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range club.Resources {
				_, _ = fmt.Fprintf(out, "%-13s %d\n", r, counts[r])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", string(server.BackendFile), "source backend (file|sqlite)")
	cmd.Flags().StringVar(&opts.To, "to", string(server.BackendSQLite), "destination backend (file|sqlite)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory holding both backends' files")

	return cmd
}
