package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crypton-club/clubdata/internal/app"
	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/state"
)

// openRuntime loads every collection and fails when resource itself could
// not be loaded, since acting on an empty stand-in would be misleading.
func openRuntime(cmd *cobra.Command, opts *RootOptions, resource club.Resource) (*app.Runtime, func(), error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())
	rt, err := app.Open(cmd.Context(), cfg, log.Sugar())
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		_ = rt.Close()
		_ = log.Sync()
	}
	if st := rt.Store.Status(resource); !st.Loaded {
		cleanup()
		return nil, nil, WrapExitError(ExitFailure, "load "+string(resource), st.LastError)
	}
	return rt, cleanup, nil
}

func parseResource(name string) (club.Resource, error) {
	r, err := club.ParseResource(name)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "invalid resource", err)
	}
	return r, nil
}

// waitResult blocks until the adapter answers or the request timeout
// passes. The store's own persist timeout normally fires first.
func waitResult(ctx context.Context, rt *app.Runtime, m *state.Mutation) (state.Result, error) {
	waitCtx, cancel := context.WithTimeout(ctx, 2*rt.Config.RequestTimeout)
	defer cancel()
	return m.Wait(waitCtx)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "Print a collection as JSON",
		Long: `Load a collection through the configured strategy and print it as a JSON
array. Resources: events, members, achievements, blog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := parseResource(args[0])
			if err != nil {
				return err
			}
			rt, cleanup, err := openRuntime(cmd, rootOpts, resource)
			if err != nil {
				return err
			}
			defer cleanup()
			return writeJSON(cmd.OutOrStdout(), rt.Store.Snapshot().Records(resource))
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <resource> [file]",
		Short: "Add a record read from a JSON file or stdin",
		Long: `Add one record to a collection. The record is read as a JSON object from
the file argument, or from stdin when the file is omitted or "-". A missing
id is generated. The command exits non-zero when the backend does not
confirm the change.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := parseResource(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[1:])
			if err != nil {
				return WrapExitError(ExitCommandError, "read record", err)
			}

			rt, cleanup, err := openRuntime(cmd, rootOpts, resource)
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := rt.Store.AddJSON(cmd.Context(), resource, data)
			if err != nil {
				return WrapExitError(ExitCommandError, "decode record", err)
			}
			res, err := waitResult(cmd.Context(), rt, m)
			if err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), res)
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <resource> <id> [file]",
		Short: "Change fields of a record",
		Long: `Merge a JSON object into the record with the given id and save the whole
record. Fields missing from the object keep their current values and the
id never changes. Input comes from the file argument or stdin.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := parseResource(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[2:])
			if err != nil {
				return WrapExitError(ExitCommandError, "read patch", err)
			}

			rt, cleanup, err := openRuntime(cmd, rootOpts, resource)
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := rt.Store.PatchJSON(cmd.Context(), resource, club.ID(args[1]), data)
			if err != nil {
				return WrapExitError(ExitCommandError, "decode patch", err)
			}
			res, err := waitResult(cmd.Context(), rt, m)
			if err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), res)
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := parseResource(args[0])
			if err != nil {
				return err
			}
			rt, cleanup, err := openRuntime(cmd, rootOpts, resource)
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := rt.Store.Delete(cmd.Context(), resource, club.ID(args[1]))
			if err != nil {
				return err
			}
			res, err := waitResult(cmd.Context(), rt, m)
			if err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), res)
		},
	}
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}
