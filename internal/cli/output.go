package cli

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/crypton-club/clubdata/internal/state"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Mutation reverted or rejected, collection failed to load
	ExitCommandError = 2 // Bad arguments or configuration
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// reportResult prints a one-line summary and turns a failed outcome into an
// ExitError.
func reportResult(w io.Writer, res state.Result) error {
	_, _ = fmt.Fprintf(w, "%s %s %s: %s\n", res.Op, res.Resource, res.ID, res.Outcome)
	if res.OK() {
		return nil
	}
	if res.Err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s %s %s", res.Op, res.Resource, res.Outcome), res.Err)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s %s %s", res.Op, res.Resource, res.Outcome))
}
