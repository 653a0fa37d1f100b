package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/UtsavBalar1231/v4l-utils/internal/output"
)

// ExitUsage is the status of an invocation rejected before any file or
// process was created.
const ExitUsage = 255

var exit = os.Exit

// UsageExit ends the process after kong printed help or rejected the
// command line. Both report ExitUsage.
func UsageExit(int) {
	exit(ExitUsage)
}

// ExitError carries the process exit status out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// errnoOf returns the OS error number wrapped in err, or 1.
func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.stderr(), "Error [%s]: %s", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.stderr(), " (hint: %s)", hint[0])
		}
		fmt.Fprintln(globals.stderr())
	}
	return errors.New(message)
}

// exitWith reports err and wraps it with the exit status.
func exitWith(globals *Globals, status int, code string, err error, hint ...string) error {
	return &ExitError{Code: status, Err: outputErrorCommon(globals, code, err.Error(), hint...)}
}
