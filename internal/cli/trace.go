package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/launcher"
	"github.com/UtsavBalar1231/v4l-utils/internal/output"
	"github.com/UtsavBalar1231/v4l-utils/internal/session"
)

// TraceCmd records the device calls of an application.
type TraceCmd struct {
	Command []string `arg:"" passthrough:"" name:"command" help:"Application to trace, followed by its arguments"`
}

// Run executes the trace command
func (c *TraceCmd) Run(globals *Globals) error {
	return runSession(globals, launcher.TraceTask{Command: c.Command})
}

// RetraceCmd replays a document while tracing the replay.
type RetraceCmd struct {
	Document string `arg:"" name:"file" help:"Trace document to retrace (.json)"`
}

// Run executes the retrace command
func (c *RetraceCmd) Run(globals *Globals) error {
	return runSession(globals, launcher.RetraceTask{Source: c.Document})
}

func runSession(globals *Globals, task launcher.Task) error {
	opts, err := resolveOptions(globals)
	if err != nil {
		return err
	}
	log := globals.Logger()

	self := globals.Self
	if self == "" {
		self = launcher.Executable()
	}
	shim := launcher.ResolveShim(globals.LibPath, self)

	l := launcher.New(self, shim, log)
	l.Environ = globals.environ
	if globals.Stdin != nil {
		l.Stdin = globals.Stdin
	}
	if globals.Stdout != nil {
		l.Stdout = globals.Stdout
	}
	l.Stderr = globals.stderr()

	runner := &session.Runner{
		Spawner: l,
		Clock:   globals.clock(),
		Info:    ToolInfo(),
		Args:    globals.Args,
		Log:     log,
	}

	res, err := runner.Run(context.Background(), task, opts)
	switch {
	case errors.Is(err, domain.ErrUsage):
		return exitWith(globals, ExitUsage, "USAGE", err, "run 'v4l2-tracer --help' for usage")
	case err != nil:
		return exitWith(globals, errnoOf(err), "DOCUMENT_ERROR", err)
	}

	if globals.Format == "ndjson" {
		out := &output.SessionOutput{
			Mode:      res.Session.Mode.String(),
			SessionID: res.Session.ID,
			Document:  res.Document,
			ExitCode:  res.Outcome.ExitCode,
			Success:   !res.Failed(),
		}
		if res.Outcome.LaunchErr != nil {
			out.LaunchError = res.Outcome.LaunchErr.Error()
		}
		output.NewNDJSONWriter(globals.Stdout).WriteSession(out)
	}

	globals.status(!res.Failed(), res.Message())
	if res.Failed() {
		return &ExitError{Code: 1, Err: fmt.Errorf("%s session failed: %s", res.Session.Mode, res.Document)}
	}
	return nil
}
