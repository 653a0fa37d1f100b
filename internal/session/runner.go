// Package session drives one trace or retrace session: it names the
// document, writes its headers, runs the child under the shim and closes the
// document whatever the child did.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/launcher"
	"github.com/UtsavBalar1231/v4l-utils/internal/tracefile"
)

// Spawner runs a task to completion. *launcher.Launcher implements it.
type Spawner interface {
	Run(ctx context.Context, task launcher.Task, opts config.Options) (launcher.Outcome, error)
}

// Runner executes sessions.
type Runner struct {
	Spawner Spawner
	Clock   clock.Clock
	// Info is the build identity written as the first record.
	Info domain.ToolInfo
	// Args is the tool's own command line, recorded verbatim in the
	// invocation header.
	Args []string
	Log  *zap.SugaredLogger
}

// Result describes a finished session.
type Result struct {
	Session  *domain.Session
	Document string
	Outcome  launcher.Outcome
}

// Failed reports whether the child failed or could not be started.
func (r *Result) Failed() bool {
	return r.Outcome.Failed()
}

// Message is the completion line printed to stderr.
func (r *Result) Message() string {
	if r.Failed() {
		return "Trace error: " + r.Document
	}
	if r.Session.Mode == domain.ModeRetrace {
		return "Retrace complete: " + r.Document
	}
	return "Trace complete: " + r.Document
}

// Run validates the task, creates the session document in the working
// directory, writes both headers and only then spawns the child. The document
// is finalized after the child exits on every path that created it.
//
// Errors returned before the document exists wrap domain.ErrUsage or the OS
// error that prevented its creation. A failing child is not an error: it is
// reported through Result.
func (r *Runner) Run(ctx context.Context, task launcher.Task, opts config.Options) (res *Result, err error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	sess, err := r.newSession(task)
	if err != nil {
		return nil, err
	}
	log := r.logger().With("session", sess.ID, "mode", sess.Mode.String())

	doc := sess.Filename()
	w, err := tracefile.Create(doc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := w.Finalize(); ferr != nil && err == nil {
			err = ferr
		}
		log.Debugw("document finalized", "path", doc)
	}()

	if err := w.WriteToolInfo(r.Info); err != nil {
		return nil, err
	}
	if err := w.WriteInvocation(domain.NewInvocation(r.Args, sess.Started)); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	log.Debugw("headers written", "path", doc)

	opts.TraceID = sess.ID
	outcome, err := r.Spawner.Run(ctx, task, opts)
	if err != nil {
		return nil, fmt.Errorf("running %s session: %w", sess.Mode, err)
	}
	log.Debugw("child exited", "exit_code", outcome.ExitCode, "launch_error", outcome.LaunchErr)

	return &Result{Session: sess, Document: doc, Outcome: outcome}, nil
}

func (r *Runner) newSession(task launcher.Task) (*domain.Session, error) {
	now := r.now()
	switch t := task.(type) {
	case launcher.TraceTask:
		return domain.NewTraceSession(t.Command, now), nil
	case launcher.RetraceTask:
		return domain.NewRetraceSession(t.Source, now), nil
	default:
		return nil, fmt.Errorf("%s tasks do not record a document", task.Mode())
	}
}

func (r *Runner) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Log == nil {
		return zap.NewNop().Sugar()
	}
	return r.Log
}
