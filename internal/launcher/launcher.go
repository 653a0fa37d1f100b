// Package launcher runs one child process per session with the interception
// shim preloaded, and reports how it ended.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
)

// ErrNotSpawnable is returned for tasks that run in process.
var ErrNotSpawnable = errors.New("task runs in process and cannot be spawned")

// Outcome is how the child ended.
type Outcome struct {
	// ExitCode is the child's exit status. A child killed by a signal
	// reports 128+signal, as a shell would.
	ExitCode int
	// LaunchErr is set when the command could not be executed at all.
	LaunchErr error
}

// Failed reports whether the session must be treated as failed.
func (o Outcome) Failed() bool {
	return o.LaunchErr != nil || o.ExitCode != 0
}

// Launcher spawns and waits for session children.
type Launcher struct {
	// Self is the tool's own executable, used as the retrace target.
	Self string
	// Shim is the path of libv4l2tracer.so injected through LD_PRELOAD.
	// Empty disables injection.
	Shim string
	// Environ returns the environment the child inherits.
	Environ func() []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Log *zap.SugaredLogger
}

// New returns a launcher wired to the current process.
func New(self, shim string, log *zap.SugaredLogger) *Launcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Launcher{
		Self:    self,
		Shim:    shim,
		Environ: os.Environ,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     log,
	}
}

// Env builds the child environment: the inherited block plus the serialized
// options and the preload path, none of which overwrite inherited values.
func (l *Launcher) Env(opts config.Options) []string {
	environ := os.Environ
	if l.Environ != nil {
		environ = l.Environ
	}
	env := opts.Environ(environ())
	if l.Shim != "" {
		env = config.SetIfAbsent(env, map[string]string{config.EnvPreload: l.Shim})
	}
	return env
}

// Run executes the task and blocks until the child exits. There is no
// timeout: a hung child blocks the caller. SIGINT and SIGTERM received while
// waiting are forwarded to the child.
func (l *Launcher) Run(ctx context.Context, task Task, opts config.Options) (Outcome, error) {
	argv := task.Argv(l.Self)
	if len(argv) == 0 {
		return Outcome{}, fmt.Errorf("%s: %w", task.Mode(), ErrNotSpawnable)
	}

	log := l.logger()
	env := l.Env(opts)
	if preload, ok := config.Lookup(env, config.EnvPreload); ok {
		log.Infof("Loading libv4l2tracer: %s", preload)
	}
	log.Debugf("tracee: %s", strings.Join(argv, " "))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(l.stderr(), "could not execute application '%s': %v\n", argv[0], err)
		return Outcome{ExitCode: errnoOf(err), LaunchErr: err}, nil
	}

	stop := forwardSignals(ctx, cmd.Process, log)
	err := cmd.Wait()
	stop()

	if err == nil {
		return Outcome{}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Outcome{ExitCode: exitCode(exitErr)}, nil
	}
	return Outcome{}, fmt.Errorf("waiting for %s: %w", argv[0], err)
}

func (l *Launcher) logger() *zap.SugaredLogger {
	if l.Log == nil {
		return zap.NewNop().Sugar()
	}
	return l.Log
}

func (l *Launcher) stderr() io.Writer {
	if l.Stderr == nil {
		return os.Stderr
	}
	return l.Stderr
}

// forwardSignals relays interrupt signals to the child until stop is called
// or ctx is done.
func forwardSignals(ctx context.Context, proc *os.Process, log *zap.SugaredLogger) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigCh:
				log.Debugf("forwarding %s to pid %d", sig, proc.Pid)
				proc.Signal(sig)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func exitCode(err *exec.ExitError) int {
	if status, ok := err.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	if code := err.ExitCode(); code > 0 {
		return code
	}
	return 1
}

// errnoOf extracts the OS error number from a launch failure.
func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return int(unix.ENOENT)
	}
	return 1
}
