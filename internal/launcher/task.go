package launcher

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
)

// NestedReplayCommand is the hidden command a retrace re-executes the tool
// with. Users never type it.
const NestedReplayCommand = "__retrace"

// Task is what a session runs. It is one of TraceTask, RetraceTask or
// NestedReplayTask.
type Task interface {
	Mode() domain.Mode
	// Validate rejects bad input before any file or process is created.
	Validate() error
	// Argv is the command line to execute. self is the path of the running
	// executable.
	Argv(self string) []string

	isTask()
}

// TraceTask runs an arbitrary command under the shim.
type TraceTask struct {
	Command []string
}

func (TraceTask) Mode() domain.Mode { return domain.ModeTrace }

func (t TraceTask) Validate() error {
	if len(t.Command) == 0 || t.Command[0] == "" {
		return fmt.Errorf("%w: no command to trace", domain.ErrUsage)
	}
	return nil
}

func (t TraceTask) Argv(string) []string {
	return append([]string(nil), t.Command...)
}

func (TraceTask) isTask() {}

// RetraceTask re-executes the tool in nested replay mode under the shim, so
// the replay is recorded into a new document.
type RetraceTask struct {
	Source string
}

func (RetraceTask) Mode() domain.Mode { return domain.ModeRetrace }

func (t RetraceTask) Validate() error {
	return validateSource(t.Source)
}

func (t RetraceTask) Argv(self string) []string {
	return []string{self, NestedReplayCommand, t.Source}
}

func (RetraceTask) isTask() {}

// NestedReplayTask is the body of the hidden command. It runs in process and
// is never spawned.
type NestedReplayTask struct {
	Source string
}

func (NestedReplayTask) Mode() domain.Mode { return domain.ModeNestedReplay }

func (t NestedReplayTask) Validate() error {
	return validateSource(t.Source)
}

func (NestedReplayTask) Argv(string) []string { return nil }

func (NestedReplayTask) isTask() {}

func validateSource(path string) error {
	if !strings.HasSuffix(path, domain.DocumentExt) {
		return fmt.Errorf("%w: trace file '%s' must have %s file extension", domain.ErrUsage, path, domain.DocumentExt)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: trace file '%s' does not exist", domain.ErrUsage, path)
		}
		return fmt.Errorf("cannot open trace file '%s': %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: trace file '%s' is a directory", domain.ErrUsage, path)
	}
	return nil
}
