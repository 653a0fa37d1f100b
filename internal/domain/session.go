package domain

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DocumentExt is the only suffix accepted for trace documents.
const DocumentExt = ".json"

// ErrUsage marks errors caused by bad command-line input. They are detected
// before any file or process is created.
var ErrUsage = errors.New("usage error")

// Mode is the kind of session a process is running.
type Mode int

const (
	ModeTrace Mode = iota
	ModeRetrace
	ModeNestedReplay
)

func (m Mode) String() string {
	switch m {
	case ModeTrace:
		return "trace"
	case ModeRetrace:
		return "retrace"
	case ModeNestedReplay:
		return "__retrace"
	default:
		return "unknown"
	}
}

// Session is the one lifecycle of document creation, target execution and
// document finalization owned by this process.
type Session struct {
	Mode    Mode
	ID      string
	Command []string // target argv, trace mode only
	Source  string   // source document, retrace and nested replay
	Started time.Time
}

// Filename is the document the session writes, relative to the working
// directory. The shim derives the same name from TRACE_ID.
func (s *Session) Filename() string {
	return s.ID + DocumentExt
}

// traceIDSkip is the number of leading digits dropped from the Unix time.
const traceIDSkip = 5

// TraceID derives a trace session identifier from wall-clock seconds.
func TraceID(now time.Time) string {
	secs := strconv.FormatInt(now.Unix(), 10)
	if len(secs) > traceIDSkip {
		secs = secs[traceIDSkip:]
	}
	return secs + "_trace"
}

// RetraceID derives the identifier of a retrace session from its source
// document. foo.json always yields foo_retrace.
func RetraceID(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, DocumentExt) + "_retrace"
}

// NewTraceSession creates a session tracing command.
func NewTraceSession(command []string, now time.Time) *Session {
	return &Session{
		Mode:    ModeTrace,
		ID:      TraceID(now),
		Command: command,
		Started: now,
	}
}

// NewRetraceSession creates the outer recorder session of a retrace.
func NewRetraceSession(source string, now time.Time) *Session {
	return &Session{
		Mode:    ModeRetrace,
		ID:      RetraceID(source),
		Source:  source,
		Started: now,
	}
}
