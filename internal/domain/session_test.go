package domain

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTraceID(t *testing.T) {
	now := time.Unix(1739812345, 0)
	assert.Equal(t, "12345_trace", TraceID(now))
}

func TestTraceIDDropsLeadingDigits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		secs := rapid.Int64Range(1_000_000_000, 9_999_999_999).Draw(t, "unix_sec")
		id := TraceID(time.Unix(secs, 0))

		full := strconv.FormatInt(secs, 10)
		if !strings.HasSuffix(id, "_trace") {
			t.Fatalf("missing suffix: %q", id)
		}
		if got := strings.TrimSuffix(id, "_trace"); got != full[5:] {
			t.Fatalf("expected %q, got %q", full[5:], got)
		}
	})
}

func TestRetraceID(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"foo.json", "foo_retrace"},
		{"12345_trace.json", "12345_trace_retrace"},
		{"dir/sub/foo.json", "foo_retrace"},
		{"foo_retrace.json", "foo_retrace_retrace"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, RetraceID(tt.source))
		})
	}
}

func TestRetraceIDNeverCollidesWithSource(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z0-9_.-]{1,40}`).Draw(t, "name")
		source := name + DocumentExt
		out := RetraceID(source) + DocumentExt
		if out == source {
			t.Fatalf("retrace output %q overwrites source", out)
		}
		if RetraceID(source) != RetraceID(source) {
			t.Fatalf("retrace id is not deterministic")
		}
	})
}

func TestSessionFilename(t *testing.T) {
	now := time.Unix(1739812345, 0)

	s := NewTraceSession([]string{"echo", "hello"}, now)
	require.Equal(t, ModeTrace, s.Mode)
	assert.Equal(t, "12345_trace.json", s.Filename())
	assert.Equal(t, []string{"echo", "hello"}, s.Command)

	r := NewRetraceSession("foo.json", now)
	require.Equal(t, ModeRetrace, r.Mode)
	assert.Equal(t, "foo_retrace.json", r.Filename())
	assert.Equal(t, "foo.json", r.Source)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "trace", ModeTrace.String())
	assert.Equal(t, "retrace", ModeRetrace.String())
	assert.Equal(t, "__retrace", ModeNestedReplay.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestNewInvocation(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	inv := NewInvocation([]string{"v4l2-tracer", "trace", "echo", "hello"}, now)

	assert.Equal(t, "v4l2-tracer trace echo hello ", inv.Trace)
	assert.Equal(t, "Mon Jan 15 10:30:00 2024", inv.Timestamp)
}
