// Package output writes machine-readable NDJSON events for --format ndjson.
package output

import (
	"encoding/json"
	"io"
)

// SchemaVersion is bumped whenever an event changes shape.
const SchemaVersion = 1

// ErrorOutput is a failure reported to the caller.
type ErrorOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// SessionOutput describes a finished trace or retrace session.
type SessionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Mode          string `json:"mode"`
	SessionID     string `json:"session_id"`
	Document      string `json:"document"`
	ExitCode      int    `json:"exit_code"`
	LaunchError   string `json:"launch_error,omitempty"`
	Success       bool   `json:"success"`
}

// CleanOutput describes a clean run.
type CleanOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Source        string `json:"source"`
	Output        string `json:"output"`
	Removed       int    `json:"removed"`
	Total         int    `json:"total"`
}

// InfoOutput summarises a trace document.
type InfoOutput struct {
	Type           string         `json:"type"`
	SchemaVersion  int            `json:"schemaVersion"`
	Document       string         `json:"document"`
	PackageVersion string         `json:"package_version"`
	GitCommitCount string         `json:"git_commit_cnt"`
	GitSHA         string         `json:"git_sha"`
	GitCommitDate  string         `json:"git_commit_date"`
	Trace          string         `json:"trace"`
	Timestamp      string         `json:"timestamp"`
	Records        int            `json:"records"`
	Calls          map[string]int `json:"calls"`
	Closed         bool           `json:"closed"`
}

// ReplayOutput reports the counters of a nested replay.
type ReplayOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Source        string `json:"source"`
	Records       int    `json:"records"`
	Opened        int    `json:"opened"`
	Closed        int    `json:"closed"`
	Issued        int    `json:"issued"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
}

// NDJSONWriter encodes one event per line.
type NDJSONWriter struct {
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer on w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONWriter{enc: enc}
}

// WriteError writes an error event. Only the first hint is kept.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.enc.Encode(out)
}

// WriteSession writes a session event.
func (w *NDJSONWriter) WriteSession(out *SessionOutput) error {
	out.Type = "session"
	out.SchemaVersion = SchemaVersion
	return w.enc.Encode(out)
}

// WriteClean writes a clean event.
func (w *NDJSONWriter) WriteClean(out *CleanOutput) error {
	out.Type = "clean"
	out.SchemaVersion = SchemaVersion
	return w.enc.Encode(out)
}

// WriteInfo writes a document summary event.
func (w *NDJSONWriter) WriteInfo(out *InfoOutput) error {
	out.Type = "info"
	out.SchemaVersion = SchemaVersion
	return w.enc.Encode(out)
}

// WriteReplay writes a replay summary event.
func (w *NDJSONWriter) WriteReplay(out *ReplayOutput) error {
	out.Type = "replay"
	out.SchemaVersion = SchemaVersion
	return w.enc.Encode(out)
}

// Write encodes any other event as is.
func (w *NDJSONWriter) Write(v any) error {
	return w.enc.Encode(v)
}
