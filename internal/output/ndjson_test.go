package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line, err := buf.ReadBytes('\n')
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &m))
	return m
}

func TestWriteError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteError("INVALID_DEVICE", "cannot use device number '1000'", "use 0..999", "ignored"))

	m := decodeLine(t, buf)
	require.Equal(t, "error", m["type"])
	require.EqualValues(t, SchemaVersion, m["schemaVersion"])
	require.Equal(t, "INVALID_DEVICE", m["code"])
	require.Equal(t, "cannot use device number '1000'", m["message"])
	require.Equal(t, "use 0..999", m["hint"])
}

func TestWriteErrorWithoutHint(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewNDJSONWriter(buf).WriteError("X", "y"))

	m := decodeLine(t, buf)
	_, ok := m["hint"]
	require.False(t, ok)
}

func TestWriteSession(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteSession(&SessionOutput{
		Mode:      "trace",
		SessionID: "12345_trace",
		Document:  "12345_trace.json",
		ExitCode:  1,
	}))

	m := decodeLine(t, buf)
	require.Equal(t, "session", m["type"])
	require.EqualValues(t, 1, m["schemaVersion"])
	require.Equal(t, "12345_trace", m["session_id"])
	require.EqualValues(t, 1, m["exit_code"])
	require.Equal(t, false, m["success"])
}

func TestWriteCleanAndReplay(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteClean(&CleanOutput{Source: "a.json", Output: "clean_a.json", Removed: 3, Total: 10}))
	require.NoError(t, w.WriteReplay(&ReplayOutput{Source: "a.json", Records: 4, Skipped: 2}))

	m := decodeLine(t, buf)
	require.Equal(t, "clean", m["type"])
	require.EqualValues(t, 3, m["removed"])

	m = decodeLine(t, buf)
	require.Equal(t, "replay", m["type"])
	require.EqualValues(t, 2, m["skipped"])
}

func TestWriteInfoKeepsShellCharacters(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteInfo(&InfoOutput{Trace: "sh -c a && b > c ", Calls: map[string]int{"ioctl": 2}}))
	require.Contains(t, buf.String(), "a && b > c")

	m := decodeLine(t, buf)
	require.Equal(t, "info", m["type"])
	calls, ok := m["calls"].(map[string]interface{})
	require.True(t, ok)
	require.EqualValues(t, 2, calls["ioctl"])
}
