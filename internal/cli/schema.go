package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaCmd outputs JSON Schema for trace documents and ndjson output
type SchemaCmd struct {
	Type []string `short:"t" help:"Types to include (document,tool_info,invocation,call,session,clean,info,replay,error). Default: all"`
	List bool     `help:"List the available types instead of printing schemas"`
}

var schemaTypes = []string{"document", "tool_info", "invocation", "call", "session", "clean", "info", "replay", "error"}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	if c.List {
		c.outputTextHelp(globals)
		return nil
	}

	schemas := map[string]interface{}{
		"document":   documentSchema(),
		"tool_info":  toolInfoSchema(),
		"invocation": invocationSchema(),
		"call":       callSchema(),
		"session":    sessionSchema(),
		"clean":      cleanSchema(),
		"info":       infoSchema(),
		"replay":     replaySchema(),
		"error":      errorSchema(),
	}

	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}

	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "v4l2-tracer Schemas",
		"description": "JSON Schema definitions for trace documents and v4l2-tracer NDJSON output",
		"definitions": map[string]interface{}{},
	}

	defs := output["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func documentSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"title":       "Trace Document",
		"description": "Tool info, invocation, then one record per intercepted call. A separator may precede the closing bracket.",
		"items": []interface{}{
			map[string]interface{}{"$ref": "#/definitions/tool_info"},
			map[string]interface{}{"$ref": "#/definitions/invocation"},
		},
		"additionalItems": map[string]interface{}{"$ref": "#/definitions/call"},
		"minItems":        2,
	}
}

func toolInfoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Tool Info",
		"description": "Build identity of the tracer that wrote the document",
		"properties": map[string]interface{}{
			"package_version": stringProp("v4l-utils package version"),
			"git_commit_cnt":  stringProp("Commit count of the source tree"),
			"git_sha":         stringProp("Revision hash of the source tree"),
			"git_commit_date": stringProp("Date of the revision"),
		},
		"required": []string{"package_version", "git_commit_cnt", "git_sha", "git_commit_date"},
	}
}

func invocationSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Invocation",
		"description": "Command line of the tracer run that wrote the document",
		"properties": map[string]interface{}{
			"Trace":     stringProp("Every argument followed by one space, e.g. 'v4l2-tracer trace echo hello '"),
			"Timestamp": stringProp("Local start time, e.g. 'Mon Jan 15 10:30:00 2024'"),
		},
		"required": []string{"Trace", "Timestamp"},
	}
}

func callSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Call Record",
		"description": "One intercepted operation. The payload layout is owned by libv4l2tracer.",
		"properties": map[string]interface{}{
			"fd":     intProp("Descriptor the call was made on"),
			"ioctl":  stringProp("Request name for ioctl records"),
			"open":   map[string]interface{}{"type": "object"},
			"open64": map[string]interface{}{"type": "object"},
			"openat": map[string]interface{}{"type": "object"},
			"close":  map[string]interface{}{"type": "object"},
			"mmap":   map[string]interface{}{"type": "object"},
			"mmap64": map[string]interface{}{"type": "object"},
			"munmap": map[string]interface{}{"type": "object"},
		},
		"additionalProperties": true,
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session",
		"description": "Outcome of a trace or retrace session",
		"properties": map[string]interface{}{
			"type":          map[string]interface{}{"type": "string", "const": "session"},
			"mode":          map[string]interface{}{"type": "string", "enum": []string{"trace", "retrace"}},
			"session_id":    stringProp("Session identifier, e.g. 12345_trace"),
			"document":      stringProp("Path of the written document"),
			"exit_code":     intProp("Exit status of the traced application"),
			"launch_error":  stringProp("Why the application could not be executed"),
			"success":       map[string]interface{}{"type": "boolean"},
			"schemaVersion": intProp("Output schema version"),
		},
		"required": []string{"type", "mode", "session_id", "document", "exit_code", "success"},
	}
}

func cleanSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Clean",
		"description": "Result of a clean run",
		"properties": map[string]interface{}{
			"type":          map[string]interface{}{"type": "string", "const": "clean"},
			"source":        stringProp("Document that was cleaned"),
			"output":        stringProp("Cleaned copy"),
			"removed":       intProp("Lines removed"),
			"total":         intProp("Lines read"),
			"schemaVersion": intProp("Output schema version"),
		},
		"required": []string{"type", "source", "output", "removed", "total"},
	}
}

func infoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Info",
		"description": "Summary of a trace document",
		"properties": map[string]interface{}{
			"type":            map[string]interface{}{"type": "string", "const": "info"},
			"document":        stringProp("Inspected document"),
			"package_version": stringProp("Tool info: package version"),
			"git_commit_cnt":  stringProp("Tool info: commit count"),
			"git_sha":         stringProp("Tool info: revision hash"),
			"git_commit_date": stringProp("Tool info: revision date"),
			"trace":           stringProp("Recorded command line"),
			"timestamp":       stringProp("Recorded start time"),
			"records":         intProp("Number of call records"),
			"calls": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "integer"},
				"description":          "Call records per kind (open, close, ioctl, mmap, munmap, unknown)",
			},
			"closed":        map[string]interface{}{"type": "boolean", "description": "Whether the array is closed"},
			"schemaVersion": intProp("Output schema version"),
		},
		"required": []string{"type", "document", "records", "calls"},
	}
}

func replaySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Replay",
		"description": "Counters of a nested replay",
		"properties": map[string]interface{}{
			"type":          map[string]interface{}{"type": "string", "const": "replay"},
			"source":        stringProp("Replayed document"),
			"records":       intProp("Call records seen"),
			"opened":        intProp("Device nodes opened"),
			"closed":        intProp("Descriptors closed"),
			"issued":        intProp("Operations issued"),
			"skipped":       intProp("Operations skipped"),
			"failed":        intProp("Operations that failed"),
			"schemaVersion": intProp("Output schema version"),
		},
		"required": []string{"type", "source", "records"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Error message from v4l2-tracer",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "error",
			},
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Error code",
				"enum": []string{
					"USAGE",
					"INVALID_DEVICE",
					"DOCUMENT_ERROR",
					"INVALID_DOCUMENT",
					"CLEAN_FAILED",
					"REPLAY_FAILED",
				},
			},
			"message": stringProp("Human-readable error description"),
			"hint":    stringProp("Suggested fix"),
		},
		"required": []string{"type", "code", "message"},
	}
}

func (c *SchemaCmd) outputTextHelp(globals *Globals) {
	fmt.Fprintln(globals.Stdout, "v4l2-tracer Schema Types:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "  document   - Whole trace document")
	fmt.Fprintln(globals.Stdout, "  tool_info  - First document record")
	fmt.Fprintln(globals.Stdout, "  invocation - Second document record")
	fmt.Fprintln(globals.Stdout, "  call       - Intercepted call record")
	fmt.Fprintln(globals.Stdout, "  session    - ndjson: trace/retrace outcome")
	fmt.Fprintln(globals.Stdout, "  clean      - ndjson: clean result")
	fmt.Fprintln(globals.Stdout, "  info       - ndjson: document summary")
	fmt.Fprintln(globals.Stdout, "  replay     - ndjson: nested replay counters")
	fmt.Fprintln(globals.Stdout, "  error      - ndjson: error")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Use --type to filter: v4l2-tracer schema --type document,call")
}
