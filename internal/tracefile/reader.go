package tracefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
)

// ErrMissingHeaders is returned for documents with fewer than two elements.
var ErrMissingHeaders = errors.New("trace document has no header records")

// Document is a parsed trace document.
type Document struct {
	ToolInfo   domain.ToolInfo
	Invocation domain.Invocation
	Records    []domain.CallRecord
}

// Parse decodes a trace document. The shim may leave a separator after the
// last record, so the input is read as liberal JSON: a trailing comma before
// the closing bracket is accepted. The input itself is never modified.
func Parse(data []byte) (*Document, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &elements); err != nil {
		return nil, fmt.Errorf("parsing trace document: %w", err)
	}
	if len(elements) < 2 {
		return nil, ErrMissingHeaders
	}

	doc := &Document{}
	if err := json.Unmarshal(elements[0], &doc.ToolInfo); err != nil {
		return nil, fmt.Errorf("parsing tool info record: %w", err)
	}
	if err := json.Unmarshal(elements[1], &doc.Invocation); err != nil {
		return nil, fmt.Errorf("parsing invocation record: %w", err)
	}

	doc.Records = make([]domain.CallRecord, 0, len(elements)-2)
	for i, raw := range elements[2:] {
		var rec domain.CallRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parsing call record %d: %w", i, err)
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}

// ReadFile reads and parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Closed reports whether data ends with the closing bracket, ignoring
// trailing whitespace.
func Closed(data []byte) bool {
	return strings.HasSuffix(strings.TrimRight(string(data), " \t\r\n"), "]")
}
