// Package tracefile owns the on-disk trace document: a JSON array whose first
// two elements are written by the tracer and whose remaining elements are
// appended by the interception shim running inside the traced process.
package tracefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
)

const (
	arrayOpen  = "[\n"
	arrayClose = "\n]\n"
	separator  = ",\n"
)

// Writer bookends one trace document. It writes the opening bracket and the
// two header records, and closes the array in Finalize. It never reads or
// validates what the shim appends in between.
type Writer struct {
	path      string
	file      *os.File
	finalized bool
}

// Create creates (or truncates) the document at path and opens the array.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open trace file %s: %w", path, err)
	}
	w := &Writer{path: path, file: f}
	if err := w.write([]byte(arrayOpen)); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// WriteToolInfo writes the build identity record.
func (w *Writer) WriteToolInfo(info domain.ToolInfo) error {
	return w.writeRecord(info)
}

// WriteInvocation writes the command line record.
func (w *Writer) WriteInvocation(inv domain.Invocation) error {
	return w.writeRecord(inv)
}

// Flush syncs and closes the header handle. After Flush returns the file is
// complete up to the headers and another process may append to it.
func (w *Writer) Flush() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing trace file %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing trace file %s: %w", w.path, err)
	}
	return nil
}

// Finalize closes the JSON array. It reopens the file for append so that
// everything the shim wrote is preserved. Only the first call writes.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	if err := w.Flush(); err != nil {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopening trace file %s: %w", w.path, err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return fmt.Errorf("seeking trace file %s: %w", w.path, err)
	}
	if _, err := f.WriteString(arrayClose); err != nil {
		f.Close()
		return fmt.Errorf("closing array in %s: %w", w.path, err)
	}
	return f.Close()
}

// Finalized reports whether the array has been closed.
func (w *Writer) Finalized() bool {
	return w.finalized
}

func (w *Writer) writeRecord(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding header record: %w", err)
	}
	line := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	line = append(line, separator...)
	return w.write(line)
}

func (w *Writer) write(p []byte) error {
	if w.file == nil {
		return fmt.Errorf("trace file %s is no longer open for headers", w.path)
	}
	if _, err := w.file.Write(p); err != nil {
		return fmt.Errorf("writing trace file %s: %w", w.path, err)
	}
	return nil
}
