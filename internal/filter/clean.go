// Package filter strips run-to-run noise from trace documents so that two
// sessions can be diffed.
package filter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Markers identify lines holding non-reproducible fields: descriptor
// numbers, memory addresses, the start timestamp and symbolic names.
var Markers = []string{
	"fd",
	"address",
	"fildes",
	`"start"`,
	`"name"`,
}

// CleanPrefix is prepended to the base name of the source document.
const CleanPrefix = "clean_"

// longLine is the length past which a line probably holds a whole compact
// record rather than one field.
const longLine = 4096

// Result summarises one clean run.
type Result struct {
	Removed int
	Total   int
	Output  string
}

// Drop reports whether line carries one of the markers.
func Drop(line string) bool {
	return lo.SomeBy(Markers, func(m string) bool {
		return strings.Contains(line, m)
	})
}

// Clean copies r to w line by line, leaving out every line that Drop
// matches. Lines are copied verbatim, including their terminator. The filter
// works on the pretty-printed layout the shim writes by default, one field
// per line; on compact documents whole records are dropped.
func Clean(r io.Reader, w io.Writer, log *zap.SugaredLogger) (removed, total int, err error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	warned := false

	for {
		line, rerr := br.ReadString('\n')
		if line != "" {
			total++
			if len(line) > longLine && !warned {
				log.Debugw("long line in document, it is probably compact-printed and will be cleaned coarsely",
					"line", total, "length", len(line))
				warned = true
			}
			if Drop(line) {
				removed++
			} else if _, werr := bw.WriteString(line); werr != nil {
				return removed, total, werr
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return removed, total, rerr
		}
	}
	return removed, total, bw.Flush()
}

// CleanName returns the path of the cleaned copy of path: the same
// directory, base name prefixed with clean_.
func CleanName(path string) string {
	return filepath.Join(filepath.Dir(path), CleanPrefix+filepath.Base(path))
}

// CleanFile writes the cleaned copy of the document at path.
func CleanFile(path string, log *zap.SugaredLogger) (*Result, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	defer in.Close()

	outPath := CleanName(path)
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", outPath, err)
	}

	removed, total, err := Clean(in, out, log)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("cleaning %s: %w", path, err)
	}
	return &Result{Removed: removed, Total: total, Output: outPath}, nil
}

// Summary is the line printed after a clean run.
func (r *Result) Summary() string {
	return fmt.Sprintf("Removed %d lines of %d total lines: %s", r.Removed, r.Total, r.Output)
}
