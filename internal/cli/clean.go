package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/UtsavBalar1231/v4l-utils/internal/filter"
	"github.com/UtsavBalar1231/v4l-utils/internal/output"
)

// CleanCmd writes a copy of a document without run-to-run noise.
type CleanCmd struct {
	Document string `arg:"" name:"file" help:"Trace document to clean"`
}

// Run executes the clean command
func (c *CleanCmd) Run(globals *Globals) error {
	if _, err := os.Stat(c.Document); errors.Is(err, os.ErrNotExist) {
		return exitWith(globals, ExitUsage, "USAGE", fmt.Errorf("cannot open '%s'", c.Document))
	}

	fmt.Fprintf(globals.stderr(), "Cleaning: %s\n", c.Document)
	res, err := filter.CleanFile(c.Document, globals.Logger())
	if err != nil {
		return exitWith(globals, 1, "CLEAN_FAILED", err)
	}

	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteClean(&output.CleanOutput{
			Source:  c.Document,
			Output:  res.Output,
			Removed: res.Removed,
			Total:   res.Total,
		})
	}
	globals.status(true, res.Summary())
	return nil
}
