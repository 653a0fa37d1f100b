package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/output"
	"github.com/UtsavBalar1231/v4l-utils/internal/tracefile"
)

// InfoCmd summarises a trace document: headers and call counts.
type InfoCmd struct {
	Document string `arg:"" name:"file" help:"Trace document to inspect"`
}

// Run executes the info command
func (c *InfoCmd) Run(globals *Globals) error {
	data, err := os.ReadFile(c.Document)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitWith(globals, ExitUsage, "USAGE", fmt.Errorf("trace file '%s' does not exist", c.Document))
		}
		return exitWith(globals, errnoOf(err), "DOCUMENT_ERROR", err)
	}
	doc, err := tracefile.Parse(data)
	if err != nil {
		return exitWith(globals, 1, "INVALID_DOCUMENT", fmt.Errorf("%s: %w", c.Document, err),
			"the document may still be open; it is closed when the traced application exits")
	}

	calls := lo.CountValuesBy(doc.Records, func(r domain.CallRecord) string {
		return string(r.Kind())
	})

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteInfo(&output.InfoOutput{
			Document:       c.Document,
			PackageVersion: doc.ToolInfo.PackageVersion,
			GitCommitCount: doc.ToolInfo.GitCommitCount,
			GitSHA:         doc.ToolInfo.GitSHA,
			GitCommitDate:  doc.ToolInfo.GitCommitDate,
			Trace:          doc.Invocation.Trace,
			Timestamp:      doc.Invocation.Timestamp,
			Records:        len(doc.Records),
			Calls:          calls,
			Closed:         tracefile.Closed(data),
		})
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("Field", "Value")
	table.Append([]string{"document", c.Document})
	table.Append([]string{"package_version", doc.ToolInfo.PackageVersion})
	table.Append([]string{"git_commit_cnt", doc.ToolInfo.GitCommitCount})
	table.Append([]string{"git_sha", doc.ToolInfo.GitSHA})
	table.Append([]string{"git_commit_date", doc.ToolInfo.GitCommitDate})
	table.Append([]string{"trace", doc.Invocation.Trace})
	table.Append([]string{"timestamp", doc.Invocation.Timestamp})
	table.Append([]string{"records", strconv.Itoa(len(doc.Records))})
	kinds := lo.Keys(calls)
	slices.Sort(kinds)
	for _, kind := range kinds {
		table.Append([]string{"calls." + kind, strconv.Itoa(calls[kind])})
	}
	return table.Render()
}
