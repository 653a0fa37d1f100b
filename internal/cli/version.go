package cli

import (
	"encoding/json"
	"fmt"

	"github.com/UtsavBalar1231/v4l-utils/internal/output"
)

// VersionCmd shows the build identity recorded in every document.
type VersionCmd struct{}

// VersionOutput represents the NDJSON output for version information
type VersionOutput struct {
	Type           string `json:"type"`
	SchemaVersion  int    `json:"schemaVersion"`
	PackageVersion string `json:"package_version"`
	GitCommitCount string `json:"git_commit_cnt"`
	GitSHA         string `json:"git_sha"`
	GitCommitDate  string `json:"git_commit_date"`
}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	info := ToolInfo()
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(VersionOutput{
			Type:           "version",
			SchemaVersion:  output.SchemaVersion,
			PackageVersion: info.PackageVersion,
			GitCommitCount: info.GitCommitCount,
			GitSHA:         info.GitSHA,
			GitCommitDate:  info.GitCommitDate,
		})
	}

	fmt.Fprintf(globals.Stdout, "v4l2-tracer %s\n", info.PackageVersion)
	if info.GitSHA != "" {
		fmt.Fprintf(globals.Stdout, "git: %s (%s commits, %s)\n", info.GitSHA, info.GitCommitCount, info.GitCommitDate)
	}
	return nil
}
