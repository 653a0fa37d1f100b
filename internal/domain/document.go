package domain

import (
	"strings"
	"time"
)

// ToolInfo is the first element of every trace document. It identifies the
// build that produced the document.
type ToolInfo struct {
	PackageVersion string `json:"package_version"`
	GitCommitCount string `json:"git_commit_cnt"`
	GitSHA         string `json:"git_sha"`
	GitCommitDate  string `json:"git_commit_date"`
}

// Invocation is the second element of every trace document.
type Invocation struct {
	Trace     string `json:"Trace"`     // literal command line, one space after each argument
	Timestamp string `json:"Timestamp"` // human readable start time
}

// NewInvocation records argv exactly as the tool was invoked.
func NewInvocation(argv []string, now time.Time) Invocation {
	var b strings.Builder
	for _, arg := range argv {
		b.WriteString(arg)
		b.WriteByte(' ')
	}
	return Invocation{
		Trace:     b.String(),
		Timestamp: now.Format(time.ANSIC),
	}
}
