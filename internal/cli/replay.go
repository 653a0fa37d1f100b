package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/launcher"
	"github.com/UtsavBalar1231/v4l-utils/internal/output"
	"github.com/UtsavBalar1231/v4l-utils/internal/replay"
)

// NestedReplayCmd is the target retrace re-executes the tool with. It runs
// under the shim and reads its options from the environment the outer
// invocation exported.
type NestedReplayCmd struct {
	Document string `arg:"" name:"file" help:"Trace document to replay (.json)"`
}

// Run executes the hidden __retrace command
func (c *NestedReplayCmd) Run(globals *Globals) error {
	task := launcher.NestedReplayTask{Source: c.Document}
	if err := task.Validate(); err != nil {
		if errors.Is(err, domain.ErrUsage) {
			return exitWith(globals, ExitUsage, "USAGE", err)
		}
		return exitWith(globals, errnoOf(err), "DOCUMENT_ERROR", err)
	}

	// The nested command is started without flags; verbosity comes from the
	// options the outer invocation exported.
	opts := config.FromEnviron(globals.environ())
	globals.Verbose = globals.Verbose || opts.Verbose || opts.Debug
	globals.Debug = globals.Debug || opts.Debug
	globals.logger = nil
	log := globals.Logger().With("mode", domain.ModeNestedReplay.String(), "session", opts.TraceID)

	player := replay.NewPlayer(opts, log)
	stats, err := player.PlayFile(context.Background(), c.Document)
	if err != nil {
		return exitWith(globals, 1, "REPLAY_FAILED", err)
	}
	log.Infow("replay finished",
		"records", stats.Records,
		"opened", stats.Opened,
		"closed", stats.Closed,
		"issued", stats.Issued,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteReplay(&output.ReplayOutput{
			Source:  c.Document,
			Records: stats.Records,
			Opened:  stats.Opened,
			Closed:  stats.Closed,
			Issued:  stats.Issued,
			Skipped: stats.Skipped,
			Failed:  stats.Failed,
		})
	}

	if stats.Failed > 0 {
		return exitWith(globals, 1, "REPLAY_FAILED", fmt.Errorf("%d of %d records failed to replay", stats.Failed, stats.Records),
			"run with --debug to see each failed record")
	}
	return nil
}
