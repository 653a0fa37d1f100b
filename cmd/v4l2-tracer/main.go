package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/UtsavBalar1231/v4l-utils/internal/cli"
	"github.com/UtsavBalar1231/v4l-utils/internal/config"
)

const usage = `v4l2-tracer - record and replay V4L2 device calls

Usage:
  v4l2-tracer [options] trace <application> [args]   Trace application
  v4l2-tracer [options] retrace <file>.json          Retrace JSON file
  v4l2-tracer clean <file>.json                      Remove irreproducible fields

For help:
  v4l2-tracer --help                                 All commands and flags
`

func main() {
	if len(os.Args) == 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(cli.ExitUsage)
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("v4l2-tracer"),
		kong.Description("Trace and retrace userspace applications using the V4L2 and media-controller APIs"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Exit(cli.UsageExit),
		cli.KongVars(cfg),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		globals.Debugf("%s: %v", ctx.Command(), err)
		os.Exit(cli.ExitCode(err))
	}
}
