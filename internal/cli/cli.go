package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
)

// Build identity, set with -ldflags -X.
var (
	Version        = "dev"
	GitCommitCount = ""
	GitSHA         = ""
	GitCommitDate  = ""
)

// ToolInfo is the identity record written at the top of every document.
func ToolInfo() domain.ToolInfo {
	return domain.ToolInfo{
		PackageVersion: Version,
		GitCommitCount: GitCommitCount,
		GitSHA:         GitSHA,
		GitCommitDate:  GitCommitDate,
	}
}

// CLI is the root command structure for v4l2-tracer.
type CLI struct {
	// Global flags. They apply to trace and retrace and are handed to the
	// shim through the environment.
	Format      string `short:"f" enum:"text,ndjson" default:"${config_format}" help:"Output format for reports and errors (text or ndjson)"`
	Compact     bool   `short:"c" name:"compact" default:"${config_compact}" help:"Write minimal whitespace in JSON file"`
	VideoDevice string `short:"d" name:"video_device" placeholder:"DEV" default:"${config_video_device}" help:"Retrace with a specific video device. DEV is the number of /dev/videoDEV"`
	MediaDevice string `short:"m" name:"media_device" placeholder:"DEV" default:"${config_media_device}" help:"Retrace with a specific media device. DEV is the number of /dev/mediaDEV"`
	Verbose     bool   `short:"v" default:"${config_verbose}" help:"Turn on verbose reporting"`
	Debug       bool   `short:"g" default:"${config_debug}" help:"Turn on verbose reporting plus additional debug info"`
	Raw         bool   `short:"r" default:"${config_raw}" help:"Write decoded video frame buffers to a JSON-array file"`
	YUV         bool   `short:"y" name:"yuv" default:"${config_yuv}" help:"Write decoded video frame buffers to a yuv file"`
	LibPath     string `name:"lib-path" placeholder:"DIR" default:"${config_lib_path}" help:"Directory holding libv4l2tracer.so"`

	// Commands
	Trace        TraceCmd        `cmd:"" help:"Trace application"`
	Retrace      RetraceCmd      `cmd:"" help:"Retrace JSON file"`
	Clean        CleanCmd        `cmd:"" help:"Remove irreproducible fields from a JSON file"`
	NestedReplay NestedReplayCmd `cmd:"" name:"__retrace" hidden:"" help:"Replay a JSON file under the shim (internal)"`
	Info         InfoCmd         `cmd:"" help:"Summarise a trace document"`
	Schema       SchemaCmd       `cmd:"" help:"Output JSON Schema for documents and ndjson output"`
	Config       ConfigCmd       `cmd:"" help:"Show or manage configuration"`
	Version      VersionCmd      `cmd:"" help:"Show version information"`
}

// KongVars exposes configuration file values as flag defaults.
func KongVars(cfg *config.Config) kong.Vars {
	if cfg == nil {
		cfg = config.Default()
	}
	return kong.Vars{
		"config_format":       cfg.Format,
		"config_compact":      strconv.FormatBool(cfg.Compact),
		"config_video_device": cfg.VideoDevice,
		"config_media_device": cfg.MediaDevice,
		"config_verbose":      strconv.FormatBool(cfg.Verbose),
		"config_debug":        strconv.FormatBool(cfg.Debug),
		"config_raw":          strconv.FormatBool(cfg.Raw),
		"config_yuv":          strconv.FormatBool(cfg.YUV),
		"config_lib_path":     cfg.LibPath,
	}
}

// Globals holds resolved global flags and the process surroundings commands
// run in.
type Globals struct {
	Format      string
	Verbose     bool
	Debug       bool
	Compact     bool
	Raw         bool
	YUV         bool
	VideoDevice string
	MediaDevice string
	LibPath     string

	// Args is the tool's own command line as recorded in documents.
	Args []string
	// Self is the executable re-run by retrace. Empty means os.Executable.
	Self    string
	Environ func() []string
	Clock   clock.Clock

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config

	logger *zap.SugaredLogger
}

// NewGlobalsWithConfig creates Globals from parsed flags and the loaded config.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	format := c.Format
	if format == "" {
		format = cfg.Format
	}
	return &Globals{
		Format:      format,
		Verbose:     c.Verbose || c.Debug,
		Debug:       c.Debug,
		Compact:     c.Compact,
		Raw:         c.Raw,
		YUV:         c.YUV,
		VideoDevice: c.VideoDevice,
		MediaDevice: c.MediaDevice,
		LibPath:     c.LibPath,
		Args:        os.Args,
		Environ:     os.Environ,
		Clock:       clock.New(),
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Config:      cfg,
	}
}

// Logger returns the diagnostic logger, built on first use. It discards
// everything unless --verbose or --debug is set.
func (g *Globals) Logger() *zap.SugaredLogger {
	if g.logger == nil {
		g.logger = newLogger(g.Verbose, g.Debug, g.stderr())
	}
	return g.logger
}

// Debugf logs a debug message when --debug is set.
func (g *Globals) Debugf(format string, args ...interface{}) {
	g.Logger().Debugf(format, args...)
}

func (g *Globals) environ() []string {
	if g.Environ == nil {
		return os.Environ()
	}
	return g.Environ()
}

func (g *Globals) clock() clock.Clock {
	if g.Clock == nil {
		return clock.New()
	}
	return g.Clock
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}
