package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/launcher"
	"github.com/UtsavBalar1231/v4l-utils/internal/output"
)

// ConfigCmd groups the configuration subcommands.
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show config file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate a sample config file"`
}

// ConfigShowCmd prints the effective configuration.
type ConfigShowCmd struct{}

// ConfigOutput is the ndjson form of the configuration.
type ConfigOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	File          string `json:"file,omitempty"`
	Format        string `json:"format"`
	Verbose       bool   `json:"verbose"`
	Debug         bool   `json:"debug"`
	Compact       bool   `json:"compact"`
	Raw           bool   `json:"raw"`
	YUV           bool   `json:"yuv"`
	VideoDevice   string `json:"video_device"`
	MediaDevice   string `json:"media_device"`
	LibPath       string `json:"lib_path"`
	Shim          string `json:"shim"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	out := ConfigOutput{
		Type:          "config",
		SchemaVersion: output.SchemaVersion,
		File:          config.ConfigFile(),
		Format:        cfg.Format,
		Verbose:       cfg.Verbose,
		Debug:         cfg.Debug,
		Compact:       cfg.Compact,
		Raw:           cfg.Raw,
		YUV:           cfg.YUV,
		VideoDevice:   cfg.VideoDevice,
		MediaDevice:   cfg.MediaDevice,
		LibPath:       cfg.LibPath,
		Shim:          launcher.ResolveShim(cfg.LibPath, launcher.Executable()),
	}

	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("Key", "Value")
	table.Append([]string{"file", valueOr(out.File, "(none)")})
	table.Append([]string{"format", out.Format})
	table.Append([]string{"verbose", strconv.FormatBool(out.Verbose)})
	table.Append([]string{"debug", strconv.FormatBool(out.Debug)})
	table.Append([]string{"compact", strconv.FormatBool(out.Compact)})
	table.Append([]string{"raw", strconv.FormatBool(out.Raw)})
	table.Append([]string{"yuv", strconv.FormatBool(out.YUV)})
	table.Append([]string{"video_device", valueOr(out.VideoDevice, "(recorded)")})
	table.Append([]string{"media_device", valueOr(out.MediaDevice, "(recorded)")})
	table.Append([]string{"lib_path", valueOr(out.LibPath, "(auto)")})
	table.Append([]string{"shim", out.Shim})
	return table.Render()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ConfigPathCmd shows which config file is in use.
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "Searched: /etc/v4l2-tracer/, $XDG_CONFIG_HOME/v4l2-tracer/, ./")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample configuration file.
type ConfigGenerateCmd struct{}

const sampleConfig = `# v4l2-tracer configuration file
# Save as ./v4l2-tracer.yaml or ~/.config/v4l2-tracer/v4l2-tracer.yaml.
# Command-line flags override these values.

# Output format for reports and errors: text or ndjson
format: text

# Diagnostics
verbose: false
debug: false

# Trace options passed to libv4l2tracer
compact: false
raw: false
yuv: false

# Device overrides for retrace, as device numbers ("0" is /dev/video0)
video_device: ""
media_device: ""

# Directory holding libv4l2tracer.so (empty: next to the executable)
lib_path: ""
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleConfig)
	return err
}
