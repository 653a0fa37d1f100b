package cli

import (
	"github.com/UtsavBalar1231/v4l-utils/internal/config"
)

// resolveOptions validates the global flags and turns them into the option
// set handed to the shim. Values inherited from an outer invocation win.
func resolveOptions(globals *Globals) (config.Options, error) {
	flags := config.Options{
		Compact:          globals.Compact,
		Verbose:          globals.Verbose,
		Debug:            globals.Debug,
		WriteDecodedJSON: globals.Raw,
		WriteDecodedYUV:  globals.YUV,
	}

	if globals.VideoDevice != "" {
		path, err := config.ParseDeviceIndex(config.VideoDevice, globals.VideoDevice)
		if err != nil {
			return config.Options{}, exitWith(globals, ExitUsage, "INVALID_DEVICE", err, "use a number between 0 and 999, e.g. -d 0 for /dev/video0")
		}
		flags.VideoDevice = path
	}
	if globals.MediaDevice != "" {
		path, err := config.ParseDeviceIndex(config.MediaDevice, globals.MediaDevice)
		if err != nil {
			return config.Options{}, exitWith(globals, ExitUsage, "INVALID_DEVICE", err, "use a number between 0 and 999, e.g. -m 0 for /dev/media0")
		}
		flags.MediaDevice = path
	}

	return config.Inherit(flags, globals.environ()), nil
}
