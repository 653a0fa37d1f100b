package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
)

// Environment variables shared with the interception shim. The names are a
// contract with libv4l2tracer and must not change.
const (
	EnvTraceID          = "TRACE_ID"
	EnvCompactPrint     = "V4L2_TRACER_OPTION_COMPACT_PRINT"
	EnvVideoDevice      = "V4L2_TRACER_OPTION_SET_VIDEO_DEVICE"
	EnvMediaDevice      = "V4L2_TRACER_OPTION_SET_MEDIA_DEVICE"
	EnvVerbose          = "V4L2_TRACER_OPTION_VERBOSE"
	EnvDebug            = "V4L2_TRACER_OPTION_DEBUG"
	EnvWriteDecodedJSON = "V4L2_TRACER_OPTION_WRITE_DECODED_TO_JSON_FILE"
	EnvWriteDecodedYUV  = "V4L2_TRACER_OPTION_WRITE_DECODED_TO_YUV_FILE"
	EnvPreload          = "LD_PRELOAD"
)

// DeviceKind names a device node family that can be overridden.
type DeviceKind string

const (
	VideoDevice DeviceKind = "video"
	MediaDevice DeviceKind = "media"
)

// maxDeviceDigits caps overrides to /dev/video0 .. /dev/video999.
const maxDeviceDigits = 3

// Options is the configuration set shared by the tool and the shim. It is
// resolved once at startup and is read-only afterwards; it crosses process
// boundaries only through Environ and FromEnviron.
type Options struct {
	Compact          bool
	VideoDevice      string // full path, e.g. /dev/video0
	MediaDevice      string // full path, e.g. /dev/media0
	Verbose          bool
	Debug            bool
	WriteDecodedJSON bool
	WriteDecodedYUV  bool
	TraceID          string
}

// ParseDeviceIndex validates a device number given on the command line and
// returns the device node path. The number is appended as given, so "007"
// names /dev/video007.
func ParseDeviceIndex(kind DeviceKind, raw string) (string, error) {
	if _, err := strconv.Atoi(raw); err != nil {
		return "", fmt.Errorf("%w: can't convert <dev> '%s' to integer", domain.ErrUsage, raw)
	}
	if raw[0] < '0' || raw[0] > '9' || len(raw) > maxDeviceDigits {
		return "", fmt.Errorf("%w: cannot use device number '%s'", domain.ErrUsage, raw)
	}
	return "/dev/" + string(kind) + raw, nil
}

// Normalize applies the implications between options.
func (o Options) Normalize() Options {
	if o.Debug {
		o.Verbose = true
	}
	return o
}

// Vars serializes the options into environment assignments. Booleans are
// only emitted when set and empty strings are never emitted, so the shim can
// test for presence.
func (o Options) Vars() map[string]string {
	o = o.Normalize()
	vars := map[string]string{}
	setBool := func(key string, v bool) {
		if v {
			vars[key] = "true"
		}
	}
	setString := func(key, v string) {
		if v != "" {
			vars[key] = v
		}
	}
	setString(EnvTraceID, o.TraceID)
	setBool(EnvCompactPrint, o.Compact)
	setString(EnvVideoDevice, o.VideoDevice)
	setString(EnvMediaDevice, o.MediaDevice)
	setBool(EnvVerbose, o.Verbose)
	setBool(EnvDebug, o.Debug)
	setBool(EnvWriteDecodedJSON, o.WriteDecodedJSON)
	setBool(EnvWriteDecodedYUV, o.WriteDecodedYUV)
	return vars
}

// Environ returns base extended with the serialized options. A variable
// already present in base is never overwritten, so a nested invocation keeps
// the configuration of the invocation that spawned it.
func (o Options) Environ(base []string) []string {
	return SetIfAbsent(base, o.Vars())
}

// FromEnviron deserializes options from an environment block.
func FromEnviron(environ []string) Options {
	env := envMap(environ)
	isTrue := func(key string) bool { return env[key] == "true" }
	return Options{
		Compact:          isTrue(EnvCompactPrint),
		VideoDevice:      env[EnvVideoDevice],
		MediaDevice:      env[EnvMediaDevice],
		Verbose:          isTrue(EnvVerbose),
		Debug:            isTrue(EnvDebug),
		WriteDecodedJSON: isTrue(EnvWriteDecodedJSON),
		WriteDecodedYUV:  isTrue(EnvWriteDecodedYUV),
		TraceID:          env[EnvTraceID],
	}.Normalize()
}

// Inherit resolves the options of this process: any option already present
// in the inherited environment wins over the value parsed from flags.
func Inherit(flags Options, environ []string) Options {
	env := envMap(environ)
	inherited := FromEnviron(environ)
	resolved := flags.Normalize()

	pickBool := func(key string, flag, from bool) bool {
		if _, ok := env[key]; ok {
			return from
		}
		return flag
	}
	pickString := func(key, flag, from string) string {
		if _, ok := env[key]; ok {
			return from
		}
		return flag
	}

	resolved.Compact = pickBool(EnvCompactPrint, resolved.Compact, inherited.Compact)
	resolved.VideoDevice = pickString(EnvVideoDevice, resolved.VideoDevice, inherited.VideoDevice)
	resolved.MediaDevice = pickString(EnvMediaDevice, resolved.MediaDevice, inherited.MediaDevice)
	resolved.Verbose = pickBool(EnvVerbose, resolved.Verbose, inherited.Verbose)
	resolved.Debug = pickBool(EnvDebug, resolved.Debug, inherited.Debug)
	resolved.WriteDecodedJSON = pickBool(EnvWriteDecodedJSON, resolved.WriteDecodedJSON, inherited.WriteDecodedJSON)
	resolved.WriteDecodedYUV = pickBool(EnvWriteDecodedYUV, resolved.WriteDecodedYUV, inherited.WriteDecodedYUV)
	resolved.TraceID = pickString(EnvTraceID, resolved.TraceID, inherited.TraceID)
	return resolved.Normalize()
}

// SetIfAbsent appends KEY=value for every key of vars not already assigned
// in base. base is not modified.
func SetIfAbsent(base []string, vars map[string]string) []string {
	env := envMap(base)
	out := append([]string(nil), base...)
	keys := lo.Keys(vars)
	slices.Sort(keys)
	for _, key := range keys {
		if _, ok := env[key]; ok {
			continue
		}
		out = append(out, key+"="+vars[key])
	}
	return out
}

// Lookup returns the value of key in an environment block.
func Lookup(environ []string, key string) (string, bool) {
	v, ok := envMap(environ)[key]
	return v, ok
}

// envMap indexes an environment block. As with getenv, the first assignment
// of a key wins.
func envMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, seen := env[key]; !seen {
			env[key] = value
		}
	}
	return env
}
