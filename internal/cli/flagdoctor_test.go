package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions(t *testing.T) {
	globals := &Globals{
		Format:      "text",
		Compact:     true,
		Raw:         true,
		VideoDevice: "2",
		MediaDevice: "010",
		Environ:     func() []string { return nil },
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
	}

	opts, err := resolveOptions(globals)
	require.NoError(t, err)
	assert.True(t, opts.Compact)
	assert.True(t, opts.WriteDecodedJSON)
	assert.False(t, opts.WriteDecodedYUV)
	assert.Equal(t, "/dev/video2", opts.VideoDevice)
	assert.Equal(t, "/dev/media010", opts.MediaDevice)
}

func TestResolveOptionsRejectsDevices(t *testing.T) {
	for _, dev := range []string{"1000", "-1", "abc", "0x1"} {
		t.Run(dev, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			globals := &Globals{Format: "text", VideoDevice: dev, Environ: func() []string { return nil }, Stdout: &bytes.Buffer{}, Stderr: stderr}

			_, err := resolveOptions(globals)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Contains(t, stderr.String(), "Error [INVALID_DEVICE]")
		})
	}
}

func TestResolveOptionsInherits(t *testing.T) {
	globals := &Globals{
		Format:      "text",
		VideoDevice: "1",
		Environ: func() []string {
			return []string{"V4L2_TRACER_OPTION_SET_VIDEO_DEVICE=/dev/video5", "V4L2_TRACER_OPTION_DEBUG=true"}
		},
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}

	opts, err := resolveOptions(globals)
	require.NoError(t, err)
	assert.Equal(t, "/dev/video5", opts.VideoDevice)
	assert.True(t, opts.Debug)
	assert.True(t, opts.Verbose)
}
