package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/tracefile"
)

type fakeDevice struct {
	next   int
	opened map[int]string
	flags  map[string]int
	closed []int
	fail   map[string]bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		next:   100,
		opened: map[int]string{},
		flags:  map[string]int{},
		fail:   map[string]bool{},
	}
}

func (d *fakeDevice) Open(path string, flags int) (int, error) {
	if d.fail[path] {
		return -1, unix.ENOENT
	}
	fd := d.next
	d.next++
	d.opened[fd] = path
	d.flags[path] = flags
	return fd, nil
}

func (d *fakeDevice) Close(fd int) error {
	if _, ok := d.opened[fd]; !ok {
		return unix.EBADF
	}
	delete(d.opened, fd)
	d.closed = append(d.closed, fd)
	return nil
}

type issued struct {
	call string
	fd   int
}

type recordingIssuer struct {
	calls []issued
	err   error
}

func (r *recordingIssuer) Issue(_ context.Context, rec domain.CallRecord, fd int) error {
	r.calls = append(r.calls, issued{rec.Syscall(), fd})
	return r.err
}

const sampleDoc = `[
{"package_version":"1.29.0","git_commit_cnt":"1","git_sha":"abc","git_commit_date":"2025-01-01"},
{"Trace":"v4l2-tracer trace app ","Timestamp":"Mon Jan 15 10:30:00 2024"},
{
	"fd": 3,
	"open64": {
		"path": "/dev/video0",
		"flags": 2
	}
},
{
	"fd": 4,
	"openat": {
		"path": "/dev/media1"
	}
},
{
	"fd": 3,
	"ioctl": "VIDIOC_QUERYCAP"
},
{
	"mmap64": {
		"fildes": 3,
		"len": 4096
	}
},
{
	"munmap": {
		"start": 140000000
	}
},
{
	"fd": 3,
	"close": {}
},

]
`

func parseSample(t *testing.T) *tracefile.Document {
	t.Helper()
	doc, err := tracefile.Parse([]byte(sampleDoc))
	require.NoError(t, err)
	return doc
}

func TestPlayMapsDescriptors(t *testing.T) {
	dev := newFakeDevice()
	iss := &recordingIssuer{}
	p := &Player{Device: dev, Issuer: iss}

	stats, err := p.Play(context.Background(), parseSample(t))
	require.NoError(t, err)

	assert.Equal(t, Stats{Records: 6, Opened: 2, Closed: 1, Issued: 3}, stats)
	assert.Equal(t, []issued{
		{"ioctl", 100},
		{"mmap64", 100},
		{"munmap", -1},
	}, iss.calls)

	// fd 3 closed by its record, fd 4 closed at the end.
	assert.ElementsMatch(t, []int{100, 101}, dev.closed)
	assert.Empty(t, dev.opened)
	assert.Equal(t, 2|unix.O_CLOEXEC, dev.flags["/dev/video0"])
	assert.Equal(t, unix.O_RDWR|unix.O_CLOEXEC, dev.flags["/dev/media1"])
}

func TestPlayDeviceOverride(t *testing.T) {
	dev := newFakeDevice()
	p := &Player{
		Options: config.Options{VideoDevice: "/dev/video7", MediaDevice: "/dev/media3"},
		Device:  dev,
		Issuer:  SkipIssuer{},
	}

	_, err := p.Play(context.Background(), parseSample(t))
	require.NoError(t, err)
	assert.Contains(t, dev.flags, "/dev/video7")
	assert.Contains(t, dev.flags, "/dev/media3")
	assert.NotContains(t, dev.flags, "/dev/video0")
}

func TestPlaySkipIssuer(t *testing.T) {
	p := &Player{Device: newFakeDevice(), Issuer: SkipIssuer{}}

	stats, err := p.Play(context.Background(), parseSample(t))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Skipped)
	assert.Zero(t, stats.Issued)
	assert.Zero(t, stats.Failed)
}

func TestPlayCountsFailures(t *testing.T) {
	dev := newFakeDevice()
	dev.fail["/dev/video0"] = true
	iss := &recordingIssuer{}
	p := &Player{Device: dev, Issuer: iss}

	stats, err := p.Play(context.Background(), parseSample(t))
	require.NoError(t, err)

	// open, ioctl and mmap on the unopened descriptor fail; close of an
	// unmapped descriptor is skipped.
	assert.Equal(t, 1, stats.Opened)
	assert.Equal(t, 3, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []issued{{"munmap", -1}}, iss.calls)
}

func TestPlayIssuerErrors(t *testing.T) {
	iss := &recordingIssuer{err: errors.New("EINVAL")}
	p := &Player{Device: newFakeDevice(), Issuer: iss}

	stats, err := p.Play(context.Background(), parseSample(t))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Failed)
}

func TestPlayStopsOnCancel(t *testing.T) {
	dev := newFakeDevice()
	p := &Player{Device: dev, Issuer: SkipIssuer{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := p.Play(ctx, parseSample(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Records)
}

func TestPlayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	p := NewPlayer(config.Options{}, nil)
	p.Device = newFakeDevice()

	stats, err := p.PlayFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Records)
}

func TestPlayFileMissing(t *testing.T) {
	p := NewPlayer(config.Options{}, nil)
	_, err := p.PlayFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnixDeviceOpensFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fd, err := UnixDevice{}.Open(path, unix.O_RDONLY|unix.O_CLOEXEC)
	require.NoError(t, err)
	assert.NoError(t, UnixDevice{}.Close(fd))
}

func TestIsDeviceNode(t *testing.T) {
	assert.True(t, isDeviceNode("/dev/video0", config.VideoDevice))
	assert.True(t, isDeviceNode("/dev/media12", config.MediaDevice))
	assert.False(t, isDeviceNode("/dev/video", config.VideoDevice))
	assert.False(t, isDeviceNode("/dev/video0-dec", config.VideoDevice))
	assert.False(t, isDeviceNode("/dev/media0", config.VideoDevice))
}
