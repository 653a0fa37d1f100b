// Package replay reissues the calls recorded in a trace document. It is the
// body of the hidden nested replay command, which runs with the shim
// preloaded so the replay is itself recorded.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/UtsavBalar1231/v4l-utils/internal/config"
	"github.com/UtsavBalar1231/v4l-utils/internal/domain"
	"github.com/UtsavBalar1231/v4l-utils/internal/tracefile"
)

// ErrUnsupported is returned by an Issuer for operations it cannot replay.
// Such records are counted as skipped, not failed.
var ErrUnsupported = errors.New("operation not supported")

// Device opens and closes device nodes.
type Device interface {
	Open(path string, flags int) (int, error)
	Close(fd int) error
}

// Issuer replays the operations whose argument layouts belong to the shim:
// ioctl, mmap and munmap. fd is the live descriptor mapped from the recorded
// one, or -1 when the record carries none.
type Issuer interface {
	Issue(ctx context.Context, rec domain.CallRecord, fd int) error
}

// SkipIssuer reports every operation as unsupported.
type SkipIssuer struct{}

func (SkipIssuer) Issue(context.Context, domain.CallRecord, int) error {
	return ErrUnsupported
}

// Stats counts what a replay did with each record.
type Stats struct {
	Records int `json:"records"`
	Opened  int `json:"opened"`
	Closed  int `json:"closed"`
	Issued  int `json:"issued"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Player walks the call records of one document.
type Player struct {
	Options config.Options
	Device  Device
	Issuer  Issuer
	Log     *zap.SugaredLogger

	fds map[int]int // recorded descriptor -> live descriptor
}

// NewPlayer returns a player using the host's device nodes and the skipping
// issuer.
func NewPlayer(opts config.Options, log *zap.SugaredLogger) *Player {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Player{
		Options: opts,
		Device:  UnixDevice{},
		Issuer:  SkipIssuer{},
		Log:     log,
	}
}

// PlayFile reads the document at path and replays it.
func (p *Player) PlayFile(ctx context.Context, path string) (Stats, error) {
	doc, err := tracefile.ReadFile(path)
	if err != nil {
		return Stats{}, err
	}
	return p.Play(ctx, doc)
}

// Play replays the call records of doc in order. A record that fails is
// logged and counted; it does not stop the replay. Descriptors still open
// when the records run out are closed. The only error returned is ctx's.
func (p *Player) Play(ctx context.Context, doc *tracefile.Document) (Stats, error) {
	p.fds = make(map[int]int)
	defer p.closeAll()

	var stats Stats
	for i, rec := range doc.Records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Records++

		var err error
		switch rec.Kind() {
		case domain.CallOpen:
			if err = p.open(rec); err == nil {
				stats.Opened++
			}
		case domain.CallClose:
			if err = p.close(rec); err == nil {
				stats.Closed++
			}
		case domain.CallIoctl, domain.CallMmap, domain.CallMunmap:
			err = p.issue(ctx, rec)
			if err == nil {
				stats.Issued++
			}
		default:
			err = ErrUnsupported
		}

		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupported):
			stats.Skipped++
			p.logger().Debugw("skipped record", "index", i, "call", rec.Syscall())
		default:
			stats.Failed++
			p.logger().Warnw("replay failed", "index", i, "call", rec.Syscall(), "error", err)
		}
	}
	return stats, nil
}

func (p *Player) open(rec domain.CallRecord) error {
	path := rec.String("path")
	if path == "" {
		return fmt.Errorf("%s record has no path", rec.Syscall())
	}
	recorded, ok := recordedFD(rec)
	if !ok {
		return fmt.Errorf("%s record for %s has no descriptor", rec.Syscall(), path)
	}

	flags := unix.O_RDWR
	if v, ok := rec.Int("flags"); ok {
		flags = v
	}
	flags |= unix.O_CLOEXEC

	path = p.devicePath(path)
	fd, err := p.Device.Open(path, flags)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if old, ok := p.fds[recorded]; ok {
		p.Device.Close(old)
	}
	p.fds[recorded] = fd
	p.logger().Debugw("opened", "path", path, "recorded_fd", recorded, "fd", fd)
	return nil
}

func (p *Player) close(rec domain.CallRecord) error {
	recorded, ok := recordedFD(rec)
	if !ok {
		return fmt.Errorf("close record has no descriptor")
	}
	fd, ok := p.fds[recorded]
	if !ok {
		return ErrUnsupported
	}
	delete(p.fds, recorded)
	return p.Device.Close(fd)
}

func (p *Player) issue(ctx context.Context, rec domain.CallRecord) error {
	fd := -1
	if recorded, ok := recordedFD(rec); ok {
		live, mapped := p.fds[recorded]
		if !mapped {
			return fmt.Errorf("%s on unknown descriptor %d", rec.Syscall(), recorded)
		}
		fd = live
	}
	return p.Issuer.Issue(ctx, rec, fd)
}

func (p *Player) closeAll() {
	for recorded, fd := range p.fds {
		if err := p.Device.Close(fd); err != nil {
			p.logger().Debugw("close at end of replay failed", "recorded_fd", recorded, "error", err)
		}
	}
	p.fds = nil
}

// devicePath substitutes the configured override for recorded video and
// media nodes.
func (p *Player) devicePath(path string) string {
	switch {
	case p.Options.VideoDevice != "" && isDeviceNode(path, config.VideoDevice):
		return p.Options.VideoDevice
	case p.Options.MediaDevice != "" && isDeviceNode(path, config.MediaDevice):
		return p.Options.MediaDevice
	}
	return path
}

func (p *Player) logger() *zap.SugaredLogger {
	if p.Log == nil {
		return zap.NewNop().Sugar()
	}
	return p.Log
}

func isDeviceNode(path string, kind config.DeviceKind) bool {
	n, ok := strings.CutPrefix(path, "/dev/"+string(kind))
	if !ok || n == "" {
		return false
	}
	_, err := strconv.Atoi(n)
	return err == nil
}

func recordedFD(rec domain.CallRecord) (int, bool) {
	if fd, ok := rec.FD(); ok {
		return fd, true
	}
	if fd, ok := rec.Int("fd"); ok {
		return fd, true
	}
	return rec.Int("fildes")
}

// UnixDevice opens device nodes with direct system calls.
type UnixDevice struct{}

func (UnixDevice) Open(path string, flags int) (int, error) {
	return unix.Open(path, flags, 0)
}

func (UnixDevice) Close(fd int) error {
	return unix.Close(fd)
}
