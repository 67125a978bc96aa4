// Package screen acquires screenshots through a two-phase file-based
// protocol: privileged capture to a staging file, then direct or
// superuser-elevated read-back.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"time"

	brokerexec "github.com/mkoba/go-droid-broker/internal/broker/executor"
	"github.com/mkoba/go-droid-broker/internal/common"
)

const (
	// StagingPath is the fixed screenshot staging file under the
	// world-writable-by-convention temporary directory. It is overwritten
	// on each capture.
	StagingPath = "/data/local/tmp/screenshot.png"

	// defaultSettle lets the filesystem write flush before read-back.
	defaultSettle = 500 * time.Millisecond
)

// SuperuserReader reads a file's raw bytes through a root-elevated
// process. It is the fallback for environments where the permission
// relaxation on the staging file is denied.
type SuperuserReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// suCatReader implements SuperuserReader with su -c cat.
type suCatReader struct{}

// NewSuperuserReader returns the production SuperuserReader.
func NewSuperuserReader() SuperuserReader {
	return suCatReader{}
}

// ReadFile collects all bytes of path through a superuser cat.
func (suCatReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	// Fixed internal read, not a user-issued command; it bypasses the
	// command gate deliberately (see DESIGN.md).
	cmd := exec.CommandContext(ctx, "su", "-c", "cat "+path)
	return cmd.Output()
}

// Capturer produces decoded screenshots from the device frame buffer.
type Capturer struct {
	exec    brokerexec.Executor
	fs      common.FileSystem
	su      SuperuserReader
	logger  *slog.Logger
	settle  time.Duration
	staging string
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithFileSystem overrides the file system used for the direct read path.
func WithFileSystem(fs common.FileSystem) Option {
	return func(c *Capturer) { c.fs = fs }
}

// WithSuperuserReader overrides the fallback reader.
func WithSuperuserReader(su SuperuserReader) Option {
	return func(c *Capturer) { c.su = su }
}

// WithSettle overrides the post-capture settle delay. Used by tests.
func WithSettle(d time.Duration) Option {
	return func(c *Capturer) { c.settle = d }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Capturer) { c.logger = logger }
}

// New creates a capturer dispatching through exec.
func New(exec brokerexec.Executor, opts ...Option) *Capturer {
	c := &Capturer{
		exec:    exec,
		fs:      common.NewDefaultFileSystem(),
		su:      NewSuperuserReader(),
		logger:  slog.Default(),
		settle:  defaultSettle,
		staging: StagingPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture grabs the current frame and decodes it. Screenshot failure is a
// normal, non-fatal outcome: any failure at any stage returns nil, never
// an error.
func (c *Capturer) Capture(ctx context.Context) image.Image {
	data := c.CapturePNG(ctx)
	if len(data) == 0 {
		return nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("Screenshot decode failed", "error", err)
		return nil
	}
	return img
}

// CapturePNG grabs the current frame and returns the raw PNG bytes, or nil
// on failure.
func (c *Capturer) CapturePNG(ctx context.Context) []byte {
	// Capture and permission relaxation are chained into one invocation
	// so the file is never observable in an unreadable intermediate state
	// longer than necessary.
	c.exec.Exec(ctx, fmt.Sprintf("screencap -p %s && chmod 644 %s", c.staging, c.staging))

	if !sleepCtx(ctx, c.settle) {
		return nil
	}

	if data := c.readDirect(); data != nil {
		return data
	}

	// The capturing identity and the reading identity may differ in
	// privilege; fall through to the elevated read.
	c.logger.Warn("Direct screenshot read failed, trying superuser read", "path", c.staging)
	data, err := c.su.ReadFile(ctx, c.staging)
	if err != nil {
		c.logger.Warn("Superuser screenshot read failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// readDirect is the primary read path: the staging file must exist, be
// readable and have non-zero length.
func (c *Capturer) readDirect() []byte {
	info, err := c.fs.Lstat(c.staging)
	if err != nil || info.Size() == 0 {
		return nil
	}
	data, err := c.fs.ReadFile(c.staging)
	if err != nil {
		return nil
	}
	return data
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
