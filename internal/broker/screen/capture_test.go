package screen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoba/go-droid-broker/internal/common"
)

// recordingExecutor records commands issued during capture.
type recordingExecutor struct {
	mu       sync.Mutex
	commands []string
}

func (r *recordingExecutor) Exec(_ context.Context, command string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return ""
}

// fakeSuReader implements SuperuserReader with canned bytes.
type fakeSuReader struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeSuReader) ReadFile(context.Context, string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

// smallPNG returns an encoded 2x2 image.
func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCapture_PrimaryReadPath(t *testing.T) {
	exec := &recordingExecutor{}
	fs := common.NewMockFileSystem()
	fs.AddFile(StagingPath, &common.MockFileEntry{Data: smallPNG(t), Mode: 0o644})
	su := &fakeSuReader{}

	c := New(exec, WithFileSystem(fs), WithSuperuserReader(su), WithSettle(0))
	img := c.Capture(context.Background())

	require.NotNil(t, img)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Zero(t, su.calls, "readable staging file must not trigger the superuser read")

	require.Len(t, exec.commands, 1)
	assert.Equal(t,
		"screencap -p "+StagingPath+" && chmod 644 "+StagingPath,
		exec.commands[0],
		"capture and permission relaxation must be one chained invocation")
}

func TestCapture_FallsBackToSuperuserRead(t *testing.T) {
	exec := &recordingExecutor{}
	fs := common.NewMockFileSystem()
	// File exists with non-zero length but the read is denied.
	fs.AddFile(StagingPath, &common.MockFileEntry{
		Data:    smallPNG(t),
		Mode:    0o600,
		ReadErr: os.ErrPermission,
	})
	su := &fakeSuReader{data: smallPNG(t)}

	c := New(exec, WithFileSystem(fs), WithSuperuserReader(su), WithSettle(0))
	img := c.Capture(context.Background())

	require.NotNil(t, img)
	assert.Equal(t, 1, su.calls)
}

func TestCapture_MissingFileUsesFallback(t *testing.T) {
	c := New(&recordingExecutor{},
		WithFileSystem(common.NewMockFileSystem()),
		WithSuperuserReader(&fakeSuReader{data: smallPNG(t)}),
		WithSettle(0))

	assert.NotNil(t, c.Capture(context.Background()))
}

func TestCapture_EmptySuperuserReadReturnsNil(t *testing.T) {
	c := New(&recordingExecutor{},
		WithFileSystem(common.NewMockFileSystem()),
		WithSuperuserReader(&fakeSuReader{data: nil}),
		WithSettle(0))

	assert.Nil(t, c.Capture(context.Background()))
}

func TestCapture_SuperuserReadErrorReturnsNil(t *testing.T) {
	c := New(&recordingExecutor{},
		WithFileSystem(common.NewMockFileSystem()),
		WithSuperuserReader(&fakeSuReader{err: errors.New("su: permission denied")}),
		WithSettle(0))

	assert.Nil(t, c.Capture(context.Background()))
}

func TestCapture_UndecodableBytesReturnNil(t *testing.T) {
	fs := common.NewMockFileSystem()
	fs.AddFile(StagingPath, &common.MockFileEntry{Data: []byte("not a png"), Mode: 0o644})

	c := New(&recordingExecutor{},
		WithFileSystem(fs),
		WithSuperuserReader(&fakeSuReader{}),
		WithSettle(0))

	assert.Nil(t, c.Capture(context.Background()))
}

func TestCapture_CanceledContextReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := common.NewMockFileSystem()
	fs.AddFile(StagingPath, &common.MockFileEntry{Data: smallPNG(t), Mode: 0o644})

	c := New(&recordingExecutor{}, WithFileSystem(fs), WithSettle(time.Millisecond))
	assert.Nil(t, c.Capture(ctx))
}

func TestCapturePNG_ReturnsRawBytes(t *testing.T) {
	data := smallPNG(t)
	fs := common.NewMockFileSystem()
	fs.AddFile(StagingPath, &common.MockFileEntry{Data: data, Mode: 0o644})

	c := New(&recordingExecutor{}, WithFileSystem(fs), WithSettle(0))
	got := c.CapturePNG(context.Background())
	assert.True(t, bytes.Equal(data, got))
	assert.True(t, strings.HasPrefix(string(got), "\x89PNG"))
}
