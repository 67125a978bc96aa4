// Package device exposes the low-level device-control verbs: synthesized
// touch input, key events, screen geometry and URL opening.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/mkoba/go-droid-broker/internal/broker/executor"
)

// Key event codes for the navigation verbs.
const (
	KeyHome  = 3
	KeyBack  = 4
	KeyEnter = 66
)

// Default screen geometry used when wm size output is unparseable.
const (
	DefaultScreenWidth  = 1080
	DefaultScreenHeight = 2400
)

// screenSizeRe extracts WIDTHxHEIGHT from wm size output, e.g.
// "Physical size: 1080x2400".
var screenSizeRe = regexp.MustCompile(`(\d+)x(\d+)`)

// Controller issues device-control verbs through the executor.
type Controller struct {
	exec   executor.Executor
	logger *slog.Logger
}

// New creates a controller dispatching through exec.
func New(exec executor.Executor, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{exec: exec, logger: logger}
}

// Tap synthesizes a tap at (x, y).
func (c *Controller) Tap(ctx context.Context, x, y int) {
	c.exec.Exec(ctx, fmt.Sprintf("input tap %d %d", x, y))
}

// Swipe synthesizes a swipe from (x1, y1) to (x2, y2) over durationMS
// milliseconds.
func (c *Controller) Swipe(ctx context.Context, x1, y1, x2, y2, durationMS int) {
	c.exec.Exec(ctx, fmt.Sprintf("input swipe %d %d %d %d %d", x1, y1, x2, y2, durationMS))
}

// PressKey dispatches a raw key event.
func (c *Controller) PressKey(ctx context.Context, code int) {
	c.exec.Exec(ctx, fmt.Sprintf("input keyevent %d", code))
}

// Back presses the back key.
func (c *Controller) Back(ctx context.Context) { c.PressKey(ctx, KeyBack) }

// Home presses the home key.
func (c *Controller) Home(ctx context.Context) { c.PressKey(ctx, KeyHome) }

// Enter presses the enter key.
func (c *Controller) Enter(ctx context.Context) { c.PressKey(ctx, KeyEnter) }

// OpenURL opens a URL through a view intent.
func (c *Controller) OpenURL(ctx context.Context, url string) {
	c.exec.Exec(ctx, "am start -a android.intent.action.VIEW -d "+executor.ShellEscape(url))
}

// ScreenSize queries the display geometry. Unparseable output yields the
// 1080x2400 default rather than an error.
func (c *Controller) ScreenSize(ctx context.Context) (width, height int) {
	out := c.exec.Exec(ctx, "wm size")
	matches := screenSizeRe.FindStringSubmatch(out)
	if len(matches) != 3 {
		c.logger.Warn("Unparseable wm size output, using default geometry", "output", out)
		return DefaultScreenWidth, DefaultScreenHeight
	}

	width, errW := strconv.Atoi(matches[1])
	height, errH := strconv.Atoi(matches[2])
	if errW != nil || errH != nil {
		return DefaultScreenWidth, DefaultScreenHeight
	}
	return width, height
}
