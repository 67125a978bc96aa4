// Package input turns arbitrary text into device input actions, choosing
// among injection strategies based on character content and prior-strategy
// success.
package input

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkoba/go-droid-broker/internal/broker/executor"
)

// Key event codes consumed by the injector.
const (
	KeySpace = 62
	KeyEnter = 66
	KeyPaste = 279
)

// broadcastAction is the custom action of the external keyboard-injection
// broadcast receiver.
const broadcastAction = "ADB_INPUT_TEXT"

// broadcastSuccessMarker appears in the command output when the broadcast
// was delivered to a receiver.
const broadcastSuccessMarker = "result=0"

const (
	defaultClipboardTimeout = 1 * time.Second
	defaultPasteSettle      = 200 * time.Millisecond
)

// Injector implements the text-injection cascade.
type Injector struct {
	exec   executor.Executor
	clip   Clipboard
	ui     UIDispatcher
	logger *slog.Logger

	clipboardTimeout time.Duration
	pasteSettle      time.Duration
}

// Option configures an Injector.
type Option func(*Injector)

// WithClipboard overrides the clipboard implementation.
func WithClipboard(clip Clipboard) Option {
	return func(i *Injector) { i.clip = clip }
}

// WithUIDispatcher attaches the UI-owning execution context. Without one
// the clipboard strategy is skipped entirely.
func WithUIDispatcher(ui UIDispatcher) Option {
	return func(i *Injector) { i.ui = ui }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Injector) { i.logger = logger }
}

// WithTimings overrides the clipboard-write timeout and the paste settle
// delay. Used by tests.
func WithTimings(clipboardTimeout, pasteSettle time.Duration) Option {
	return func(i *Injector) {
		i.clipboardTimeout = clipboardTimeout
		i.pasteSettle = pasteSettle
	}
}

// New creates an injector dispatching through exec.
func New(exec executor.Executor, opts ...Option) *Injector {
	i := &Injector{
		exec:             exec,
		clip:             NewHostClipboard(),
		logger:           slog.Default(),
		clipboardTimeout: defaultClipboardTimeout,
		pasteSettle:      defaultPasteSettle,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Type injects text into the focused input field. Pure low-ASCII text is
// sent directly as a quoted literal; anything else walks the clipboard
// cascade. Type never fails: the last strategy has no fallback and its
// failure is observable only by the absence of an on-screen effect.
func (i *Injector) Type(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if isLowASCII(text) {
		i.directInput(ctx, text)
		return
	}

	// Ordered cascade, first success wins.
	strategies := []struct {
		name string
		run  func(context.Context, string) bool
	}{
		{"clipboard_paste", i.clipboardPaste},
		{"keyboard_broadcast", i.keyboardBroadcast},
		{"direct_input", i.directInputStrategy},
	}
	for _, s := range strategies {
		if s.run(ctx, text) {
			i.logger.Debug("Text injected", "strategy", s.name, "text", text)
			return
		}
	}
}

// clipboardPaste writes the text to the platform clipboard on the UI
// context (bounded wait), then dispatches the paste key event. Returns
// false without a result when no UI context is attached, the write times
// out, or the write fails.
func (i *Injector) clipboardPaste(ctx context.Context, text string) bool {
	if i.ui == nil {
		return false
	}

	// One-shot rendezvous: the caller blocks until the UI context reports
	// the write outcome or the bounded wait elapses. An unresponsive UI
	// context must not hang the whole input operation.
	result := make(chan error, 1)
	if !i.ui.Post(func() { result <- i.clip.Set(text) }) {
		return false
	}

	select {
	case err := <-result:
		if err != nil {
			i.logger.Warn("Clipboard write failed", "error", err)
			return false
		}
	case <-time.After(i.clipboardTimeout):
		i.logger.Warn("Clipboard write timed out", "timeout", i.clipboardTimeout)
		return false
	case <-ctx.Done():
		return false
	}

	// Settle delay: let the clipboard propagate to the input framework
	// before pasting.
	if !sleepCtx(ctx, i.pasteSettle) {
		return false
	}
	i.exec.Exec(ctx, fmt.Sprintf("input keyevent %d", KeyPaste))
	return true
}

// keyboardBroadcast dispatches the text to the external keyboard receiver
// and inspects the output for the delivery marker.
func (i *Injector) keyboardBroadcast(ctx context.Context, text string) bool {
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	out := i.exec.Exec(ctx, fmt.Sprintf(`am broadcast -a %s --es msg "%s"`, broadcastAction, escaped))
	return strings.Contains(out, broadcastSuccessMarker)
}

// directInputStrategy is the last resort. It always reports success; there
// is no further fallback.
func (i *Injector) directInputStrategy(ctx context.Context, text string) bool {
	i.directInput(ctx, text)
	return true
}

// directInput sends text through the platform text-input primitive as a
// quoted literal. The literal is shell-escaped on every path, including
// the last-resort one, so injected text cannot break out of its argument.
func (i *Injector) directInput(ctx context.Context, text string) {
	i.exec.Exec(ctx, "input text "+executor.ShellEscape(text))
}

// isLowASCII reports whether every code point in s is at most 127.
func isLowASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
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
