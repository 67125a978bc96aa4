// Package dispatch routes externally requested actions to the device
// control components, applying the security gate to arbitrary commands.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/mkoba/go-droid-broker/internal/broker/brokertypes"
	"github.com/mkoba/go-droid-broker/internal/broker/executor"
	"github.com/mkoba/go-droid-broker/internal/broker/gate"
)

// TextInjector is the text-entry surface consumed by the dispatcher.
type TextInjector interface {
	Type(ctx context.Context, text string)
	TypeChars(ctx context.Context, text string)
}

// Capturer is the screenshot surface consumed by the dispatcher.
type Capturer interface {
	CapturePNG(ctx context.Context) []byte
}

// AppLauncher is the app-launch surface consumed by the dispatcher.
type AppLauncher interface {
	Launch(ctx context.Context, nameOrPackage string)
}

// DeviceController is the input-verb surface consumed by the dispatcher.
type DeviceController interface {
	Tap(ctx context.Context, x, y int)
	Swipe(ctx context.Context, x1, y1, x2, y2, durationMS int)
	PressKey(ctx context.Context, code int)
	OpenURL(ctx context.Context, url string)
	ScreenSize(ctx context.Context) (width, height int)
}

// CommandGate validates agent-issued shell commands.
type CommandGate interface {
	Validate(command string) gate.Verdict
}

// Dispatcher executes actions requested by the decision loop.
type Dispatcher struct {
	gate     CommandGate
	exec     executor.Executor
	injector TextInjector
	capturer Capturer
	launcher AppLauncher
	device   DeviceController
	logger   *slog.Logger
}

// New wires a dispatcher from its collaborators.
func New(g CommandGate, exec executor.Executor, injector TextInjector, capturer Capturer, launcher AppLauncher, device DeviceController, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		gate:     g,
		exec:     exec,
		injector: injector,
		capturer: capturer,
		launcher: launcher,
		device:   device,
		logger:   logger,
	}
}

// Do performs one action and returns its result. Only the generic shell
// action passes through the security gate; the fixed-verb actions carry
// no attacker-controlled command text.
func (d *Dispatcher) Do(ctx context.Context, action brokertypes.Action) (*brokertypes.ActionResult, error) {
	result := &brokertypes.ActionResult{RunID: ulid.Make().String()}
	logger := d.logger.With("run_id", result.RunID, "action", action.Type)
	logger.Info("Dispatching action")

	switch action.Type {
	case brokertypes.ActionTap:
		d.device.Tap(ctx, action.X, action.Y)

	case brokertypes.ActionSwipe:
		d.device.Swipe(ctx, action.X, action.Y, action.X2, action.Y2, action.Duration)

	case brokertypes.ActionKey:
		d.device.PressKey(ctx, action.KeyCode)

	case brokertypes.ActionText:
		if action.Charwise {
			d.injector.TypeChars(ctx, action.Text)
		} else {
			d.injector.Type(ctx, action.Text)
		}

	case brokertypes.ActionScreenshot:
		data := d.capturer.CapturePNG(ctx)
		if len(data) == 0 {
			// Non-fatal by contract: the caller skips this step.
			return result, brokertypes.ErrScreenshotFailed
		}
		result.PNG = data

	case brokertypes.ActionLaunch:
		d.launcher.Launch(ctx, action.App)

	case brokertypes.ActionOpenURL:
		d.device.OpenURL(ctx, action.URL)

	case brokertypes.ActionShell:
		verdict := d.gate.Validate(action.Command)
		if !verdict.Allowed {
			logger.Warn("Shell action denied", "reason", verdict.Reason)
			return result, fmt.Errorf("%w: %s", brokertypes.ErrCommandBlocked, verdict.Reason)
		}
		result.Output = d.exec.Exec(ctx, action.Command)

	case brokertypes.ActionScreenSize:
		result.Width, result.Height = d.device.ScreenSize(ctx)

	default:
		return result, fmt.Errorf("%w: %q", brokertypes.ErrUnknownAction, action.Type)
	}

	return result, nil
}
