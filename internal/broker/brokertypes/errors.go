package brokertypes

import "errors"

// Error definitions
var (
	// ErrChannelUnavailable is returned when an operation requires the
	// elevated channel but no binding is currently established.
	ErrChannelUnavailable = errors.New("elevated channel unavailable")

	// ErrCommandBlocked is returned when the security gate denies an
	// externally supplied command.
	ErrCommandBlocked = errors.New("command blocked by security policy")

	// ErrUnknownAction is returned when the dispatcher receives an action
	// type it does not implement.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrScreenshotFailed is returned when neither screenshot read path
	// produced a decodable image.
	ErrScreenshotFailed = errors.New("screenshot capture failed")
)
