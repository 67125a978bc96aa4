// Package brokertypes defines the shared types used across the broker
// packages: privilege classification, action specifications, and the
// sentinel errors of the core.
package brokertypes

// PrivilegeLevel classifies the effective identity of the elevated
// execution channel.
type PrivilegeLevel int

// Privilege levels, ordered from least to most privileged.
const (
	// PrivilegeNone means the channel is unbound or permission is not granted.
	PrivilegeNone PrivilegeLevel = iota
	// PrivilegeElevated means the channel is bound as the elevated non-root identity.
	PrivilegeElevated
	// PrivilegeSuperuser means the channel is bound as root.
	PrivilegeSuperuser
)

// String returns a human-readable name for the privilege level.
func (l PrivilegeLevel) String() string {
	switch l {
	case PrivilegeNone:
		return "none"
	case PrivilegeElevated:
		return "elevated"
	case PrivilegeSuperuser:
		return "superuser"
	default:
		return "unknown"
	}
}

// ClassifyUID maps a bound identity's numeric UID to a privilege level.
// UID 0 is root; any other bound identity counts as elevated. Callers must
// map an unbound channel to PrivilegeNone before consulting this function.
func ClassifyUID(uid int) PrivilegeLevel {
	if uid == 0 {
		return PrivilegeSuperuser
	}
	return PrivilegeElevated
}

// ActionType identifies one device-control operation requested by an
// external caller.
type ActionType string

// Supported action types.
const (
	ActionTap        ActionType = "tap"
	ActionSwipe      ActionType = "swipe"
	ActionKey        ActionType = "key"
	ActionText       ActionType = "text"
	ActionScreenshot ActionType = "screenshot"
	ActionLaunch     ActionType = "launch"
	ActionOpenURL    ActionType = "open_url"
	ActionShell      ActionType = "shell"
	ActionScreenSize ActionType = "screen_size"
)

// Action is a single device-control request as issued by the decision loop.
// Fields are interpreted per action type; unused fields are ignored.
type Action struct {
	Type     ActionType `json:"type"`
	X        int        `json:"x,omitempty"`
	Y        int        `json:"y,omitempty"`
	X2       int        `json:"x2,omitempty"`
	Y2       int        `json:"y2,omitempty"`
	Duration int        `json:"duration_ms,omitempty"`
	KeyCode  int        `json:"key_code,omitempty"`
	Text     string     `json:"text,omitempty"`
	Charwise bool       `json:"charwise,omitempty"`
	App      string     `json:"app,omitempty"`
	URL      string     `json:"url,omitempty"`
	Command  string     `json:"command,omitempty"`
}

// ActionResult is the uniform outcome of one dispatched action.
type ActionResult struct {
	RunID  string `json:"run_id"`
	Output string `json:"output,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	// PNG holds raw image bytes for screenshot actions. It is transported
	// out of band by the control API, never serialized into JSON.
	PNG []byte `json:"-"`
}
