// Package channel owns the lifecycle of the elevated execution service:
// bind/unbind, connection state, and privilege-level classification.
package channel

import "context"

// Protocol constants for the service binding descriptor. The descriptor
// must stay stable across releases or existing grants become invalid.
const (
	// ComponentPackage is the owning application identity.
	ComponentPackage = "com.mkoba.droidbroker"
	// ComponentClass is the remote shell-service class name.
	ComponentClass = "com.mkoba.droidbroker.ShellService"
	// ProcessSuffix is the stable process-name suffix of the remote service.
	ProcessSuffix = ":shell"
	// ProtocolVersion is the binding protocol version.
	ProtocolVersion = 1
)

// Descriptor identifies the remote service a binder connects to.
type Descriptor struct {
	Package       string
	Class         string
	ProcessSuffix string
	Debuggable    bool
	Version       int
}

// DefaultDescriptor returns the fixed binding descriptor.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Package:       ComponentPackage,
		Class:         ComponentClass,
		ProcessSuffix: ProcessSuffix,
		Debuggable:    true,
		Version:       ProtocolVersion,
	}
}

// RemoteService is the handle to a connected elevated execution service.
type RemoteService interface {
	// UID queries the numeric identity the service executes as. It is
	// queried fresh on every call; the bound identity can change between
	// grants.
	UID(ctx context.Context) (int, error)

	// Exec runs a shell command through the service and returns the text
	// it reports.
	Exec(ctx context.Context, command string) (string, error)

	// Close releases the handle.
	Close() error
}

// ConnectionHandler receives connect/disconnect transitions from a Binder.
// Implementations must tolerate a Disconnected call at any time, including
// during an in-flight Exec.
type ConnectionHandler interface {
	Connected(svc RemoteService)
	Disconnected()
}

// Binder is the platform service-binding primitive. Production code uses
// the unix-socket binder; tests inject fakes that toggle availability.
type Binder interface {
	// PermissionGranted reports whether the platform grant required for
	// binding is present.
	PermissionGranted() bool

	// Bind requests a service binding with the given descriptor. The
	// handler's Connected callback fires once the binding is established;
	// Bind returning nil does not imply the service is connected yet.
	Bind(desc Descriptor, handler ConnectionHandler) error

	// Unbind releases the binding if held. Safe to call when not bound.
	Unbind() error
}
