package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Error definitions
var (
	// ErrHandshakeRejected is returned when the shell service refuses the
	// binding handshake (version mismatch, unknown component).
	ErrHandshakeRejected = errors.New("shell service rejected handshake")
)

const (
	dialTimeout = 2 * time.Second
)

// request is one framed message sent to the shell service.
type request struct {
	Op      string `json:"op"`
	Command string `json:"cmd,omitempty"`

	// Handshake fields, only present on the "bind" request.
	Version       int    `json:"version,omitempty"`
	Component     string `json:"component,omitempty"`
	ProcessSuffix string `json:"process,omitempty"`
	Debuggable    bool   `json:"debuggable,omitempty"`
}

// response is one framed message received from the shell service.
type response struct {
	OK     bool   `json:"ok"`
	UID    int    `json:"uid,omitempty"`
	Stdout string `json:"stdout,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SocketBinder binds to a shell helper service listening on a unix socket.
// It speaks a newline-delimited JSON protocol: a bind handshake carrying
// the descriptor, then exec/uid request-response pairs.
type SocketBinder struct {
	path string

	mu  sync.Mutex
	svc *socketService
}

// NewSocketBinder creates a binder for the service socket at path.
func NewSocketBinder(path string) *SocketBinder {
	return &SocketBinder{path: path}
}

// PermissionGranted reports whether the service socket is present. A
// missing socket means the helper is not installed or its grant was
// revoked; any stat failure reads as not granted.
func (b *SocketBinder) PermissionGranted() bool {
	info, err := os.Stat(b.path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}

// Bind dials the service socket, performs the handshake, and reports the
// connected service through the handler.
func (b *SocketBinder) Bind(desc Descriptor, handler ConnectionHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.svc != nil {
		// Benign rebind: the existing binding stays up.
		return nil
	}

	conn, err := net.DialTimeout("unix", b.path, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial shell service: %w", err)
	}

	svc := &socketService{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		dec:     json.NewDecoder(conn),
		onBreak: func() { b.serviceBroken(handler) },
	}

	resp, err := svc.roundTrip(request{
		Op:            "bind",
		Version:       desc.Version,
		Component:     desc.Package + "/" + desc.Class,
		ProcessSuffix: desc.ProcessSuffix,
		Debuggable:    desc.Debuggable,
	})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("shell service handshake failed: %w", err)
	}
	if !resp.OK {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrHandshakeRejected, resp.Error)
	}

	b.svc = svc
	handler.Connected(svc)
	return nil
}

// Unbind closes the current binding if held.
func (b *SocketBinder) Unbind() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.svc == nil {
		return nil
	}
	err := b.svc.Close()
	b.svc = nil
	return err
}

// serviceBroken clears the binding after a transport failure and delivers
// the disconnect callback.
func (b *SocketBinder) serviceBroken(handler ConnectionHandler) {
	b.mu.Lock()
	if b.svc != nil {
		_ = b.svc.Close()
		b.svc = nil
	}
	b.mu.Unlock()
	handler.Disconnected()
}

// socketService is the RemoteService handle over one socket connection.
// Requests are serialized; the protocol is strict request-response.
type socketService struct {
	mu      sync.Mutex
	conn    net.Conn
	enc     *json.Encoder
	dec     *json.Decoder
	closed  bool
	onBreak func()
}

// UID queries the effective identity of the service.
func (s *socketService) UID(ctx context.Context) (int, error) {
	resp, err := s.call(ctx, request{Op: "uid"})
	if err != nil {
		return 0, err
	}
	return resp.UID, nil
}

// Exec runs a command through the service.
func (s *socketService) Exec(ctx context.Context, command string) (string, error) {
	resp, err := s.call(ctx, request{Op: "exec", Command: command})
	if err != nil {
		return "", err
	}
	return resp.Stdout, nil
}

// Close closes the underlying connection.
func (s *socketService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// call performs one request-response exchange, honoring the context
// deadline and reporting transport failures as a broken service.
func (s *socketService) call(ctx context.Context, req request) (*response, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, net.ErrClosed
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetDeadline(deadline)
	} else {
		_ = s.conn.SetDeadline(time.Time{})
	}
	resp, err := s.roundTripLocked(req)
	s.mu.Unlock()

	if err != nil {
		if s.onBreak != nil {
			s.onBreak()
		}
		return nil, err
	}
	if !resp.OK {
		return nil, errors.New(resp.Error)
	}
	return resp, nil
}

// roundTrip is the handshake-time exchange, before onBreak wiring matters.
func (s *socketService) roundTrip(req request) (*response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundTripLocked(req)
}

func (s *socketService) roundTripLocked(req request) (*response, error) {
	if err := s.enc.Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var resp response
	if err := s.dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &resp, nil
}
