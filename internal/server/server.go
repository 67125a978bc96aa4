// Package server exposes the broker's control API over HTTP. The API is
// meant for a loopback-only decision loop: health and privilege probes
// plus a single action endpoint that feeds the dispatcher.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mkoba/go-droid-broker/internal/broker/brokertypes"
)

// PrivilegeReporter reports the state of the elevated execution channel.
type PrivilegeReporter interface {
	IsPermissionGranted() bool
	IsAvailable() bool
	PrivilegeLevel(ctx context.Context) brokertypes.PrivilegeLevel
}

// ActionDispatcher performs one requested action.
type ActionDispatcher interface {
	Do(ctx context.Context, action brokertypes.Action) (*brokertypes.ActionResult, error)
}

// Server is the broker's HTTP control surface.
type Server struct {
	channel    PrivilegeReporter
	dispatcher ActionDispatcher
	logger     *slog.Logger
	router     *mux.Router
}

// New builds the server and its route table.
func New(channel PrivilegeReporter, dispatcher ActionDispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		channel:    channel,
		dispatcher: dispatcher,
		logger:     logger,
	}
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/privilege", s.handlePrivilege).Methods(http.MethodGet)
	r.HandleFunc("/v1/actions", s.handleAction).Methods(http.MethodPost)
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDMiddleware tags every request with an ID for log correlation.
// An incoming X-Request-ID is honored so clients can trace their own calls.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

type healthResponse struct {
	Status string `json:"status"`
}

type privilegeResponse struct {
	PermissionGranted bool   `json:"permission_granted"`
	ChannelAvailable  bool   `json:"channel_available"`
	Level             string `json:"level"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handlePrivilege(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := privilegeResponse{
		PermissionGranted: s.channel.IsPermissionGranted(),
		ChannelAvailable:  s.channel.IsAvailable(),
		Level:             s.channel.PrivilegeLevel(ctx).String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", requestID(ctx))

	var action brokertypes.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.writeError(w, ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.dispatcher.Do(ctx, action)
	if err != nil {
		logger.Warn("Action failed", "action", action.Type, "error", err)
		s.writeError(w, ctx, statusForError(err), err.Error())
		return
	}

	if action.Type == brokertypes.ActionScreenshot {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Run-ID", result.RunID)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(result.PNG); err != nil {
			logger.Warn("Screenshot write failed", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusForError maps dispatcher errors onto HTTP statuses. Gate denials
// are the caller's fault; a failed capture is a device-side condition.
func statusForError(err error) int {
	switch {
	case errors.Is(err, brokertypes.ErrCommandBlocked):
		return http.StatusForbidden
	case errors.Is(err, brokertypes.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, brokertypes.ErrScreenshotFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, ctx context.Context, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID(ctx)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
