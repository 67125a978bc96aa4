package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoba/go-droid-broker/internal/broker/brokertypes"
)

type fakeReporter struct {
	granted   bool
	available bool
	level     brokertypes.PrivilegeLevel
}

func (f *fakeReporter) IsPermissionGranted() bool { return f.granted }
func (f *fakeReporter) IsAvailable() bool         { return f.available }
func (f *fakeReporter) PrivilegeLevel(context.Context) brokertypes.PrivilegeLevel {
	return f.level
}

type fakeDispatcher struct {
	result *brokertypes.ActionResult
	err    error
	seen   []brokertypes.Action
}

func (f *fakeDispatcher) Do(_ context.Context, action brokertypes.Action) (*brokertypes.ActionResult, error) {
	f.seen = append(f.seen, action)
	if f.err != nil {
		return &brokertypes.ActionResult{RunID: "run-1"}, f.err
	}
	return f.result, nil
}

func newTestServer(reporter *fakeReporter, dispatcher *fakeDispatcher) *Server {
	if reporter == nil {
		reporter = &fakeReporter{}
	}
	if dispatcher == nil {
		dispatcher = &fakeDispatcher{result: &brokertypes.ActionResult{RunID: "run-1"}}
	}
	return New(reporter, dispatcher, nil)
}

func postAction(t *testing.T, s *Server, action brokertypes.Action) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(action)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Privilege(t *testing.T) {
	tests := []struct {
		name     string
		reporter *fakeReporter
		want     string
	}{
		{
			name:     "unbound",
			reporter: &fakeReporter{},
			want:     `{"permission_granted":false,"channel_available":false,"level":"none"}`,
		},
		{
			name:     "elevated",
			reporter: &fakeReporter{granted: true, available: true, level: brokertypes.PrivilegeElevated},
			want:     `{"permission_granted":true,"channel_available":true,"level":"elevated"}`,
		},
		{
			name:     "superuser",
			reporter: &fakeReporter{granted: true, available: true, level: brokertypes.PrivilegeSuperuser},
			want:     `{"permission_granted":true,"channel_available":true,"level":"superuser"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.reporter, nil)
			req := httptest.NewRequest(http.MethodGet, "/privilege", nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestServer_ActionSuccess(t *testing.T) {
	d := &fakeDispatcher{result: &brokertypes.ActionResult{RunID: "run-1", Output: "battery level: 80"}}
	s := newTestServer(nil, d)

	rec := postAction(t, s, brokertypes.Action{Type: brokertypes.ActionShell, Command: "dumpsys battery"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, d.seen, 1)
	assert.Equal(t, brokertypes.ActionShell, d.seen[0].Type)

	var result brokertypes.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "battery level: 80", result.Output)
}

func TestServer_ActionErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "gate denial",
			err:        fmt.Errorf("%w: matches blocked pattern", brokertypes.ErrCommandBlocked),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown action",
			err:        fmt.Errorf("%w: %q", brokertypes.ErrUnknownAction, "teleport"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "screenshot failure",
			err:        brokertypes.ErrScreenshotFailed,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{err: tt.err}
			s := newTestServer(nil, d)

			rec := postAction(t, s, brokertypes.Action{Type: brokertypes.ActionShell, Command: "x"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.err.Error())
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestServer_ActionBadBody(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/actions", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ScreenshotReturnsPNG(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n fake image data")
	d := &fakeDispatcher{result: &brokertypes.ActionResult{RunID: "run-9", PNG: png}}
	s := newTestServer(nil, d)

	rec := postAction(t, s, brokertypes.Action{Type: brokertypes.ActionScreenshot})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "run-9", rec.Header().Get("X-Run-ID"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestServer_RequestIDPropagated(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "client-id-42", rec.Header().Get("X-Request-ID"))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/actions", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
