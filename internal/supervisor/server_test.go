package supervisor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controlRequest(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("X-Control-Token", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestControlServerAuth(t *testing.T) {
	srv := NewServer(New(nil), "secret", nil)
	h := srv.Handler()

	rec := controlRequest(t, h, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = controlRequest(t, h, http.MethodGet, "/api/status", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = controlRequest(t, h, http.MethodGet, "/api/status", "secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// token accepted as a query parameter too
	rec = controlRequest(t, h, http.MethodGet, "/api/status?token=secret", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestControlServerIndexPage(t *testing.T) {
	srv := NewServer(New(nil), "secret", nil)

	rec := controlRequest(t, srv.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/pause")

	rec = controlRequest(t, srv.Handler(), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestControlServerStateConflicts(t *testing.T) {
	srv := NewServer(New(nil), "", nil)
	h := srv.Handler()

	// no child: every action conflicts
	rec := controlRequest(t, h, http.MethodPost, "/api/pause", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = controlRequest(t, h, http.MethodPost, "/api/resume", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = controlRequest(t, h, http.MethodGet, "/api/pause", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestControlServerLifecycle(t *testing.T) {
	sup := New(nil)
	sup.TerminateTimeout = 2 * time.Second
	require.NoError(t, sup.Start("sleep", "30"))

	srv := NewServer(sup, "secret", nil)
	h := srv.Handler()

	rec := controlRequest(t, h, http.MethodPost, "/api/pause", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = controlRequest(t, h, http.MethodGet, "/api/status", "secret")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, StatePaused, st.State)

	rec = controlRequest(t, h, http.MethodPost, "/api/resume", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = controlRequest(t, h, http.MethodPost, "/api/terminate", "secret")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestControlServerShutdownCallback(t *testing.T) {
	sup := New(nil)
	sup.TerminateTimeout = 2 * time.Second
	require.NoError(t, sup.Start("sleep", "30"))

	called := make(chan struct{})
	srv := NewServer(sup, "", nil)
	srv.OnShutdown = func() { close(called) }

	rec := controlRequest(t, srv.Handler(), http.MethodPost, "/api/shutdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ok"))

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback not invoked")
	}
}
