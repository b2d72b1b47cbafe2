package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
)

const controlPage = `<!DOCTYPE html>
<html>
<head><title>wirecheck supervisor</title></head>
<body>
<h1>wirecheck supervisor</h1>
<p>Control endpoints (POST, token required):</p>
<ul>
  <li>GET  /api/status</li>
  <li>POST /api/pause</li>
  <li>POST /api/resume</li>
  <li>POST /api/terminate</li>
  <li>POST /api/shutdown</li>
</ul>
<p>Pass the token via the X-Control-Token header or ?token= query parameter.</p>
</body>
</html>
`

// Server exposes supervisor controls over HTTP. Every /api endpoint
// requires the configured token; an empty token disables authentication.
type Server struct {
	Supervisor *Supervisor
	Token      string
	Log        *slog.Logger

	// OnShutdown is called after a successful /api/shutdown terminate.
	OnShutdown func()

	srv *http.Server
}

type apiResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewServer builds a control server over sup.
func NewServer(sup *Supervisor, token string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Supervisor: sup, Token: token, Log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(controlPage))
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s.Supervisor.Status())
	})

	mux.HandleFunc("/api/pause", s.action(func() error { return s.Supervisor.Pause() }))
	mux.HandleFunc("/api/resume", s.action(func() error { return s.Supervisor.Resume() }))
	mux.HandleFunc("/api/terminate", s.action(func() error { return s.Supervisor.Terminate() }))
	mux.HandleFunc("/api/shutdown", s.action(func() error {
		err := s.Supervisor.Terminate()
		if err != nil && !errors.Is(err, ErrAlreadyStopped) {
			return err
		}
		if s.OnShutdown != nil {
			go s.OnShutdown()
		}
		return nil
	}))

	return mux
}

// action wraps a supervisor operation as a POST endpoint. State conflicts
// map to 409, everything else to 500.
func (s *Server) action(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.authorized(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := fn(); err != nil {
			code := http.StatusInternalServerError
			if isStateConflict(err) {
				code = http.StatusConflict
			}
			w.WriteHeader(code)
			_ = enc.Encode(apiResponse{Status: "error", Error: err.Error()})
			return
		}
		_ = enc.Encode(apiResponse{Status: "ok"})
	}
}

func isStateConflict(err error) bool {
	return errors.Is(err, ErrNotRunning) ||
		errors.Is(err, ErrAlreadyPaused) ||
		errors.Is(err, ErrNotPaused) ||
		errors.Is(err, ErrAlreadyStopped)
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.Token == "" {
		return true
	}
	token := r.Header.Get("X-Control-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token != s.Token {
		s.Log.Warn("control request rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
		http.Error(w, "invalid control token", http.StatusUnauthorized)
		return false
	}
	return true
}

// ListenAndServe serves the control API until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	s.Log.Info("control server listening", "addr", addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve runs over an existing listener; used when the caller binds first to
// report the chosen port.
func (s *Server) Serve(ln net.Listener) error {
	s.srv = &http.Server{Handler: s.Handler()}
	s.Log.Info("control server listening", "addr", ln.Addr().String())
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the control server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
