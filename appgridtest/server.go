// Package appgridtest provides an in-process fake of the AppGrid logging
// endpoints for tests.
//
//	srv := appgridtest.NewServer(appgridtest.WithLogLevel("warn"))
//	defer srv.Close()
//	opts := appgridlog.Options{AppGridURL: srv.URL, LogLevel: "debug"}
package appgridtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"
)

// Event is a decoded POST /application/log/{level} body.
type Event struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Dimensions map[string]any `json:"dimensions"`
}

// Request is one call received by the server.
type Request struct {
	Method string
	Path   string
	Level  string
	Header http.Header
	Body   []byte
	Event  Event
}

// Server records requests and answers level queries.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	requests   []Request
	logLevel   string
	failStatus int
}

// Option configures a Server.
type Option func(*Server)

// WithLogLevel sets the level reported by GET /application/log/level.
func WithLogLevel(level string) Option {
	return func(s *Server) {
		s.logLevel = level
	}
}

// WithFailure makes every endpoint answer with status.
func WithFailure(status int) Option {
	return func(s *Server) {
		s.failStatus = status
	}
}

// NewServer starts a fake AppGrid. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{logLevel: "info"}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.failures)
	r.Get("/application/log/level", s.handleLevel)
	r.Post("/application/log/{level}", s.handleEvent)
	return r
}

func (s *Server) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.failStatus
		s.mu.Unlock()
		if status == 0 {
			next.ServeHTTP(w, r)
			return
		}
		s.record(Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
	})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	level := s.logLevel
	s.mu.Unlock()

	s.record(Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
	writeJSON(w, http.StatusOK, map[string]string{"logLevel": level})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		defer gz.Close()
		body = gz
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.record(Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Level:  chi.URLParam(r, "level"),
		Header: r.Header.Clone(),
		Body:   raw,
		Event:  event,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) record(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

// SetLogLevel changes the level reported to clients.
func (s *Server) SetLogLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
}

// SetFailure makes every endpoint answer with status. Zero restores normal
// behavior.
func (s *Server) SetFailure(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Events returns the POSTed events in arrival order.
func (s *Server) Events() []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method == http.MethodPost && req.Level != "" {
			out = append(out, req)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
