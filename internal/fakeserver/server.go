// Package fakeserver implements an in-memory stand-in for the Minds REST API. Tests point
// an SDK client at it, then inspect the requests it recorded and the resources it holds.
// Any route can be forced to fail with a chosen status.
package fakeserver

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DefaultProject is the project the fake serves minds under when none is seeded.
const DefaultProject = "mindsdb"

// Request is one request observed by the server.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Server is an in-memory Minds API. The zero value is not usable; call New.
type Server struct {
	Router *chi.Mux

	httpSrv *httptest.Server
	logger  zerolog.Logger

	mu          sync.Mutex
	requests    []Request
	failures    map[string]failure
	datasources map[string]map[string]any
	minds       map[string]map[string]map[string]any // project -> name -> mind
	clock       func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request the server handles to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New starts a fake server on a loopback address.
func New(opts ...Option) *Server {
	s := &Server{
		Router:      chi.NewRouter(),
		logger:      zerolog.Nop(),
		failures:    make(map[string]failure),
		datasources: make(map[string]map[string]any),
		minds:       make(map[string]map[string]map[string]any),
		clock:       timestamp,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mountHandlers()
	s.httpSrv = httptest.NewServer(s.Router)
	return s
}

func (s *Server) mountHandlers() {
	s.Router.Use(requestLogger(s.logger))
	s.Router.Use(panicHandler)
	s.Router.Use(s.recordRequest)
	s.Router.Use(s.injectFailure)
	s.Router.Route("/api", func(r chi.Router) {
		r.Route("/datasources", func(r chi.Router) {
			r.Get("/", wrap(s.listDatasources))
			r.Post("/", wrap(s.createDatasource))
			r.Get("/{name}", wrap(s.getDatasource))
			r.Patch("/{name}", wrap(s.updateDatasource))
			r.Delete("/{name}", wrap(s.deleteDatasource))
		})
		r.Route("/projects/{project}/minds", func(r chi.Router) {
			r.Get("/", wrap(s.listMinds))
			r.Post("/", wrap(s.createMind))
			r.Get("/{name}", wrap(s.getMind))
			r.Patch("/{name}", wrap(s.updateMind))
			r.Delete("/{name}", wrap(s.deleteMind))
			r.Post("/{name}/datasources", wrap(s.addMindDatasource))
			r.Delete("/{name}/datasources/{dsName}", wrap(s.dropMindDatasource))
		})
	})
	s.Router.Post("/v1/chat/completions", s.chatCompletions)
	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errNotFound("route").send(w)
	})
	s.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		(&httpError{StatusCode: http.StatusMethodNotAllowed, Description: "request method not supported"}).send(w)
	})
}

// URL returns the server root, e.g. http://127.0.0.1:34567. The REST API lives under /api.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// CompletionsURL returns the base URL of the OpenAI compatible endpoint.
func (s *Server) CompletionsURL() string {
	return s.httpSrv.URL + "/v1/"
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// Requests returns a copy of every request seen so far, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests seen so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request. ok is false when none was made.
func (s *Server) LastRequest() (req Request, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ResetRequests forgets the recorded requests. Stored resources are kept.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// FailWith makes every request matching method and path answer with status and body
// until ClearFailures is called. path is the full request path, e.g. /api/datasources/x.
func (s *Server) FailWith(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures removes every failure installed with FailWith.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.EscapedPath()]
		s.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(f.status)
			w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}
