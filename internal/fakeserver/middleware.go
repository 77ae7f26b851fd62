package fakeserver

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request ID set by the client. It is echoed on the response.
const RequestIDHeader = "X-Request-Id"

// statusWriter tracks whether a response was started and with which status.
type statusWriter struct {
	http.ResponseWriter
	written bool
	status  int
}

func (rw *statusWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusWriter) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Flush keeps streamed completions flowing through the middleware.
func (rw *statusWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLogger logs every request with its request ID and echoes the ID back.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			log := logger.With().Str("request_id", requestID).Logger()
			rw := &statusWriter{ResponseWriter: w}
			defer func() {
				log.Debug().
					Str("method", r.Method).
					Str("path", r.URL.EscapedPath()).
					Int("status", rw.Status()).
					Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
					Msg("request completed")
			}()
			next.ServeHTTP(rw, r.WithContext(log.WithContext(r.Context())))
		})
	}
}

// panicHandler turns a panicking handler into a 500 response.
func panicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusWriter{ResponseWriter: w}
		defer func() {
			if err := recover(); err != nil {
				zerolog.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")
				if !rw.written {
					(&httpError{Description: "unable to process request", StatusCode: http.StatusInternalServerError}).send(rw)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
