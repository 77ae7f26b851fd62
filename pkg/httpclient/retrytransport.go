package httpclient

import (
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// RetryTransport is an http.RoundTripper that retries round trips failing before any
// response arrives, with the same policy as DoRequest. A response is returned as is
// whatever its status. Requests whose body cannot be replayed are sent once.
type RetryTransport struct {
	Base       http.RoundTripper // http.DefaultTransport when nil
	MaxRetries uint
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// NewRetryTransport wraps base with the retry policy of opts.
func NewRetryTransport(base http.RoundTripper, opts ClientOptions) *RetryTransport {
	return &RetryTransport{
		Base:       base,
		MaxRetries: opts.MaxRetries,
		RetryDelay: opts.RetryDelay,
		Logger:     opts.Logger,
	}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.MaxRetries + 1
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		attempts = 1
	}
	log := t.Logger.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Logger()

	attempt := 0
	return retry.DoWithData(
		func() (*http.Response, error) {
			attempt++
			r := req
			if attempt > 1 && req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, retry.Unrecoverable(err)
				}
				r = req.Clone(req.Context())
				r.Body = body
			}
			return base.RoundTrip(r)
		},
		retryOptions(req.Context(), attempts, t.RetryDelay, log)...,
	)
}
