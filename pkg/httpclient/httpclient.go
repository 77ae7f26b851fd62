// Package httpclient provides the HTTP transport used by the Minds SDK. A client owns its
// base URL, credentials, cookie jar, response cache, retry policy and optional rate limit;
// nothing is shared between two clients. Every response is checked against the error
// taxonomy in pkg/apperrors before it is handed back to the caller.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mindsdb/minds-go/internal/common/logtrace"
	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// APIPathSuffix is the path every base URL must end with.
const APIPathSuffix = "/api"

// Configurator defines the interface for providing server configuration and authentication details.
type Configurator interface {
	GetServerURL() string
	GetAPIKey() string
}

// ClientOptions contains options for configuring the HTTP client.
// Start from DefaultClientOptions and override what you need.
type ClientOptions struct {
	Timeout               time.Duration  // per-attempt request timeout
	MaxRetries            uint           // automatic retries on transport failures
	RetryDelay            time.Duration  // initial delay between retries, doubled each time
	CacheSize             int            // number of GET responses kept; 0 disables the cache
	CacheTTL              time.Duration  // lifetime of a cached response; 0 disables the cache
	RateLimit             float64        // requests per second; 0 means unlimited
	RateBurst             int            // burst size used with RateLimit
	UserAgent             string         // value of the User-Agent header
	DisableCertValidation bool           // if true, skips TLS certificate validation
	HTTPClient            *http.Client   // optional base client; it is copied, never mutated
	Logger                zerolog.Logger // request logger
}

// DefaultClientOptions returns the options used when none are given: a 10s timeout, two
// retries, and a one minute cache of the 128 most recent GET responses.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		RetryDelay: 200 * time.Millisecond,
		CacheSize:  128,
		CacheTTL:   time.Minute,
		UserAgent:  "minds-go",
		Logger:     logtrace.Nop(),
	}
}

// RequestOptions contains options for making HTTP requests.
// Path is relative to the base URL and must already be escaped.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PATCH, DELETE)
	Path        string            // API endpoint path
	QueryParams map[string]string // Optional query parameters
	Body        []byte            // Optional request body
}

// Response is a successful (status < 400) HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (r *Response) clone() *Response {
	return &Response{
		StatusCode: r.StatusCode,
		Body:       bytes.Clone(r.Body),
		Header:     r.Header.Clone(),
	}
}

// HTTPClient represents a client for making HTTP requests to the Minds REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	cache      *lru.LRU[string, *Response]
	cacheMu    sync.Mutex
	cacheGen   uint64 // bumped by every purge
	limiter    *rate.Limiter
	maxRetries uint
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new HTTP client using the provided configuration.
// When no options are given DefaultClientOptions is used.
func NewClient(config Configurator, opts ...ClientOptions) (*HTTPClient, error) {
	clientOpts := DefaultClientOptions()
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	return NewClientWithOptions(config, clientOpts)
}

// NewClientWithOptions creates a new HTTP client using the provided configuration and options.
func NewClientWithOptions(config Configurator, opts ClientOptions) (*HTTPClient, error) {
	baseURL := NormalizeBaseURL(config.GetServerURL())
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", config.GetServerURL())
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("unable to create cookie jar: %w", err)
	}

	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	} else if opts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
	if httpClient.Jar == nil {
		httpClient.Jar = jar
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = opts.Timeout
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		apiKey:     config.GetAPIKey(),
		userAgent:  opts.UserAgent,
		httpClient: &httpClient,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     logtrace.Component(opts.Logger, "httpclient"),
	}
	if opts.CacheSize > 0 && opts.CacheTTL > 0 {
		c.cache = lru.NewLRU[string, *Response](opts.CacheSize, nil, opts.CacheTTL)
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// NormalizeBaseURL trims whitespace and trailing slashes, adds https:// when no scheme is
// given, and appends /api unless the URL already ends with it.
func NormalizeBaseURL(server string) string {
	server = strings.TrimSpace(server)
	server = strings.TrimRight(server, "/")
	if server == "" {
		return server
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	if !strings.HasSuffix(server, APIPathSuffix) {
		server += APIPathSuffix
	}
	return server
}

// BaseURL returns the normalized base URL, always ending in /api.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// APIKey returns the key sent as the bearer token.
func (c *HTTPClient) APIKey() string {
	return c.apiKey
}

// HTTP returns the underlying *http.Client, sharing its cookie jar and timeout.
func (c *HTTPClient) HTTP() *http.Client {
	return c.httpClient
}

// DoRequest makes an HTTP request with the given options.
// Transport failures are retried; a status of 400 or above is returned as an
// apperrors error carrying the response body and is never retried.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	u := c.buildURL(opts)
	requestID := logtrace.RequestID(ctx)
	log := c.logger.With().
		Str("method", opts.Method).
		Str("path", opts.Path).
		Str("request_id", requestID).
		Logger()

	cacheable := opts.Method == http.MethodGet && c.cache != nil
	var gen uint64
	if cacheable {
		if cached, ok := c.cache.Get(u); ok {
			log.Debug().Int("status", cached.StatusCode).Msg("served from cache")
			return c.checkResponse(log, cached.clone())
		}
		gen = c.generation()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.ErrTransport.MsgErr("rate limit wait aborted", err)
		}
	}

	resp, err := retry.DoWithData(
		func() (*Response, error) {
			return c.send(ctx, opts.Method, u, opts.Body, requestID)
		},
		retryOptions(ctx, c.maxRetries+1, c.retryDelay, log)...,
	)
	if err != nil {
		log.Error().Err(err).Msg("request failed")
		return nil, apperrors.ErrTransport.MsgErr(fmt.Sprintf("%s %s: %v", opts.Method, opts.Path, err), err)
	}

	resp, err = c.checkResponse(log, resp)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.store(gen, u, resp)
	} else {
		c.PurgeCache()
	}
	return resp, nil
}

func (c *HTTPClient) generation() uint64 {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	return c.cacheGen
}

// store caches resp unless a purge ran since the request was sent at generation gen.
// A read that overlaps a write is therefore never cached.
func (c *HTTPClient) store(gen uint64, key string, resp *Response) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if c.cacheGen != gen {
		return
	}
	c.cache.Add(key, resp.clone())
}

// retryOptions is the retry policy shared by DoRequest and RetryTransport: exponential
// backoff from delay, stopping as soon as ctx is done.
func retryOptions(ctx context.Context, attempts uint, delay time.Duration, log zerolog.Logger) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("transport failure, retrying")
		}),
	}
}

// checkResponse maps a failing status to the error taxonomy.
func (c *HTTPClient) checkResponse(log zerolog.Logger, resp *Response) (*Response, error) {
	if err := apperrors.FromStatus(resp.StatusCode, string(resp.Body)); err != nil {
		log.Error().Int("status", resp.StatusCode).Str("body", string(resp.Body)).Msg("request returned failure status")
		return nil, err
	}
	log.Debug().Int("status", resp.StatusCode).Msg("request succeeded")
	return resp, nil
}

// send performs a single attempt.
func (c *HTTPClient) send(ctx context.Context, method, u string, body []byte, requestID string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header,
	}, nil
}

func (c *HTTPClient) buildURL(opts RequestOptions) string {
	u := c.baseURL
	if p := strings.TrimLeft(opts.Path, "/"); p != "" {
		u += "/" + p
	}
	if len(opts.QueryParams) > 0 {
		q := url.Values{}
		for k, v := range opts.QueryParams {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	return u
}

// Get sends a GET request to path.
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: path})
}

// Post sends a POST request with a JSON body to path.
func (c *HTTPClient) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body to path.
func (c *HTTPClient) Patch(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request to path.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodDelete, Path: path})
}

// PurgeCache drops every cached response. Reads in flight when it runs are not cached.
func (c *HTTPClient) PurgeCache() {
	if c.cache == nil {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cacheGen++
	c.cache.Purge()
}

// Close releases idle connections held by the client.
func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}
