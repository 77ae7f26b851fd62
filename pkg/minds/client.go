package minds

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mindsdb/minds-go/internal/common/logtrace"
	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/mindsdb/minds-go/pkg/httpclient"
	"github.com/rs/zerolog"
)

// Config holds the settings of a Client. It is filled from options by NewClient and is
// read-only afterwards.
type Config struct {
	APIKey         string `validate:"required"`
	BaseURL        string `validate:"required,url"`
	Project        string `validate:"required"`
	CompletionsURL string
	Transport      httpclient.ClientOptions `validate:"-"`
}

// GetServerURL returns the API base URL.
func (c *Config) GetServerURL() string {
	return c.BaseURL
}

// GetAPIKey returns the bearer token.
func (c *Config) GetAPIKey() string {
	return c.APIKey
}

var _ httpclient.Configurator = (*Config)(nil)

// Option configures a Client.
type Option func(*Config)

// WithBaseURL points the client at another deployment. /api is appended when missing.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithProject sets the project minds are managed in.
func WithProject(project string) Option {
	return func(c *Config) {
		c.Project = project
	}
}

// WithCompletionsURL sets the base URL of the OpenAI compatible completions endpoint.
func WithCompletionsURL(completionsURL string) Option {
	return func(c *Config) {
		c.CompletionsURL = completionsURL
	}
}

// WithTimeout sets the timeout of a single request attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Transport.Timeout = timeout
	}
}

// WithMaxRetries sets how often a request is retried after a transport failure.
func WithMaxRetries(maxRetries uint) Option {
	return func(c *Config) {
		c.Transport.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.Transport.RetryDelay = delay
	}
}

// WithCache sets the size and lifetime of the GET response cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Config) {
		c.Transport.CacheSize = size
		c.Transport.CacheTTL = ttl
	}
}

// WithoutCache disables the response cache.
func WithoutCache() Option {
	return WithCache(0, 0)
}

// WithRateLimit caps the request rate of the client.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Config) {
		c.Transport.RateLimit = perSecond
		c.Transport.RateBurst = burst
	}
}

// WithHTTPClient sets the base *http.Client. It is copied, never modified.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.Transport.HTTPClient = client
	}
}

// WithLogger sets the logger used for request tracing. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Transport.Logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.Transport.UserAgent = userAgent
	}
}

// Client is a Minds API client. It is safe for concurrent use. Two clients never share
// credentials, cookies or cached responses.
type Client struct {
	Datasources *DatasourcesService
	Minds       *MindsService

	config Config
	http   *httpclient.HTTPClient
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	config := Config{
		APIKey:    apiKey,
		BaseURL:   DefaultBaseURL,
		Project:   DefaultProject,
		Transport: httpclient.DefaultClientOptions(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	config.BaseURL = httpclient.NormalizeBaseURL(config.BaseURL)
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	if config.CompletionsURL == "" {
		config.CompletionsURL = defaultCompletionsURL(config.BaseURL)
	}
	if !strings.HasSuffix(config.CompletionsURL, "/") {
		config.CompletionsURL += "/"
	}

	transport, err := httpclient.NewClient(&config, config.Transport)
	if err != nil {
		return nil, apperrors.ErrValidation.MsgErr("unable to create transport", err)
	}

	c := &Client{
		config: config,
		http:   transport,
	}
	log := logtrace.Component(config.Transport.Logger, "minds")
	c.Datasources = &DatasourcesService{http: transport, logger: log}
	c.Minds = &MindsService{
		http:        transport,
		project:     config.Project,
		completions: newCompleter(&config, transport.HTTP()),
		logger:      log,
	}
	return c, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

func validateConfig(config *Config) error {
	err := v().Struct(config)
	if err == nil {
		return nil
	}
	validatorErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ErrValidation.MsgErr("invalid client configuration", err)
	}
	var validationErrors apperrors.ValidationErrors
	for _, e := range validatorErrors {
		if e.Tag() == "required" {
			validationErrors = append(validationErrors, apperrors.ErrMissingRequiredAttribute(e.Field()))
			continue
		}
		validationErrors = append(validationErrors, apperrors.ValidationError{
			Field:  e.Field(),
			Value:  e.Value(),
			ErrStr: "invalid " + e.Tag(),
		})
	}
	return validationErrors
}

// defaultCompletionsURL derives the completions endpoint from the API base URL. The cloud
// service serves completions from a dedicated llm host; self-hosted deployments serve them
// next to the API.
func defaultCompletionsURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err == nil && u.Hostname() == defaultCloudAPIHost {
		return DefaultCompletionsURL
	}
	return strings.TrimSuffix(baseURL, httpclient.APIPathSuffix) + "/"
}

// ContextWithRequestID returns a copy of ctx whose requests carry id in the X-Request-Id
// header. Requests without one get a random ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return logtrace.ContextWithRequestID(ctx, id)
}
