package minds

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/mindsdb/minds-go/internal/fakeserver"
	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("key")
	require.NoError(t, err)
	defer c.Close()

	cfg := c.Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultProject, cfg.Project)
	assert.Equal(t, DefaultCompletionsURL, cfg.CompletionsURL)
	assert.Equal(t, 10*time.Second, cfg.Transport.Timeout)
	assert.EqualValues(t, 2, cfg.Transport.MaxRetries)
	assert.Equal(t, time.Minute, cfg.Transport.CacheTTL)
	assert.Equal(t, DefaultProject, c.Minds.Project())
}

func TestNewClientBaseURL(t *testing.T) {
	tests := []struct {
		baseURL     string
		expected    string
		completions string
	}{
		{"https://host", "https://host/api", "https://host/"},
		{"https://host/api", "https://host/api", "https://host/"},
		{"https://host/api/", "https://host/api", "https://host/"},
		{"https://mdb.ai", "https://mdb.ai/api", DefaultCompletionsURL},
		{"http://localhost:47334", "http://localhost:47334/api", "http://localhost:47334/"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			c, err := NewClient("key", WithBaseURL(tt.baseURL))
			require.NoError(t, err)
			defer c.Close()
			assert.Equal(t, tt.expected, c.Config().BaseURL)
			assert.Equal(t, tt.completions, c.Config().CompletionsURL)
		})
	}
}

func TestNewClientRequestsGoUnderAPI(t *testing.T) {
	for _, suffix := range []string{"", "/api"} {
		srv := fakeserver.New()
		c, err := NewClient("key", WithBaseURL(srv.URL()+suffix))
		require.NoError(t, err)

		_, err = c.Datasources.List(context.Background())
		require.NoError(t, err)
		req, ok := srv.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "/api/datasources", req.Path)

		c.Close()
		srv.Close()
	}
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "APIKey")

	_, err = NewClient("key", WithProject(""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "Project")

	_, err = NewClient("key", WithBaseURL(""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClientsDoNotShareState(t *testing.T) {
	srv := fakeserver.New()
	defer srv.Close()
	srv.PutDatasource(map[string]any{"name": "testds", "engine": "postgres"})

	first, err := NewClient("key-one", WithBaseURL(srv.URL()))
	require.NoError(t, err)
	defer first.Close()
	second, err := NewClient("key-two", WithBaseURL(srv.URL()), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer second.Close()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = first.Datasources.Get(context.Background(), "testds")
		}()
		go func() {
			defer wg.Done()
			_, _ = second.Minds.List(context.Background())
		}()
	}
	wg.Wait()

	for _, req := range srv.Requests() {
		switch req.Path {
		case "/api/datasources/testds":
			assert.Equal(t, "Bearer key-one", req.Header.Get("Authorization"))
		case "/api/projects/mindsdb/minds":
			assert.Equal(t, "Bearer key-two", req.Header.Get("Authorization"))
		default:
			t.Fatalf("unexpected request %s %s", req.Method, req.Path)
		}
	}

	// the first client's cache is not visible to the second
	srv.ResetRequests()
	_, err = second.Datasources.Get(context.Background(), "testds")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.RequestCount())
}

func TestClientCachesReads(t *testing.T) {
	c, srv := newTestClient(t)
	srv.PutDatasource(map[string]any{"name": "testds", "engine": "postgres"})

	for i := 0; i < 3; i++ {
		_, err := c.Datasources.Get(context.Background(), "testds")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.RequestCount())

	c, srv = newTestClient(t, WithoutCache())
	srv.PutDatasource(map[string]any{"name": "testds", "engine": "postgres"})
	for i := 0; i < 3; i++ {
		_, err := c.Datasources.Get(context.Background(), "testds")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, srv.RequestCount())
}

func TestClientCustomHTTPClient(t *testing.T) {
	var seen int
	base := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen++
		return http.DefaultTransport.RoundTrip(r)
	})}
	c, srv := newTestClient(t, WithHTTPClient(base), WithUserAgent("sales-bot/1.0"))

	_, err := c.Minds.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
	assert.Nil(t, base.Jar, "the caller's client is not modified")

	req, _ := srv.LastRequest()
	assert.Equal(t, "sales-bot/1.0", req.Header.Get("User-Agent"))
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestContextWithRequestID(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.Minds.List(ContextWithRequestID(context.Background(), "trace-1"))
	require.NoError(t, err)
	req, _ := srv.LastRequest()
	assert.Equal(t, "trace-1", req.Header.Get("X-Request-Id"))
}
