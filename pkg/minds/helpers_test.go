package minds

import (
	"testing"
	"time"

	"github.com/mindsdb/minds-go/internal/fakeserver"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeserver.Server) {
	t.Helper()
	srv := fakeserver.New()
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithBaseURL(srv.URL()),
		WithCompletionsURL(srv.CompletionsURL()),
		WithRetryDelay(time.Millisecond),
	}, opts...)
	c, err := NewClient("test-key", opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, srv
}

func testDatabaseConfig(name string) DatabaseConfig {
	return DatabaseConfig{
		Name:        name,
		Engine:      "postgres",
		Description: "sales data",
		ConnectionData: map[string]any{
			"host":     "db.internal",
			"port":     float64(5432),
			"user":     "demo",
			"password": "secret",
			"database": "sales",
		},
		Tables: []string{"orders"},
	}
}

func gjsonRaw(t *testing.T, body []byte, path string) string {
	t.Helper()
	res := gjson.GetBytes(body, path)
	require.True(t, res.Exists(), "%s missing from %s", path, body)
	return res.Raw
}
