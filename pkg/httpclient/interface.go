package httpclient

import (
	"context"
)

// HTTPClientInterface is the transport contract the SDK services depend on.
// Implementations must map failing statuses to the apperrors taxonomy and return
// the response untouched otherwise.
type HTTPClientInterface interface {
	// DoRequest makes an HTTP request with the given options.
	DoRequest(ctx context.Context, opts RequestOptions) (*Response, error)

	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string, body []byte) (*Response, error)
	Patch(ctx context.Context, path string, body []byte) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)

	// BaseURL returns the normalized base URL, ending in /api.
	BaseURL() string
}

var _ HTTPClientInterface = &HTTPClient{}
