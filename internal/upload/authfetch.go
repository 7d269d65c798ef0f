package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/upsign/service/internal/auth"
)

// AuthFetcher obtains fresh authentication parameters for one upload.
type AuthFetcher interface {
	Fetch(ctx context.Context) (auth.Parameters, error)
}

// HTTPAuthFetcher calls the auth server with a GET request.
type HTTPAuthFetcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPAuthFetcher creates a fetcher for endpoint. A nil client means
// http.DefaultClient.
func NewHTTPAuthFetcher(endpoint string, client *http.Client) *HTTPAuthFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAuthFetcher{endpoint: endpoint, client: client}
}

// Fetch implements AuthFetcher. The body must decode into exactly the
// AuthParameters shape; anything else fails.
func (f *HTTPAuthFetcher) Fetch(ctx context.Context) (auth.Parameters, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return auth.Parameters{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return auth.Parameters{}, err
	}
	defer resp.Body.Close()

	if !statusOK(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return auth.Parameters{}, fmt.Errorf("auth endpoint returned %s", resp.Status)
	}

	var p auth.Parameters
	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return auth.Parameters{}, fmt.Errorf("decode auth parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return auth.Parameters{}, err
	}
	return p, nil
}
