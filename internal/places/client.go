package places

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client forwards autocomplete and distance queries to the external places
// API and hands the response body back verbatim; the admin front-end consumes
// the provider's JSON as-is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	origin     string
}

// NewClient builds a proxy client. origin is the business address every
// distance lookup measures from. The HTTP client carries an explicit timeout;
// the upstream API gets no say in how long a handler blocks.
func NewClient(apiKey, origin string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		origin:     origin,
	}
}

// WithBaseURL points the client at a different API host. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Autocomplete runs an address autocomplete query restricted to US addresses.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("components", "country:us")
	params.Set("key", c.apiKey)

	return c.get(ctx, c.baseURL+"/place/autocomplete/json?"+params.Encode())
}

// Distance looks up directions from the configured origin address to the
// given place ID.
func (c *Client) Distance(ctx context.Context, placeID string) ([]byte, error) {
	params := url.Values{}
	params.Set("origin", c.origin)
	params.Set("destination", "place_id:"+placeID)
	params.Set("key", c.apiKey)

	return c.get(ctx, c.baseURL+"/directions/json?"+params.Encode())
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call places api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read places response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api returned status %d", resp.StatusCode)
	}

	return body, nil
}
