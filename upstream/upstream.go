// Package upstream fetches place details from the third-party lookup API and
// normalizes its responses.
//
// The API has an awkward convention: logical failures come back as transport
// 200s with an error_message and a status token in the body. Normalize folds
// transport errors, unparsable bodies, and embedded logical errors into one
// typed APIError with an HTTP-style code, so callers deal with exactly one
// failure shape. Nothing here retries; every upstream failure is reported
// verbatim with the derived code.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the production lookup endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client issues the templated details lookup. Purely mechanical: no retries,
// and no timeout beyond what the injected http.Client provides.
type Client struct {
	hc      *http.Client
	baseURL string
}

type Config struct {
	HTTPClient *http.Client // nil => http.DefaultClient
	BaseURL    string       // "" => DefaultBaseURL
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{hc: hc, baseURL: base}
}

// Fetch performs the details lookup for itemID authorized by tenantKey.
// The caller owns the response body.
func (c *Client) Fetch(ctx context.Context, itemID, tenantKey string) (*http.Response, error) {
	q := url.Values{}
	q.Set("place_id", itemID)
	q.Set("key", tenantKey)

	u := fmt.Sprintf("%s/details/json?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.hc.Do(req)
}
