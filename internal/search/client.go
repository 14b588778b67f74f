package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Client queries the catalog search endpoint and runs results through
// the normalize, quality-filter, and sort stages.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page of colleges matching the filters. The context
// governs cancellation; a superseded query returns ctx.Err().
func (c *Client) Search(ctx context.Context, f Filters) ([]model.College, error) {
	raw, err := c.fetch(ctx, f)
	if err != nil {
		return nil, err
	}
	return Process(raw, f), nil
}

// Process runs raw catalog records through the client-side pipeline.
func Process(recs []APICollege, f Filters) []model.College {
	colleges := NormalizeAll(recs)
	colleges = FilterQuality(colleges, f.State != "")
	Sort(colleges, f.SortBy, f.SortOrder)
	return colleges
}

func (c *Client) fetch(ctx context.Context, f Filters) ([]APICollege, error) {
	params := url.Values{}
	if q := strings.TrimSpace(f.Query); q != "" {
		params.Set("name", q)
	}
	if s := strings.TrimSpace(f.State); s != "" {
		params.Set("state", strings.ToUpper(s))
	}
	if f.OnlineOnly {
		params.Set("online_only", "true")
	}
	if f.SortBy != "" {
		params.Set("sort_by", string(f.SortBy))
	}
	if f.SortOrder != "" {
		params.Set("sort_order", string(f.SortOrder))
	}

	endpoint := c.baseURL + "/api/college/search"
	if enc := params.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("college search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("college search returned status %d", resp.StatusCode)
	}

	var payload APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding college search response: %w", err)
	}
	return payload.Results, nil
}
