// Package scorecard wraps the College Scorecard schools API.
package scorecard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const DefaultBaseURL = "https://api.data.gov/ed/collegescorecard/v1/schools"

// Fields requested from the upstream API. Kept small and stable so the
// payload stays cheap for mobile clients.
var fields = []string{
	"id",
	"school.name",
	"school.city",
	"school.state",
	"school.school_url",
	"school.online_only",
	"latest.student.size",
	"latest.admissions.admission_rate.overall",
	"latest.admissions.sat_scores.75th_percentile.critical_reading",
	"latest.admissions.sat_scores.75th_percentile.math",
	"latest.admissions.act_scores.75th_percentile.cumulative",
	"latest.cost.tuition.in_state",
	"latest.cost.tuition.out_of_state",
}

// sortFields maps client sort keys to upstream column names.
var sortFields = map[string]string{
	"name":             "school.name",
	"acceptance":       "latest.admissions.admission_rate.overall",
	"tuition_in_state": "latest.cost.tuition.in_state",
	"student_size":     "latest.student.size",
}

// Query holds the parameters for one schools lookup.
type Query struct {
	Name       string
	State      string
	OnlineOnly bool
	SortBy     string
	SortOrder  string
	Page       int
	PerPage    int
}

// Page is the raw upstream response. Results keep the upstream's flat
// dotted keys; callers normalize them.
type Page struct {
	Metadata map[string]any   `json:"metadata"`
	Results  []map[string]any `json:"results"`
}

type Config struct {
	APIKey  string
	BaseURL string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Search fetches one page of schools. Transient failures and upstream
// 5xx responses are retried with fibonacci backoff before giving up.
func (c *Client) Search(ctx context.Context, q Query) (*Page, error) {
	endpoint := c.cfg.BaseURL + "?" + c.params(q).Encode()

	var page *Page
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		page, err = c.fetch(ctx, endpoint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.RetryableError(fmt.Errorf("scorecard request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("scorecard returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorecard returned status %d", resp.StatusCode)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding scorecard response: %w", err)
	}
	return &page, nil
}

func (c *Client) params(q Query) url.Values {
	perPage := q.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 100
	}

	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(max(q.Page, 0)))
	params.Set("fields", strings.Join(fields, ","))

	if name := strings.TrimSpace(q.Name); name != "" {
		params.Set("school.name", name)
	}
	if state := strings.ToUpper(strings.TrimSpace(q.State)); state != "" {
		params.Set("school.state", state)
	}
	if q.OnlineOnly {
		params.Set("school.online_only", "1")
	}

	sortField, ok := sortFields[q.SortBy]
	if !ok {
		sortField = "school.name"
	}
	if strings.EqualFold(q.SortOrder, "desc") {
		sortField = "-" + sortField
	}
	params.Set("_sort", sortField)

	return params
}
