// Package dashboard talks to the saved-college endpoints on behalf of a
// signed-in user.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/collegiate-app/collegiate/internal/model"
)

// TokenSource supplies the bearer token for dashboard calls.
// *identity.Service satisfies it.
type TokenSource interface {
	AccessToken() (string, error)
}

// ErrNotSignedIn is returned before any network call when no session is
// available.
var ErrNotSignedIn = errors.New("You must be logged in to modify dashboard colleges.")

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the user's saved colleges.
func (c *Client) List(ctx context.Context) ([]model.SavedCollege, error) {
	var payload struct {
		Colleges []model.SavedCollege `json:"colleges"`
	}
	err := c.do(ctx, http.MethodGet, "/api/database/list", nil, &payload, "Failed to load dashboard colleges.")
	if err != nil {
		return nil, err
	}
	return payload.Colleges, nil
}

// Add saves a college from search results to the dashboard.
func (c *Client) Add(ctx context.Context, college model.College) error {
	return c.do(ctx, http.MethodPost, "/api/database/insert", college, nil, "Failed to add college.")
}

// Remove deletes a saved college by its dashboard id.
func (c *Client) Remove(ctx context.Context, savedID string) error {
	path := "/api/database/delete/" + url.PathEscape(savedID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "Failed to remove college.")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	token, err := c.tokens.AccessToken()
	if err != nil || token == "" {
		return ErrNotSignedIn
	}

	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dashboard request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			return errors.New(payload.Error)
		}
		return errors.New(fallback)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
