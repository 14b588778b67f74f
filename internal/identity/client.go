package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Config holds the identity provider endpoint configuration.
type Config struct {
	URL              string // base URL, no trailing slash
	AnonKey          string
	ResetRedirectURL string
}

// Client wraps the identity provider's REST auth endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true when the provider URL and API key are set.
func (c *Client) Configured() bool {
	return c.cfg.URL != "" && c.cfg.AnonKey != ""
}

func (c *Client) ensureConfigured() error {
	if !c.Configured() {
		return fmt.Errorf("identity provider not configured: set COLLEGIATE_SUPABASE_URL and COLLEGIATE_SUPABASE_ANON_KEY")
	}
	return nil
}

type providerUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type providerSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// authResponse covers every response shape the provider's auth endpoints
// produce: some nest the session, some flatten the token pair at the top.
type authResponse struct {
	User         *providerUser    `json:"user"`
	Session      *providerSession `json:"session"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

func (r *authResponse) tokens() *Tokens {
	if r == nil {
		return nil
	}
	if r.Session != nil && r.Session.AccessToken != "" {
		return &Tokens{AccessToken: r.Session.AccessToken, RefreshToken: r.Session.RefreshToken}
	}
	if r.AccessToken != "" {
		return &Tokens{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	}
	return nil
}

func metadataString(md map[string]any, key string) string {
	if v, ok := md[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func mapProviderUser(u providerUser) model.AuthUser {
	fullName := metadataString(u.UserMetadata, "full_name")
	if fullName == "" {
		fullName = metadataString(u.UserMetadata, "first_name")
	}
	if fullName == "" {
		fullName = metadataString(u.UserMetadata, "name")
	}
	if fullName == "" {
		if at := strings.IndexByte(u.Email, '@'); at > 0 {
			fullName = u.Email[:at]
		}
	}
	if fullName == "" {
		fullName = "User"
	}

	role := model.RoleStudent
	if metadataString(u.UserMetadata, "role") == string(model.RoleCounselor) {
		role = model.RoleCounselor
	}

	return model.AuthUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: fullName,
		Role:     role,
	}
}

// do issues one request against the provider. Every request carries the
// apikey header; bearer adds an Authorization header when non-empty. A
// non-2xx status yields a classified AuthError built from the error body;
// otherwise the raw response body is returned for per-endpoint decoding.
func (c *Client) do(ctx context.Context, method, path, bearer string, payload any, fallback string) ([]byte, error) {
	if err := c.ensureConfigured(); err != nil {
		return nil, err
	}

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.AnonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr providerError
		_ = json.NewDecoder(resp.Body).Decode(&perr)
		return nil, classify(perr.text(), resp.StatusCode, fallback)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read identity response: %w", err)
	}
	return data, nil
}

func (c *Client) doAuth(ctx context.Context, method, path, bearer string, payload any, fallback string) (*authResponse, error) {
	data, err := c.do(ctx, method, path, bearer, payload, fallback)
	if err != nil {
		return nil, err
	}
	var decoded authResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	return &decoded, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, "Unable to sign in.")
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &AuthError{Kind: KindUnknown, Message: "Unable to sign in."}
	}
	return &AuthResult{User: mapProviderUser(*resp.User), Tokens: resp.tokens()}, nil
}

func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*AuthResult, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]any{
		"email":    strings.TrimSpace(p.Email),
		"password": p.Password,
		"data": map[string]any{
			"full_name":   p.FullName,
			"role":        p.Role,
			"school_name": p.SchoolName,
		},
	}, "Unable to create account.")
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &AuthError{Kind: KindUnknown, Message: "Unable to create account."}
	}
	return &AuthResult{User: mapProviderUser(*resp.User), Tokens: resp.tokens()}, nil
}

// Recover requests a password-recovery email. The provider succeeds even
// for unknown addresses, so no user-enumeration signal leaks here.
func (c *Client) Recover(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/recover", "", map[string]string{
		"email":       strings.TrimSpace(email),
		"redirect_to": c.cfg.ResetRedirectURL,
	}, "Unable to send reset link.")
	return err
}

// VerifyRecovery exchanges a recovery token for a short-lived session.
func (c *Client) VerifyRecovery(ctx context.Context, token string) (*Tokens, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/auth/v1/verify", "", map[string]string{
		"type":  "recovery",
		"token": strings.TrimSpace(token),
	}, "Invalid or expired reset token.")
	if err != nil {
		return nil, err
	}
	tokens := resp.tokens()
	if tokens == nil {
		return nil, &AuthError{Kind: KindTokenExpired, Message: "Reset token could not be verified."}
	}
	return tokens, nil
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	_, err := c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, map[string]string{
		"password": newPassword,
	}, "Unable to reset password.")
	return err
}

func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, "Unable to load user.")
	if err != nil {
		return nil, err
	}

	// This endpoint returns the user object at the top level.
	var pu providerUser
	if err := json.Unmarshal(data, &pu); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if pu.ID == "" {
		return nil, &AuthError{Kind: KindUnknown, Message: "Unable to load user."}
	}
	user := mapProviderUser(pu)
	return &user, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]string{
		"refresh_token": refreshToken,
	}, "Unable to refresh session.")
	if err != nil {
		return nil, err
	}
	tokens := resp.tokens()
	if tokens == nil {
		return nil, &AuthError{Kind: KindTokenExpired, Message: "Unable to refresh session."}
	}
	return tokens, nil
}
