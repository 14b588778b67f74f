package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		URL:              server.URL,
		AnonKey:          "test-anon-key",
		ResetRedirectURL: "collegiate://reset-password",
	})
}

func TestClientSignInSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		if r.Header.Get("apikey") != "test-anon-key" {
			t.Errorf("missing apikey header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "alice@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user": map[string]any{
				"id":    "user-1",
				"email": "alice@example.com",
				"user_metadata": map[string]any{
					"full_name": "Alice Smith",
					"role":      "counselor",
				},
			},
		})
	}))

	res, err := c.SignIn(context.Background(), " alice@example.com ", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.User.FullName != "Alice Smith" {
		t.Errorf("full name = %q", res.User.FullName)
	}
	if res.User.Role != "counselor" {
		t.Errorf("role = %q, want counselor", res.User.Role)
	}
	if res.Tokens == nil || res.Tokens.AccessToken != "access-1" || res.Tokens.RefreshToken != "refresh-1" {
		t.Errorf("tokens = %+v", res.Tokens)
	}
}

func TestClientSignInNestedSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
			},
			"user": map[string]any{"id": "user-1", "email": "alice@example.com"},
		})
	}))

	res, err := c.SignIn(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.Tokens == nil || res.Tokens.AccessToken != "access-2" {
		t.Errorf("tokens = %+v", res.Tokens)
	}
	// Name falls back to the email local part when metadata is empty.
	if res.User.FullName != "alice" {
		t.Errorf("full name = %q, want alice", res.User.FullName)
	}
	if res.User.Role != "student" {
		t.Errorf("role = %q, want student", res.User.Role)
	}
}

func TestClientSignInInvalidCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Invalid login credentials"})
	}))

	_, err := c.SignIn(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	authErr, ok := err.(*AuthError)
	if !ok {
		t.Fatalf("error type = %T, want *AuthError", err)
	}
	if authErr.Kind != KindInvalidCredentials {
		t.Errorf("kind = %d, want KindInvalidCredentials", authErr.Kind)
	}
	if authErr.Message != "Invalid email or password." {
		t.Errorf("message = %q", authErr.Message)
	}
}

func TestClientSignUpAlreadyRegistered(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
	}))

	_, err := c.SignUp(context.Background(), SignUpParams{Email: "alice@example.com", Password: "pw"})
	if err == nil || err.Error() != "An account with this email already exists." {
		t.Errorf("err = %v", err)
	}
}

func TestClientRecoverSendsRedirect(t *testing.T) {
	var gotRedirect string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/recover" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotRedirect = body["redirect_to"]
		w.Write([]byte("{}"))
	}))

	if err := c.Recover(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if gotRedirect != "collegiate://reset-password" {
		t.Errorf("redirect_to = %q", gotRedirect)
	}
}

func TestClientResetFlowDistinctFailures(t *testing.T) {
	// Verify step fails.
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Token has expired or is invalid"})
	}))
	_, err := c.VerifyRecovery(context.Background(), "stale-token")
	if err == nil || err.Error() != "Your reset token is invalid or expired." {
		t.Errorf("verify err = %v", err)
	}

	// Update step fails with its own message.
	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	err = c.UpdatePassword(context.Background(), "short-lived", "newpw")
	if err == nil || err.Error() != "Unable to reset password." {
		t.Errorf("update err = %v", err)
	}
}

func TestClientUserFromToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "user-1",
			"email": "alice@example.com",
			"user_metadata": map[string]any{
				"first_name": "Alice",
			},
		})
	}))

	user, err := c.UserFromToken(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("user from token: %v", err)
	}
	if user.ID != "user-1" || user.FullName != "Alice" {
		t.Errorf("user = %+v", user)
	}
}

func TestClientRefresh(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-3",
			"refresh_token": "refresh-3",
		})
	}))

	tokens, err := c.Refresh(context.Background(), "refresh-2")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if tokens.AccessToken != "access-3" {
		t.Errorf("access token = %q", tokens.AccessToken)
	}
}

func TestClientUnconfigured(t *testing.T) {
	c := NewClient(Config{})

	if _, err := c.SignIn(context.Background(), "a@b.c", "pw"); err == nil {
		t.Error("expected configuration error")
	}
}
