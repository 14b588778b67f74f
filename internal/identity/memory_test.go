package identity

import (
	"context"
	"testing"

	"github.com/collegiate-app/collegiate/internal/model"
)

func seedMemory(t *testing.T) (*Memory, *AuthResult) {
	t.Helper()
	m := NewMemory(nil)
	res, err := m.SignUp(context.Background(), SignUpParams{
		Email:    "alice@example.com",
		Password: "hunter22",
		FullName: "Alice Smith",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	return m, res
}

func TestMemorySignInSuccess(t *testing.T) {
	m, _ := seedMemory(t)

	res, err := m.SignIn(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.User.FullName != "Alice Smith" {
		t.Errorf("full name = %q, want %q", res.User.FullName, "Alice Smith")
	}
	if res.Tokens == nil || res.Tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestMemorySignInWrongPassword(t *testing.T) {
	m, _ := seedMemory(t)

	_, err := m.SignIn(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	authErr, ok := err.(*AuthError)
	if !ok {
		t.Fatalf("error type = %T, want *AuthError", err)
	}
	if authErr.Message != "Invalid email or password." {
		t.Errorf("message = %q, want %q", authErr.Message, "Invalid email or password.")
	}

	// Stored credentials are untouched: the right password still works.
	if _, err := m.SignIn(context.Background(), "alice@example.com", "hunter22"); err != nil {
		t.Errorf("sign in after failed attempt: %v", err)
	}
}

func TestMemorySignInUnknownEmail(t *testing.T) {
	m := NewMemory(nil)

	_, err := m.SignIn(context.Background(), "nobody@example.com", "whatever")
	if err == nil {
		t.Fatal("expected error for unknown email")
	}
	if err.Error() != "Invalid email or password." {
		t.Errorf("message = %q, want %q", err.Error(), "Invalid email or password.")
	}
}

func TestMemorySignUpDuplicate(t *testing.T) {
	m, _ := seedMemory(t)

	_, err := m.SignUp(context.Background(), SignUpParams{
		Email:    "Alice@Example.com", // case differs, same account
		Password: "another",
	})
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}
	if err.Error() != "An account with this email already exists." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestMemoryUserFromToken(t *testing.T) {
	m, res := seedMemory(t)

	user, err := m.UserFromToken(context.Background(), res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("user from token: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	if _, err := m.UserFromToken(context.Background(), "garbage"); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestMemoryRefreshRotates(t *testing.T) {
	m, res := seedMemory(t)

	tokens, err := m.Refresh(context.Background(), res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected fresh token pair")
	}

	// The old refresh token is consumed.
	if _, err := m.Refresh(context.Background(), res.Tokens.RefreshToken); err == nil {
		t.Error("expected error reusing consumed refresh token")
	}
}

func TestMemoryRecoveryFlow(t *testing.T) {
	m, _ := seedMemory(t)

	if err := m.Recover(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("recover: %v", err)
	}

	var token string
	m.mu.Lock()
	for tok := range m.recoveryTokens {
		token = tok
	}
	m.mu.Unlock()
	if token == "" {
		t.Fatal("expected recovery token to be recorded")
	}

	tokens, err := m.VerifyRecovery(context.Background(), token)
	if err != nil {
		t.Fatalf("verify recovery: %v", err)
	}
	if err := m.UpdatePassword(context.Background(), tokens.AccessToken, "newpass99"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	if _, err := m.SignIn(context.Background(), "alice@example.com", "hunter22"); err == nil {
		t.Error("old password should no longer work")
	}
	if _, err := m.SignIn(context.Background(), "alice@example.com", "newpass99"); err != nil {
		t.Errorf("new password: %v", err)
	}

	// Recovery tokens are single-use.
	if _, err := m.VerifyRecovery(context.Background(), token); err == nil {
		t.Error("expected error reusing recovery token")
	}
}

func TestMemoryRecoverUnknownEmailSilent(t *testing.T) {
	m := NewMemory(nil)

	if err := m.Recover(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("recover unknown email should succeed silently, got %v", err)
	}
}
