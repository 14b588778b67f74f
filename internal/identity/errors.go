package identity

import "strings"

// Kind classifies provider failures into the fixed set the UI layer
// understands. The provider reports errors as free-text messages, so
// classification matches against a static substring table.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindEmailNotConfirmed
	KindAlreadyRegistered
	KindTokenExpired
)

// AuthError carries a normalized, user-facing message for a failed
// identity operation.
type AuthError struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *AuthError) Error() string {
	return e.Message
}

var kindMessages = map[Kind]string{
	KindInvalidCredentials: "Invalid email or password.",
	KindEmailNotConfirmed:  "Please verify your email before signing in.",
	KindAlreadyRegistered:  "An account with this email already exists.",
	KindTokenExpired:       "Your reset token is invalid or expired.",
}

// Ordered: more specific patterns first, the bare "expired" catch-all last.
var providerPatterns = []struct {
	substr string
	kind   Kind
}{
	{"invalid login credentials", KindInvalidCredentials},
	{"email not confirmed", KindEmailNotConfirmed},
	{"user already registered", KindAlreadyRegistered},
	{"token has expired", KindTokenExpired},
	{"expired", KindTokenExpired},
}

// providerError mirrors the handful of field names the identity provider
// uses for error bodies across its endpoints.
type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error"`
}

func (p providerError) text() string {
	for _, s := range []string{p.Msg, p.Message, p.ErrorDescription, p.ErrorCode} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// classify maps a raw provider error message to an AuthError. When no
// pattern matches, the provider's own message is passed through; when the
// body carried no message at all, the fallback is used.
func classify(raw string, status int, fallback string) *AuthError {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return &AuthError{Kind: KindUnknown, Message: fallback, Status: status}
	}

	normalized := strings.ToLower(msg)
	for _, p := range providerPatterns {
		if strings.Contains(normalized, p.substr) {
			return &AuthError{Kind: p.kind, Message: kindMessages[p.kind], Status: status}
		}
	}
	return &AuthError{Kind: KindUnknown, Message: msg, Status: status}
}
