package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/collegiate-app/collegiate/internal/model"
)

const accessTokenTTL = time.Hour

type memoryAccount struct {
	user         model.AuthUser
	passwordHash []byte
	schoolName   string
}

// Memory is an in-process Provider used when no hosted identity provider
// is configured: local development and tests. Accounts live only as long
// as the process; access tokens are HS256 JWTs so token expiry behaves
// like the real provider.
type Memory struct {
	mu             sync.Mutex
	secret         []byte
	accountsByMail map[string]*memoryAccount
	accountsByID   map[string]*memoryAccount
	refreshTokens  map[string]string // refresh token -> user id
	recoveryTokens map[string]string // recovery token -> user id
}

// NewMemory creates an empty in-memory provider. A nil secret gets a
// random one, which is fine because the tokens never outlive the process.
func NewMemory(secret []byte) *Memory {
	if len(secret) == 0 {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = buf
	}
	return &Memory{
		secret:         secret,
		accountsByMail: make(map[string]*memoryAccount),
		accountsByID:   make(map[string]*memoryAccount),
		refreshTokens:  make(map[string]string),
		recoveryTokens: make(map[string]string),
	}
}

func (m *Memory) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accountsByMail[normalizeEmail(email)]
	if !ok {
		return nil, &AuthError{Kind: KindInvalidCredentials, Message: kindMessages[KindInvalidCredentials]}
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, &AuthError{Kind: KindInvalidCredentials, Message: kindMessages[KindInvalidCredentials]}
	}

	tokens, err := m.issueTokensLocked(acct.user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: acct.user, Tokens: tokens}, nil
}

func (m *Memory) SignUp(ctx context.Context, p SignUpParams) (*AuthResult, error) {
	email := normalizeEmail(p.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accountsByMail[email]; exists {
		return nil, &AuthError{Kind: KindAlreadyRegistered, Message: kindMessages[KindAlreadyRegistered]}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &AuthError{Kind: KindUnknown, Message: "Unable to create account."}
	}

	role := p.Role
	if role != model.RoleCounselor {
		role = model.RoleStudent
	}
	fullName := strings.TrimSpace(p.FullName)
	if fullName == "" {
		fullName = strings.SplitN(email, "@", 2)[0]
	}

	acct := &memoryAccount{
		user: model.AuthUser{
			ID:       uuid.NewString(),
			Email:    email,
			FullName: fullName,
			Role:     role,
		},
		passwordHash: hash,
		schoolName:   p.SchoolName,
	}
	m.accountsByMail[email] = acct
	m.accountsByID[acct.user.ID] = acct

	tokens, err := m.issueTokensLocked(acct.user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: acct.user, Tokens: tokens}, nil
}

// Recover records a recovery token for the account. Unknown addresses
// succeed silently, matching the hosted provider's enumeration-safe
// behavior.
func (m *Memory) Recover(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accountsByMail[normalizeEmail(email)]
	if !ok {
		return nil
	}

	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	m.recoveryTokens[hex.EncodeToString(buf)] = acct.user.ID
	return nil
}

func (m *Memory) VerifyRecovery(ctx context.Context, token string) (*Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.recoveryTokens[strings.TrimSpace(token)]
	if !ok {
		return nil, &AuthError{Kind: KindTokenExpired, Message: kindMessages[KindTokenExpired]}
	}
	delete(m.recoveryTokens, strings.TrimSpace(token))

	acct, ok := m.accountsByID[userID]
	if !ok {
		return nil, &AuthError{Kind: KindTokenExpired, Message: kindMessages[KindTokenExpired]}
	}
	return m.issueTokensLocked(acct.user)
}

func (m *Memory) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	userID, err := m.userIDFromToken(accessToken)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return &AuthError{Kind: KindUnknown, Message: "Unable to reset password."}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accountsByID[userID]
	if !ok {
		return &AuthError{Kind: KindUnknown, Message: "Unable to reset password."}
	}
	acct.passwordHash = hash
	return nil
}

func (m *Memory) UserFromToken(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	userID, err := m.userIDFromToken(accessToken)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accountsByID[userID]
	if !ok {
		return nil, &AuthError{Kind: KindTokenExpired, Message: "Session token is invalid or expired."}
	}
	user := acct.user
	return &user, nil
}

// Refresh rotates the token pair: the presented refresh token is consumed
// and a fresh pair is issued.
func (m *Memory) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.refreshTokens[refreshToken]
	if !ok {
		return nil, &AuthError{Kind: KindTokenExpired, Message: "Unable to refresh session."}
	}
	delete(m.refreshTokens, refreshToken)

	acct, ok := m.accountsByID[userID]
	if !ok {
		return nil, &AuthError{Kind: KindTokenExpired, Message: "Unable to refresh session."}
	}
	return m.issueTokensLocked(acct.user)
}

func (m *Memory) issueTokensLocked(user model.AuthUser) (*Tokens, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, &AuthError{Kind: KindUnknown, Message: "Unable to issue session token."}
	}

	refresh := uuid.NewString()
	m.refreshTokens[refresh] = user.ID
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Memory) userIDFromToken(accessToken string) (string, error) {
	tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return "", &AuthError{Kind: KindTokenExpired, Message: "Session token is invalid or expired."}
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", &AuthError{Kind: KindTokenExpired, Message: "Session token is invalid or expired."}
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", &AuthError{Kind: KindTokenExpired, Message: "Session token is invalid or expired."}
	}
	return sub, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
