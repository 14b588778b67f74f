package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/collegiate-app/collegiate/internal/model"
)

// SessionStore is the durable session blob the service reads and writes.
// *session.Store satisfies it.
type SessionStore interface {
	Write(model.PersistedSession) error
	Read() *model.PersistedSession
	Clear() error
}

// Service ties a Provider to a SessionStore and owns the session
// lifecycle: signed out, signed in, and the boot-time restore in between.
type Service struct {
	provider Provider
	sessions SessionStore
	logger   *slog.Logger
}

func NewService(p Provider, s SessionStore, logger *slog.Logger) *Service {
	return &Service{provider: p, sessions: s, logger: logger}
}

// SignIn exchanges credentials for a session, persists it, and returns
// the signed-in user.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.AuthUser, error) {
	res, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.persist(res)
	return &res.User, nil
}

// SignUp registers a new account and persists the session when the
// provider issued one.
func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*model.AuthUser, error) {
	res, err := s.provider.SignUp(ctx, p)
	if err != nil {
		return nil, err
	}
	s.persist(res)
	return &res.User, nil
}

// ForgotPassword requests a recovery email. It succeeds silently for
// unknown accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	return s.provider.Recover(ctx, email)
}

// ResetPassword verifies the recovery token, then uses the short-lived
// session it yields to set the new password. The two steps fail with
// distinct messages.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	tokens, err := s.provider.VerifyRecovery(ctx, token)
	if err != nil {
		return err
	}
	return s.provider.UpdatePassword(ctx, tokens.AccessToken, newPassword)
}

// RestoreUser rebuilds the signed-in user from the persisted session at
// startup. It validates the stored access token, falls back to a refresh
// when one is available, and clears the session when everything fails.
// All failure modes degrade to signed out; this never returns an error.
func (s *Service) RestoreUser(ctx context.Context) *model.AuthUser {
	sess := s.sessions.Read()
	if sess == nil {
		return nil
	}

	if user, err := s.provider.UserFromToken(ctx, sess.AccessToken); err == nil {
		// Token still valid: re-persist with the freshened user.
		s.write(model.PersistedSession{
			AccessToken:  sess.AccessToken,
			RefreshToken: sess.RefreshToken,
			User:         *user,
		})
		return user
	}

	if sess.RefreshToken == "" {
		s.clear()
		return nil
	}

	tokens, err := s.provider.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		s.clear()
		return nil
	}

	user, err := s.provider.UserFromToken(ctx, tokens.AccessToken)
	if err != nil {
		s.clear()
		return nil
	}

	refresh := tokens.RefreshToken
	if refresh == "" {
		refresh = sess.RefreshToken
	}
	s.write(model.PersistedSession{
		AccessToken:  tokens.AccessToken,
		RefreshToken: refresh,
		User:         *user,
	})
	return user
}

// AccessToken returns the persisted access token for authenticated API
// calls. It fails when no session is stored.
func (s *Service) AccessToken() (string, error) {
	sess := s.sessions.Read()
	if sess == nil || strings.TrimSpace(sess.AccessToken) == "" {
		return "", fmt.Errorf("not signed in")
	}
	return sess.AccessToken, nil
}

// CurrentUser returns the persisted user without touching the network,
// or nil when signed out.
func (s *Service) CurrentUser() *model.AuthUser {
	sess := s.sessions.Read()
	if sess == nil {
		return nil
	}
	user := sess.User
	return &user
}

// SignOut clears the persisted session.
func (s *Service) SignOut() error {
	return s.sessions.Clear()
}

func (s *Service) persist(res *AuthResult) {
	if res.Tokens == nil || res.Tokens.AccessToken == "" {
		return
	}
	s.write(model.PersistedSession{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		User:         res.User,
	})
}

func (s *Service) write(sess model.PersistedSession) {
	if err := s.sessions.Write(sess); err != nil {
		s.logger.Warn("persist session", "error", err)
	}
}

func (s *Service) clear() {
	if err := s.sessions.Clear(); err != nil {
		s.logger.Warn("clear session", "error", err)
	}
}
