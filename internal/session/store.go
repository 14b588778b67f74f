package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/collegiate-app/collegiate/internal/model"
)

const sessionFileName = "collegiate.auth.session.json"

// Store persists the auth session as a single JSON blob under a fixed
// filename in an app-private directory.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir. If dir is empty, the session
// lives under the user config directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "collegiate")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, sessionFileName)}, nil
}

// Write serializes the session and overwrites any prior value.
func (s *Store) Write(sess model.PersistedSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Read returns the persisted session, or nil when nothing is stored or the
// stored blob cannot be parsed. A corrupt blob reads as signed out.
func (s *Store) Read() *model.PersistedSession {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var sess model.PersistedSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil
	}
	if sess.AccessToken == "" {
		return nil
	}
	return &sess
}

// Clear removes the persisted session. Removing a session that does not
// exist is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
