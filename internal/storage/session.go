package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/skillpulse/pkg/models"
	"gopkg.in/yaml.v3"
)

// SessionStore persists the current login in session.yaml.
type SessionStore interface {
	// Load returns the saved session, or nil when nobody is logged in.
	Load() (*models.Session, error)
	Save(session models.Session) error
	// Clear removes the saved session. Clearing an absent session is not an error.
	Clear() error
}

type fileSessionStore struct {
	basePath string
}

// NewSessionStore creates a SessionStore backed by session.yaml in basePath.
func NewSessionStore(basePath string) SessionStore {
	return &fileSessionStore{basePath: basePath}
}

func (s *fileSessionStore) filePath() string {
	return filepath.Join(s.basePath, "session.yaml")
}

func (s *fileSessionStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var session models.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("corrupt session file (delete %s to log in again): %w", s.filePath(), err)
	}
	return &session, nil
}

func (s *fileSessionStore) Save(session models.Session) error {
	if err := os.MkdirAll(s.basePath, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}
	if err := writeFileAtomic(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving session file: %w", err)
	}
	return nil
}

func (s *fileSessionStore) Clear() error {
	if err := os.Remove(s.filePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
