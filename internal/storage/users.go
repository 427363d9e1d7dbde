package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/valter-silva-au/skillpulse/pkg/models"
	"gopkg.in/yaml.v3"
)

// UserStore holds locally registered accounts keyed by lower-cased email.
type UserStore interface {
	Get(email string) (*models.UserRecord, error)
	Add(user models.UserRecord) error
}

type userFile struct {
	Version string                       `yaml:"version"`
	Users   map[string]models.UserRecord `yaml:"users"`
}

type fileUserStore struct {
	basePath string
	mu       sync.Mutex
}

// NewUserStore creates a UserStore backed by users.yaml in basePath.
func NewUserStore(basePath string) UserStore {
	return &fileUserStore{basePath: basePath}
}

func (s *fileUserStore) filePath() string {
	return filepath.Join(s.basePath, "users.yaml")
}

func userKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *fileUserStore) Get(email string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	user, ok := f.Users[userKey(email)]
	if !ok {
		return nil, fmt.Errorf("user %s %w", email, ErrNotFound)
	}
	return &user, nil
}

func (s *fileUserStore) Add(user models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0o700); err != nil {
		return fmt.Errorf("creating users directory: %w", err)
	}
	unlock, err := lockFile(s.filePath() + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	f, err := s.load()
	if err != nil {
		return err
	}
	key := userKey(user.Email)
	if _, exists := f.Users[key]; exists {
		return fmt.Errorf("user %s %w", user.Email, ErrDuplicate)
	}
	f.Users[key] = user

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling users: %w", err)
	}
	if err := writeFileAtomic(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}

func (s *fileUserStore) load() (*userFile, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &userFile{Version: "1.0", Users: make(map[string]models.UserRecord)}, nil
		}
		return nil, fmt.Errorf("loading users: %w", err)
	}

	var f userFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("loading users: parsing YAML: %w", err)
	}
	if f.Users == nil {
		f.Users = make(map[string]models.UserRecord)
	}
	return &f, nil
}
