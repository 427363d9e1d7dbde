// Package integration holds the authentication adapters: local accounts
// hashed with bcrypt and a remote OAuth2 password-grant provider.
package integration

import (
	"context"
	"errors"
	"strings"
	"syscall"
	"time"

	"github.com/valter-silva-au/skillpulse/internal/storage"
	"github.com/valter-silva-au/skillpulse/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// LocalAuthenticator authenticates against accounts registered in the
// local user store and keeps the login in the session store.
type LocalAuthenticator struct {
	users    storage.UserStore
	sessions storage.SessionStore
	cost     int
	now      func() time.Time
}

// NewLocalAuthenticator creates a LocalAuthenticator.
func NewLocalAuthenticator(users storage.UserStore, sessions storage.SessionStore) *LocalAuthenticator {
	return &LocalAuthenticator{
		users:    users,
		sessions: sessions,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Login checks the password against the stored hash and saves a session.
// Unknown emails and wrong passwords fail the same way.
func (a *LocalAuthenticator) Login(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return models.WrapDataError(models.CodeAuthLogin, err)
	}

	user, err := a.users.Get(email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.NewDataError(models.CodeAuthLogin, "invalid email or password")
		}
		return models.WrapDataError(models.CodeAuthPlatformUnavailable, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.NewDataError(models.CodeAuthLogin, "invalid email or password")
	}

	session := models.Session{
		Email:     user.Email,
		Provider:  string(models.ProviderLocal),
		CreatedAt: a.now().UTC(),
	}
	if err := a.sessions.Save(session); err != nil {
		return models.WrapDataError(diskCode(err, models.CodeAuthLogin), err)
	}
	return nil
}

// Logout removes the saved session.
func (a *LocalAuthenticator) Logout(context.Context) error {
	if err := a.sessions.Clear(); err != nil {
		return models.WrapDataError(models.CodeAuthLogout, err)
	}
	return nil
}

// SignUp registers a new account. It does not log the user in.
func (a *LocalAuthenticator) SignUp(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return models.WrapDataError(models.CodeAuthSignUp, err)
	}

	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return models.NewDataError(models.CodeAuthSignUp, "email address is badly formatted")
	}
	if len(password) < MinPasswordLength {
		return models.NewDataError(models.CodeAuthSignUp, "password should be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.WrapDataError(models.CodeAuthSignUp, err)
	}
	err = a.users.Add(models.UserRecord{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    a.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return models.NewDataError(models.CodeAuthSignUp, "email address is already in use")
		}
		return models.WrapDataError(diskCode(err, models.CodeAuthSignUp), err)
	}
	return nil
}

// UserLogged returns the email of the saved local session, or "" when
// there is none. Sessions written by another provider are ignored.
func (a *LocalAuthenticator) UserLogged(context.Context) (string, error) {
	session, err := a.sessions.Load()
	if err != nil {
		return "", models.WrapDataError(models.CodeAuthUserLogged, err)
	}
	if session == nil || session.Provider != string(models.ProviderLocal) {
		return "", nil
	}
	return session.Email, nil
}

// diskCode reports a full disk with its own code.
func diskCode(err error, fallback models.ErrorCode) models.ErrorCode {
	if errors.Is(err, syscall.ENOSPC) {
		return models.CodeDiskFull
	}
	return fallback
}
