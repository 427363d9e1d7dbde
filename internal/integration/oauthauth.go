package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/valter-silva-au/skillpulse/internal/storage"
	"github.com/valter-silva-au/skillpulse/pkg/models"
	"golang.org/x/oauth2"
)

// OAuthAuthenticator logs in against a remote identity provider with the
// OAuth2 resource owner password grant and keeps the issued token in the
// session store.
type OAuthAuthenticator struct {
	config   *oauth2.Config
	sessions storage.SessionStore
	now      func() time.Time
}

// NewOAuthAuthenticator creates an OAuthAuthenticator for the provider in cfg.
func NewOAuthAuthenticator(cfg models.OAuth2Config, sessions storage.SessionStore) *OAuthAuthenticator {
	return &OAuthAuthenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		sessions: sessions,
		now:      time.Now,
	}
}

// Login exchanges the credentials for a token and saves it.
func (a *OAuthAuthenticator) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	tok, err := a.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return tokenError(models.CodeAuthLogin, err)
	}
	if err := a.sessions.Save(a.sessionFor(email, tok)); err != nil {
		return models.WrapDataError(diskCode(err, models.CodeAuthLogin), err)
	}
	return nil
}

// Logout forgets the saved token. The provider is not contacted.
func (a *OAuthAuthenticator) Logout(context.Context) error {
	if err := a.sessions.Clear(); err != nil {
		return models.WrapDataError(models.CodeAuthLogout, err)
	}
	return nil
}

// SignUp always fails: accounts are managed by the provider.
func (a *OAuthAuthenticator) SignUp(context.Context, string, string) error {
	return models.NewDataError(models.CodeAuthSignUp, "sign-up is managed by the identity provider")
}

// UserLogged returns the email of the saved session while its token is
// valid. An expired token is refreshed when possible; a refresh the
// provider rejects ends the session.
func (a *OAuthAuthenticator) UserLogged(ctx context.Context) (string, error) {
	session, err := a.sessions.Load()
	if err != nil {
		return "", models.WrapDataError(models.CodeAuthUserLogged, err)
	}
	if session == nil || session.Provider != string(models.ProviderOAuth2) {
		return "", nil
	}

	tok := &oauth2.Token{
		AccessToken:  session.AccessToken,
		TokenType:    session.TokenType,
		RefreshToken: session.RefreshToken,
		Expiry:       session.Expiry,
	}
	if tok.Valid() {
		return session.Email, nil
	}
	if tok.RefreshToken == "" {
		return "", nil
	}

	fresh, err := a.config.TokenSource(ctx, tok).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			if clearErr := a.sessions.Clear(); clearErr != nil {
				return "", models.WrapDataError(models.CodeAuthUserLogged, clearErr)
			}
			return "", nil
		}
		return "", tokenError(models.CodeAuthUserLogged, err)
	}

	if err := a.sessions.Save(a.sessionFor(session.Email, fresh)); err != nil {
		return "", models.WrapDataError(diskCode(err, models.CodeAuthUserLogged), err)
	}
	return session.Email, nil
}

func (a *OAuthAuthenticator) sessionFor(email string, tok *oauth2.Token) models.Session {
	return models.Session{
		Email:        email,
		Provider:     string(models.ProviderOAuth2),
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		CreatedAt:    a.now().UTC(),
	}
}

// tokenError maps a token endpoint failure to a DataError with the given
// code. A provider response keeps its HTTP status as a network code in
// the chain; anything else means the provider could not be reached.
func tokenError(code models.ErrorCode, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return models.WrapDataError(models.CodeAuthPlatformUnavailable, err)
	}

	msg := re.ErrorDescription
	if msg == "" {
		msg = re.ErrorCode
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	if msg == "" {
		msg = "token request failed"
	}
	return &models.DataError{
		Code:    code,
		Message: msg,
		Err:     &models.DataError{Code: models.NetworkCodeFromStatus(status), Message: msg, Err: err},
	}
}
