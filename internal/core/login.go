package core

import (
	"context"
	"strings"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// LoginState is the observable state of the login flow.
type LoginState struct {
	Loading bool
	Alert   *models.MessageAlert
	// User is the email of an existing session, filled by CheckSession.
	User string
}

// LoginAction is an input to Login.OnAction.
type LoginAction interface {
	loginAction()
}

// SubmitLogin logs in with the given credentials.
type SubmitLogin struct {
	Email    string
	Password string
}

// SubmitSignUp registers a new account.
type SubmitSignUp struct {
	Email    string
	Password string
}

// CheckSession reports an existing session in User. It never navigates.
type CheckSession struct{}

func (SubmitLogin) loginAction()  {}
func (SubmitSignUp) loginAction() {}
func (CheckSession) loginAction() {}
func (DismissAlert) loginAction() {}

// Login drives the authentication adapter through login and sign-up.
type Login struct {
	*screen[LoginState]
	auth UserAuthentication
}

// NewLogin creates a Login. It does not look at any existing session.
// logger may be nil.
func NewLogin(auth UserAuthentication, logger EventLogger) *Login {
	return &Login{
		screen: newScreen(LoginState{}, logger),
		auth:   auth,
	}
}

// OnAction applies action.
func (m *Login) OnAction(action LoginAction) {
	switch a := action.(type) {
	case SubmitLogin:
		m.login(a.Email, a.Password)
	case SubmitSignUp:
		m.signUp(a.Email, a.Password)
	case CheckSession:
		m.checkSession()
	case DismissAlert:
		m.update(func(s LoginState) LoginState {
			s.Alert = nil
			return s
		})
	}
}

// ValidateCredentials returns the message for the first blank field.
func ValidateCredentials(email, password string) (models.UiText, bool) {
	switch {
	case strings.TrimSpace(email) == "":
		return models.Resource(MsgEmailRequired), false
	case strings.TrimSpace(password) == "":
		return models.Resource(MsgPasswordRequired), false
	}
	return models.UiText{}, true
}

// begin validates the credentials and marks the module loading. It
// reports whether the adapter should be called.
func (m *Login) begin(email, password string) bool {
	var ok bool
	m.update(func(s LoginState) LoginState {
		if s.Loading {
			return s
		}
		if msg, valid := ValidateCredentials(email, password); !valid {
			s.Alert = models.ErrorAlert(msg, "")
			return s
		}
		ok = true
		s.Loading = true
		return s
	})
	return ok
}

func (m *Login) login(email, password string) {
	if !m.begin(email, password) {
		return
	}
	email = strings.TrimSpace(email)

	m.launch(func(ctx context.Context) {
		err := m.auth.Login(ctx, email, password)
		m.update(func(s LoginState) LoginState {
			s.Loading = false
			if err != nil {
				s.Alert = errorAlert(err)
			} else {
				s.Alert = nil
				s.User = email
			}
			return s
		})
		if err != nil {
			m.logEvent("auth.failed", failureData("login", err))
			return
		}
		m.logEvent("auth.login", map[string]any{"user": email})
		m.emit(models.Navigate{Route: models.TaskListRoute{}})
	})
}

func (m *Login) signUp(email, password string) {
	if !m.begin(email, password) {
		return
	}
	email = strings.TrimSpace(email)

	m.launch(func(ctx context.Context) {
		err := m.auth.SignUp(ctx, email, password)
		m.update(func(s LoginState) LoginState {
			s.Loading = false
			if err != nil {
				s.Alert = errorAlert(err)
			} else {
				s.Alert = models.SuccessAlert(models.Resource(MsgSignedUp))
			}
			return s
		})
		if err != nil {
			m.logEvent("auth.failed", failureData("signup", err))
			return
		}
		m.logEvent("auth.signup", map[string]any{"user": email})
	})
}

func (m *Login) checkSession() {
	m.launch(func(ctx context.Context) {
		res := models.ResultOf(m.auth.UserLogged(ctx))
		m.update(func(s LoginState) LoginState {
			email, err := res.Get()
			if err != nil {
				s.Alert = errorAlert(err)
				return s
			}
			s.User = email
			return s
		})
	})
}
