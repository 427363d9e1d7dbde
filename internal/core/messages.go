package core

import (
	"fmt"

	"github.com/valter-silva-au/skillpulse/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys rendered by Localizer.
const (
	MsgTaskAdded           = "task.added"
	MsgTaskUpdated         = "task.updated"
	MsgTaskDeleted         = "task.deleted"
	MsgSignedUp            = "auth.signed_up"
	MsgDescriptionRequired = "validation.description_required"
	MsgStartTimeRequired   = "validation.start_time_required"
	MsgEndTimeRequired     = "validation.end_time_required"
	MsgEmailRequired       = "validation.email_required"
	MsgPasswordRequired    = "validation.password_required"
)

var englishMessages = map[string]string{
	MsgTaskAdded:           "Task added",
	MsgTaskUpdated:         "Task updated",
	MsgTaskDeleted:         "Task deleted",
	MsgSignedUp:            "Account created, you can log in now",
	MsgDescriptionRequired: "Description cannot be empty",
	MsgStartTimeRequired:   "Start time cannot be empty",
	MsgEndTimeRequired:     "End time cannot be empty",
	MsgEmailRequired:       "Email cannot be empty",
	MsgPasswordRequired:    "Password cannot be empty",

	errorKey(models.CodeAuthLogin):               "Login failed",
	errorKey(models.CodeAuthLogout):              "Logout failed",
	errorKey(models.CodeAuthSignUp):              "Sign-up failed",
	errorKey(models.CodeAuthUserLogged):          "Could not read the current session",
	errorKey(models.CodeAuthPlatformUnavailable): "Authentication services are unavailable",
	errorKey(models.CodeDiskFull):                "Disk is full",
	errorKey(models.CodeUserIsNull):              "No user is logged in",
	errorKey(models.CodeValidation):              "Invalid input",
	errorKey(models.CodeRemoteStore):             "Storage operation failed",
	errorKey(models.CodeUnauthorized):            "Unauthorized",
	errorKey(models.CodeForbidden):               "Forbidden",
	errorKey(models.CodeInternalServerError):     "Internal server error",
	errorKey(models.CodeNotImplemented):          "Not implemented",
	errorKey(models.CodeBadGateway):              "Bad gateway",
	errorKey(models.CodeServiceUnavailable):      "Service unavailable",
	errorKey(models.CodeGatewayTimeout):          "Gateway timeout",
	errorKey(models.CodeNoInternet):              "No internet connection",
	errorKey(models.CodeServerError):             "Server error",
	errorKey(models.CodeSerialization):           "Could not read the server response",
	errorKey(models.CodeUnknown):                 "Unknown error",
}

var portugueseMessages = map[string]string{
	MsgTaskAdded:           "Tarefa adicionada",
	MsgTaskUpdated:         "Tarefa atualizada",
	MsgTaskDeleted:         "Tarefa excluída",
	MsgSignedUp:            "Conta criada, faça login para continuar",
	MsgDescriptionRequired: "A descrição não pode ficar vazia",
	MsgStartTimeRequired:   "O horário de início não pode ficar vazio",
	MsgEndTimeRequired:     "O horário de término não pode ficar vazio",
	MsgEmailRequired:       "O e-mail não pode ficar vazio",
	MsgPasswordRequired:    "A senha não pode ficar vazia",

	errorKey(models.CodeAuthLogin):               "Falha no login",
	errorKey(models.CodeAuthLogout):              "Falha ao sair",
	errorKey(models.CodeAuthSignUp):              "Falha no cadastro",
	errorKey(models.CodeAuthUserLogged):          "Não foi possível ler a sessão atual",
	errorKey(models.CodeAuthPlatformUnavailable): "Serviços de autenticação indisponíveis",
	errorKey(models.CodeDiskFull):                "Disco cheio",
	errorKey(models.CodeUserIsNull):              "Nenhum usuário conectado",
	errorKey(models.CodeValidation):              "Dados inválidos",
	errorKey(models.CodeRemoteStore):             "Falha na operação de armazenamento",
	errorKey(models.CodeUnauthorized):            "Não autorizado",
	errorKey(models.CodeForbidden):               "Acesso proibido",
	errorKey(models.CodeInternalServerError):     "Erro interno do servidor",
	errorKey(models.CodeNotImplemented):          "Não implementado",
	errorKey(models.CodeBadGateway):              "Gateway inválido",
	errorKey(models.CodeServiceUnavailable):      "Serviço indisponível",
	errorKey(models.CodeGatewayTimeout):          "Tempo limite do gateway esgotado",
	errorKey(models.CodeNoInternet):              "Sem conexão com a internet",
	errorKey(models.CodeServerError):             "Erro no servidor",
	errorKey(models.CodeSerialization):           "Não foi possível ler a resposta do servidor",
	errorKey(models.CodeUnknown):                 "Erro desconhecido",
}

// SupportedLocales lists the locales with a message catalog.
var SupportedLocales = []language.Tag{language.English, language.BrazilianPortuguese}

var messageCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range englishMessages {
		_ = b.SetString(language.English, key, text)
	}
	for key, text := range portugueseMessages {
		_ = b.SetString(language.BrazilianPortuguese, key, text)
	}
	return b
}

func errorKey(code models.ErrorCode) string {
	return "error." + string(code)
}

// ErrorText returns the localized description of an error code.
func ErrorText(code models.ErrorCode) models.UiText {
	return models.Resource(errorKey(code))
}

// errorAlert turns an adapter error into an alert carrying the code's
// description and the adapter's own message.
func errorAlert(err error) *models.MessageAlert {
	return models.ErrorAlert(ErrorText(models.CodeOf(err)), models.MessageOf(err))
}

// Localizer renders UiText in one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer returns a Localizer for the supported locale closest to
// locale. An unparsable locale is an error.
func NewLocalizer(locale string) (*Localizer, error) {
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	_, idx, _ := language.NewMatcher(SupportedLocales).Match(requested)
	tag := SupportedLocales[idx]
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messageCatalog)),
	}, nil
}

// Tag returns the language the Localizer renders.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Text renders t.
func (l *Localizer) Text(t models.UiText) string {
	if !t.IsResource() {
		return t.Literal
	}
	return l.printer.Sprintf(t.Key, t.Args...)
}

// Alert renders an alert as a single line, or "" for a nil alert.
func (l *Localizer) Alert(a *models.MessageAlert) string {
	switch {
	case a == nil:
		return ""
	case a.Error != nil:
		text := l.Text(a.Error.Text)
		if a.Error.Detail != "" {
			return text + ": " + a.Error.Detail
		}
		return text
	case a.Success != nil:
		return l.Text(*a.Success)
	}
	return ""
}
