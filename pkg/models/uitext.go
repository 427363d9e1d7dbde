package models

// UiText is a message that is either a literal string or a reference to a
// localized message key with format arguments. Rendering is deferred to a
// Localizer so state never depends on the output language.
type UiText struct {
	Literal string
	Key     string
	Args    []any
}

// Text returns a literal UiText.
func Text(s string) UiText {
	return UiText{Literal: s}
}

// Resource returns a UiText referring to a localized message key.
func Resource(key string, args ...any) UiText {
	return UiText{Key: key, Args: args}
}

// IsResource reports whether t refers to a message key.
func (t UiText) IsResource() bool {
	return t.Key != ""
}

// IsZero reports whether t carries no text at all.
func (t UiText) IsZero() bool {
	return t.Key == "" && t.Literal == ""
}

// ErrorMessage pairs the localized description of an error code with the
// raw detail returned by the adapter, which may be empty.
type ErrorMessage struct {
	Text   UiText
	Detail string
}

// MessageAlert is the alert shown by a state module. At most one of Error
// and Success is set.
type MessageAlert struct {
	Error   *ErrorMessage
	Success *UiText
}

// ErrorAlert builds an alert for a failure.
func ErrorAlert(text UiText, detail string) *MessageAlert {
	return &MessageAlert{Error: &ErrorMessage{Text: text, Detail: detail}}
}

// SuccessAlert builds an alert for a success.
func SuccessAlert(text UiText) *MessageAlert {
	return &MessageAlert{Success: &text}
}
