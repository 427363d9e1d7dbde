package models

import (
	"errors"
	"net/http"
)

// ErrorCode is a closed set of typed failure codes grouped by origin.
type ErrorCode string

// Authentication errors.
const (
	CodeAuthLogin               ErrorCode = "auth.login"
	CodeAuthLogout              ErrorCode = "auth.logout"
	CodeAuthSignUp              ErrorCode = "auth.sign_up"
	CodeAuthUserLogged          ErrorCode = "auth.user_logged"
	CodeAuthPlatformUnavailable ErrorCode = "auth.platform_unavailable"
)

// Local errors.
const (
	CodeDiskFull   ErrorCode = "local.disk_full"
	CodeUserIsNull ErrorCode = "local.user_is_null"
	CodeValidation ErrorCode = "local.validation"
)

// CodeRemoteStore covers every load/add/update/delete failure of the
// document store.
const CodeRemoteStore ErrorCode = "remote.store"

// Network errors.
const (
	CodeUnauthorized        ErrorCode = "network.unauthorized"
	CodeForbidden           ErrorCode = "network.forbidden"
	CodeInternalServerError ErrorCode = "network.internal_server_error"
	CodeNotImplemented      ErrorCode = "network.not_implemented"
	CodeBadGateway          ErrorCode = "network.bad_gateway"
	CodeServiceUnavailable  ErrorCode = "network.service_unavailable"
	CodeGatewayTimeout      ErrorCode = "network.gateway_timeout"
	CodeNoInternet          ErrorCode = "network.no_internet"
	CodeServerError         ErrorCode = "network.server_error"
	CodeSerialization       ErrorCode = "network.serialization"
	CodeUnknown             ErrorCode = "network.unknown"
)

// AllErrorCodes lists every code in the taxonomy.
var AllErrorCodes = []ErrorCode{
	CodeAuthLogin, CodeAuthLogout, CodeAuthSignUp, CodeAuthUserLogged, CodeAuthPlatformUnavailable,
	CodeDiskFull, CodeUserIsNull, CodeValidation,
	CodeRemoteStore,
	CodeUnauthorized, CodeForbidden, CodeInternalServerError, CodeNotImplemented,
	CodeBadGateway, CodeServiceUnavailable, CodeGatewayTimeout, CodeNoInternet,
	CodeServerError, CodeSerialization, CodeUnknown,
}

// DataError is the error type returned by every adapter for expected
// failures. Message is optional human-readable detail.
type DataError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewDataError creates a DataError with the given code and message.
func NewDataError(code ErrorCode, message string) *DataError {
	return &DataError{Code: code, Message: message}
}

// WrapDataError creates a DataError that carries err as its cause. The
// cause's text becomes the message.
func WrapDataError(code ErrorCode, err error) *DataError {
	de := &DataError{Code: code, Err: err}
	if err != nil {
		de.Message = err.Error()
	}
	return de
}

func (e *DataError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first DataError in err's chain, or
// CodeUnknown when there is none.
func CodeOf(err error) ErrorCode {
	var de *DataError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}

// MessageOf returns the human-readable message of the first DataError in
// err's chain, or err's own text when it is not a DataError.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var de *DataError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// NetworkCodeFromStatus maps an HTTP status to a network error code.
func NetworkCodeFromStatus(status int) ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusInternalServerError:
		return CodeInternalServerError
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusBadGateway:
		return CodeBadGateway
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return CodeGatewayTimeout
	default:
		return CodeUnknown
	}
}
