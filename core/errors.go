package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every error surfaced from this module. Callers
// branch on these rather than on message text.
const (
	AuthErrorStrategyConflict     = "AUTH_STRATEGY_CONFLICT"
	AuthErrorStrategyUnknown      = "AUTH_STRATEGY_UNKNOWN"
	AuthErrorOperationUnsupported = "AUTH_OPERATION_UNSUPPORTED"
	AuthErrorCallbackInvalid      = "AUTH_CALLBACK_INVALID"
	AuthErrorProviderDenied       = "AUTH_PROVIDER_DENIED"
	AuthErrorStateMismatch        = "AUTH_STATE_MISMATCH"
	AuthErrorCodeMissing          = "AUTH_CODE_MISSING"
	AuthErrorServerMissing        = "AUTH_SERVER_MISSING"
	AuthErrorTokenMissing         = "AUTH_TOKEN_MISSING"
	AuthErrorNotReady             = "AUTH_NOT_READY"
	AuthErrorTokenExchangeFailed  = "AUTH_TOKEN_EXCHANGE_FAILED"
	AuthErrorBadInput             = "AUTH_BAD_INPUT"
	AuthErrorInternal             = "AUTH_INTERNAL_ERROR"
)

func NewConflictError(tag string) error {
	return goerrors.New("core: strategy tag already registered with a different constructor: "+tag, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(AuthErrorStrategyConflict)
}

func NewUnknownStrategyError(tag string) error {
	return goerrors.New(fmt.Sprintf("core: no strategy registered for authorization type %q", tag), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(AuthErrorStrategyUnknown)
}

func NewUnsupportedOperationError(message string) error {
	return goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusNotImplemented).
		WithTextCode(AuthErrorOperationUnsupported)
}

func NewInvalidCallbackError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(AuthErrorCallbackInvalid)
}

func NewAuthorizationError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AuthErrorProviderDenied)
}

func NewStateMismatchError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AuthErrorStateMismatch)
}

func NewMissingCodeError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(AuthErrorCodeMissing)
}

func NewNoServerError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(AuthErrorServerMissing)
}

func NewNoAccessTokenError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AuthErrorTokenMissing)
}

func NewNotReadyError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AuthErrorNotReady)
}

func NewTokenExchangeError(err error, message string) error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryExternal).
			WithCode(http.StatusBadGateway).
			WithTextCode(AuthErrorTokenExchangeFailed)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(AuthErrorTokenExchangeFailed)
}

func NewInvalidInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(AuthErrorBadInput)
}

func newDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(AuthErrorInternal)
}

// ErrorTextCode extracts the module text code from err, or empty when err
// does not carry one.
func ErrorTextCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

func hasTextCode(err error, code string) bool {
	return ErrorTextCode(err) == code
}

func IsConflict(err error) bool             { return hasTextCode(err, AuthErrorStrategyConflict) }
func IsUnknownStrategy(err error) bool      { return hasTextCode(err, AuthErrorStrategyUnknown) }
func IsUnsupportedOperation(err error) bool { return hasTextCode(err, AuthErrorOperationUnsupported) }
func IsInvalidCallback(err error) bool      { return hasTextCode(err, AuthErrorCallbackInvalid) }
func IsAuthorizationDenied(err error) bool  { return hasTextCode(err, AuthErrorProviderDenied) }
func IsStateMismatch(err error) bool        { return hasTextCode(err, AuthErrorStateMismatch) }
func IsMissingCode(err error) bool          { return hasTextCode(err, AuthErrorCodeMissing) }
func IsNoServer(err error) bool             { return hasTextCode(err, AuthErrorServerMissing) }
func IsNoAccessToken(err error) bool        { return hasTextCode(err, AuthErrorTokenMissing) }
func IsNotReady(err error) bool             { return hasTextCode(err, AuthErrorNotReady) }
func IsTokenExchangeFailure(err error) bool { return hasTextCode(err, AuthErrorTokenExchangeFailed) }

// ErrorMapper normalizes arbitrary errors into the module envelope.
type ErrorMapper func(err error) *goerrors.Error

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureAuthErrorEnvelope(rich)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "no strategy registered"):
		return newAuthError(err.Error(), goerrors.CategoryNotFound, AuthErrorStrategyUnknown)
	case strings.Contains(msg, "state") && strings.Contains(msg, "mismatch"):
		return newAuthError(err.Error(), goerrors.CategoryAuth, AuthErrorStateMismatch)
	case strings.Contains(msg, "access token"):
		return newAuthError(err.Error(), goerrors.CategoryAuth, AuthErrorTokenMissing)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newAuthError(err.Error(), goerrors.CategoryBadInput, AuthErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAuthErrorEnvelope(mapped)
}

func newAuthError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAuthErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureAuthErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = authHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAuthTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAuthTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AuthErrorBadInput
	case goerrors.CategoryNotFound:
		return AuthErrorStrategyUnknown
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return AuthErrorProviderDenied
	case goerrors.CategoryConflict:
		return AuthErrorStrategyConflict
	case goerrors.CategoryOperation:
		return AuthErrorOperationUnsupported
	case goerrors.CategoryExternal:
		return AuthErrorTokenExchangeFailed
	default:
		return AuthErrorInternal
	}
}

func authHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return http.StatusUnauthorized
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusNotImplemented
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
