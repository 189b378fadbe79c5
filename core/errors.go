package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Connect flow failures are distinct, user-actionable 400-class errors. None
// are retried automatically: state tokens and authorization codes are
// single-use, so the only recovery is restarting the Connect flow.
const (
	ConnectErrorBadInput            = "CONNECT_BAD_INPUT"
	ConnectErrorProviderDenied      = "CONNECT_PROVIDER_DENIED"
	ConnectErrorMalformedState      = "CONNECT_MALFORMED_STATE"
	ConnectErrorStateExpired        = "CONNECT_STATE_EXPIRED"
	ConnectErrorStateMismatch       = "CONNECT_STATE_MISMATCH"
	ConnectErrorTokenExchangeFailed = "CONNECT_TOKEN_EXCHANGE_FAILED"
	ConnectErrorCredentialsNotFound = "CONNECT_CREDENTIALS_NOT_FOUND"
	ConnectErrorMissingAccessToken  = "CONNECT_MISSING_ACCESS_TOKEN"
	ConnectErrorInternal            = "CONNECT_INTERNAL_ERROR"
)

func connectError(message string, category goerrors.Category, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(http.StatusBadRequest).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// ErrProviderDenied reports that the provider or the end user declined the
// authorization request, surfacing the provider's description when present.
func ErrProviderDenied(code, description string) error {
	message := strings.TrimSpace(description)
	if message == "" {
		message = strings.TrimSpace(code)
	}
	if message == "" {
		message = "authorization was denied by the provider"
	}
	return connectError(message, goerrors.CategoryAuth, ConnectErrorProviderDenied, nil)
}

func ErrMalformedState(source error) error {
	err := goerrors.Wrap(source, goerrors.CategoryBadInput, "callback state could not be decoded").
		WithCode(http.StatusBadRequest).
		WithTextCode(ConnectErrorMalformedState)
	return err
}

// ErrStateExpired covers both a lapsed TTL and a state that never existed;
// callers cannot distinguish the two and are told to retry the Connect flow.
func ErrStateExpired() error {
	return connectError(
		"state not found or expired, retry the Connect flow",
		goerrors.CategoryBadInput,
		ConnectErrorStateExpired,
		nil,
	)
}

// ErrStateMismatch covers a possible forgery or a stale popup completing
// after a newer authorization attempt replaced its state.
func ErrStateMismatch() error {
	return connectError(
		"state mismatch, retry the Connect flow and complete the most recent prompt",
		goerrors.CategoryAuth,
		ConnectErrorStateMismatch,
		nil,
	)
}

// ErrTokenExchangeFailed carries the provider's status and response body for
// diagnostics. Terminal for the current callback: codes are single-use and a
// retry with the same code would fail again.
func ErrTokenExchangeFailed(status int, body string) error {
	return connectError(
		"token exchange failed",
		goerrors.CategoryExternal,
		ConnectErrorTokenExchangeFailed,
		map[string]any{
			"status": status,
			"body":   strings.TrimSpace(body),
		},
	)
}

func ErrCredentialsNotFound() error {
	return connectError(
		"no credentials found, they may have been consumed or expired",
		goerrors.CategoryNotFound,
		ConnectErrorCredentialsNotFound,
		nil,
	)
}

func ErrMissingAccessToken() error {
	return connectError(
		"provider token response is missing an access token",
		goerrors.CategoryBadInput,
		ConnectErrorMissingAccessToken,
		nil,
	)
}

func ErrBadInput(message string) error {
	return connectError(message, goerrors.CategoryBadInput, ConnectErrorBadInput, nil)
}

type ErrorMapper func(err error) *goerrors.Error

func connectErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureConnectErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "access token"):
		return asConnectError(connectError(err.Error(), goerrors.CategoryBadInput, ConnectErrorMissingAccessToken, nil))
	case strings.Contains(msg, "state"):
		return asConnectError(connectError(err.Error(), goerrors.CategoryBadInput, ConnectErrorMalformedState, nil))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return asConnectError(connectError(err.Error(), goerrors.CategoryBadInput, ConnectErrorBadInput, nil))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureConnectErrorEnvelope(mapped)
}

func asConnectError(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.New(err.Error(), goerrors.CategoryInternal)
}

func ensureConnectErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = connectHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultConnectTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultConnectTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ConnectErrorBadInput
	case goerrors.CategoryNotFound:
		return ConnectErrorCredentialsNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ConnectErrorProviderDenied
	case goerrors.CategoryExternal:
		return ConnectErrorTokenExchangeFailed
	default:
		return ConnectErrorInternal
	}
}

func connectHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation,
		goerrors.CategoryNotFound, goerrors.CategoryAuth,
		goerrors.CategoryAuthz, goerrors.CategoryExternal:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
