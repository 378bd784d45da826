package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// ConnectErrorInvalidRequest covers malformed or missing parameters,
	// unknown providers or methods, and empty secrets.
	ConnectErrorInvalidRequest = "CONNECT_INVALID_REQUEST"
	// ConnectErrorUnavailable covers missing capabilities on a method and
	// downstream I/O failures: file writes, provider exchanges, credential
	// store access.
	ConnectErrorUnavailable = "CONNECT_UNAVAILABLE"
	ConnectErrorInternal    = "CONNECT_INTERNAL_ERROR"
)

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
	case strings.Contains(msg, "not found"), strings.Contains(msg, "unknown provider"), strings.Contains(msg, "unknown method"):
		return newConnectError(err.Error(), goerrors.CategoryBadInput, ConnectErrorInvalidRequest)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "empty"):
		return newConnectError(err.Error(), goerrors.CategoryBadInput, ConnectErrorInvalidRequest)
	case strings.Contains(msg, "exchange"), strings.Contains(msg, "write"), strings.Contains(msg, "unavailable"):
		return newConnectError(err.Error(), goerrors.CategoryOperation, ConnectErrorUnavailable)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureConnectErrorEnvelope(mapped)
}

func newConnectError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureConnectErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func invalidRequestError(message string) error {
	return newConnectError(message, goerrors.CategoryBadInput, ConnectErrorInvalidRequest)
}

func unavailableError(message string) error {
	return newConnectError(message, goerrors.CategoryOperation, ConnectErrorUnavailable)
}

func wrapUnavailable(err error, message string) error {
	if err == nil {
		return nil
	}
	return ensureConnectErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryOperation, message).
			WithTextCode(ConnectErrorUnavailable),
	)
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
	case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryNotFound:
		return ConnectErrorInvalidRequest
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return ConnectErrorUnavailable
	default:
		return ConnectErrorInternal
	}
}

func connectHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryNotFound:
		return http.StatusBadRequest
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
