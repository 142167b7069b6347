// Package apperror defines the typed error every route handler raises and
// the centralized Echo error handler that converts any raised error into
// the uniform JSON envelope {error, code, timestamp, path}.
package apperror

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// APIError carries an HTTP status code and a machine-readable code alongside
// the human-readable message.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// New builds an APIError.
func New(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, Code: code, Message: message}
}

// WithDetails attaches structured detail (e.g. field validation failures).
func (e *APIError) WithDetails(details any) *APIError {
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Message: e.Message, Details: details}
}

// envelope is the JSON body returned for every error response.
type envelope struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	Details   any    `json:"details,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

// HTTPErrorHandler returns the centralized Echo error handler. It maps
// typed APIErrors, Echo's own HTTPErrors, SQLite constraint violations and
// JWT verification failures onto the envelope; anything else becomes a 500.
// The stack trace is included only outside production mode.
func HTTPErrorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resolved := resolve(err)

		body := envelope{
			Error:     resolved.Message,
			Code:      resolved.Code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request().URL.Path,
			Details:   resolved.Details,
		}
		if env != "prod" && resolved.StatusCode >= http.StatusInternalServerError {
			body.Stack = string(debug.Stack())
		}
		if resolved.StatusCode >= http.StatusInternalServerError {
			c.Logger().Error(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(resolved.StatusCode)
			return
		}
		_ = c.JSON(resolved.StatusCode, body)
	}
}

func resolve(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		}
		code := "HTTP_ERROR"
		switch httpErr.Code {
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusRequestEntityTooLarge:
			code = "FILE_TOO_LARGE"
			msg = "File too large"
		}
		return New(httpErr.Code, code, msg)
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return New(http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrSignatureInvalid) {
		return New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	}

	// SQLite surfaces constraint violations as plain error strings.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") {
		return New(http.StatusConflict, "DUPLICATE_ENTRY", "Duplicate entry found")
	}
	if strings.Contains(msg, "foreign key constraint failed") {
		return New(http.StatusBadRequest, "FOREIGN_KEY_ERROR", "Referenced record not found")
	}

	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error")
}
