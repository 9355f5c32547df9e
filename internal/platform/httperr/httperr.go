// Package httperr defines the JSON error contract shared by every handler:
// bodies are {"error": string, "message"?: string, "errors"?: [string]}.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Sentinel errors services return to signal the HTTP outcome.
var (
	ErrNotFound = errors.New("not found")
	// ErrConflict marks business-rule precondition failures (e.g. resending
	// an invitation to an already active account). Mapped to 400.
	ErrConflict = errors.New("conflict")
)

// Response is the wire shape of every error body.
type Response struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidationError carries the list of human-readable field messages for a
// 400 response.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	return e.Messages[0]
}

// Validation builds a ValidationError from messages.
func Validation(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Handler returns an echo HTTPErrorHandler that converts every error into
// the structured body. Unexpected errors surface as 500 with the underlying
// error text echoed in message.
func Handler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := Response{Error: "Internal server error", Message: err.Error()}

		var ve *ValidationError
		var he *echo.HTTPError

		switch {
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			body = Response{Error: "Validation failed", Errors: ve.Messages}
		case errors.Is(err, ErrNotFound):
			code = http.StatusNotFound
			body = Response{Error: "Not found"}
		case errors.Is(err, ErrConflict):
			code = http.StatusBadRequest
			body = Response{Error: "Bad request", Message: err.Error()}
		case errors.As(err, &he):
			code = he.Code
			body = Response{Error: messageOf(he)}
			if code == http.StatusInternalServerError {
				body = Response{Error: "Internal server error", Message: messageOf(he)}
			}
		}

		if code == http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func messageOf(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	return http.StatusText(he.Code)
}
