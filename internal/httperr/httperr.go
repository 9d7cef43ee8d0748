// Package httperr defines the domain error taxonomy and the single
// boundary translator that maps error kinds onto HTTP responses.
// Handlers and middleware raise a *httperr.Error at the point of
// detection and return it up the chain; the Echo error handler installed
// by Handler turns it into a status code plus a {"success":false,
// "message":...} body.  Anything that is not a *httperr.Error is treated
// as unexpected: it is logged with full detail server-side and surfaced
// to the client as a generic internal error.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a domain failure.
type Kind int

const (
	KindBadRequest      Kind = iota // malformed input, e.g. a non-numeric id
	KindUnauthorized                // credential missing or absent
	KindForbidden                   // credential present but invalid or insufficient
	KindNotFound                    // missing resource
	KindConflict                    // duplicate email
	KindTooManyRequests             // rate limit exceeded
	KindInternal                    // unexpected failure
)

// Error carries a kind, a client-safe message and an optional wrapped
// cause used only for server-side logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// TooManyRequests signals a client that exceeded the rate limit.  The
// limiter sets the Retry-After header before returning it.
func TooManyRequests(msg string) *Error { return &Error{Kind: KindTooManyRequests, Message: msg} }

// Internal wraps an unexpected error.  The cause is logged by the boundary
// translator; the client only ever sees the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// response is the uniform error body returned to clients.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler is the Echo HTTPErrorHandler.  Install it once on the root Echo
// instance: e.HTTPErrorHandler = httperr.Handler.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindInternal {
			c.Logger().Errorf("internal error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}
		writeJSON(c, appErr.Status(), appErr.Message)
		return
	}

	// Echo's own errors (404 route not found, 405, body too large...).
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg := http.StatusText(echoErr.Code)
		if s, ok := echoErr.Message.(string); ok {
			msg = s
		}
		writeJSON(c, echoErr.Code, msg)
		return
	}

	// Unexpected and unclassified: log the detail, mask the client message.
	c.Logger().Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	writeJSON(c, http.StatusInternalServerError, "internal server error")
}

func writeJSON(c echo.Context, status int, msg string) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, response{Success: false, Message: msg})
}
