package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// statusOf maps an error to the status carried in the envelope and the HTTP status of the response.
// Domain failures and failed logins keep HTTP 200; missing or invalid tokens use a real 401.
func statusOf(err error) (envelope, httpStatus int, msg string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized, http.StatusOK, service.Message(err)
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, http.StatusUnauthorized, service.Message(err)
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, http.StatusOK, service.Message(err)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, http.StatusOK, service.Message(err)
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, http.StatusOK, service.Message(err)
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, he.Code, msg
	default:
		return http.StatusInternalServerError, http.StatusInternalServerError, "internal server error"
	}
}

// ErrorHandler renders every error returned by a handler or middleware as an ApiResponse.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	envelope, httpStatus, msg := statusOf(err)
	if envelope >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpStatus)
		return
	}
	_ = c.JSON(httpStatus, transport.Fail(envelope, msg))
}

// fail logs a failed handler call at a level matching the error kind and passes err on.
func fail(l *slog.Logger, event string, err error) error {
	envelope, _, msg := statusOf(err)
	if envelope >= http.StatusInternalServerError {
		l.Error(event, "status", envelope, "error", err)
	} else {
		l.Warn(event, "status", envelope, "reason", msg)
	}
	return err
}

func ok[T any](c echo.Context, data T) error {
	return c.JSON(http.StatusOK, transport.OK(data))
}

func created[T any](c echo.Context, data T) error {
	return c.JSON(http.StatusOK, transport.Created(data))
}
