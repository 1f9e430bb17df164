package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/middleware"
	"github.com/iliyamo/healthsync/internal/repository"
	"github.com/iliyamo/healthsync/internal/service"
)

// dbTimeout bounds handlers that only touch the database.  AI-backed
// handlers rely on the per-call LLM timeout instead.
const dbTimeout = 5 * time.Second

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// statusFor maps service and repository errors to a status and a message
// safe to show the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict, "email already exists"
	case errors.Is(err, repository.ErrHabitExists):
		return http.StatusConflict, "habits already logged for this date"
	case errors.Is(err, repository.ErrInsufficientTokens):
		return http.StatusConflict, "insufficient tokens"
	}
	return http.StatusInternalServerError, "internal error"
}

func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrInvalidInput.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// fail writes the JSON error for err.  Server-side failures are logged with
// the route; client errors are not.
func fail(c echo.Context, log *zap.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// bindOwned binds the request body into v and reconciles its user_id with
// the token subject.  An omitted user_id is filled in; a different one is
// rejected with 403.  It returns false when a response was already written.
func bindOwned(c echo.Context, v any, userID *string) (bool, error) {
	if err := c.Bind(v); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid := middleware.UserID(c)
	if uid == "" {
		return false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if *userID == "" {
		*userID = uid
	}
	if *userID != uid {
		return false, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return true, nil
}
