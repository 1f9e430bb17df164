package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id, or "" when the request
// carries no valid token.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok {
		return s
	}
	return ""
}

// bucketID is UserID with a placeholder for anonymous callers, used in
// Redis keys.
func bucketID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}

// RequireSelf rejects requests whose path parameter names a user other than
// the authenticated one.  Routes that carry the user in the body check it
// in the handler instead.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if c.Param(param) != uid {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
