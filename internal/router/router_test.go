package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/healthsync/internal/handler"
	"github.com/iliyamo/healthsync/internal/utils"
)

func newEcho() *echo.Echo {
	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, &handler.AuthHandler{})
	RegisterAPI(e, Handlers{
		Auth:        &handler.AuthHandler{},
		Habits:      &handler.HabitHandler{},
		Records:     &handler.RecordHandler{},
		Tokens:      &handler.TokenHandler{},
		Paperwork:   &handler.PaperworkHandler{},
		Predictions: &handler.PredictionHandler{},
		Care:        &handler.CareHandler{},
		Assistant:   &handler.AssistantHandler{},
		Dashboard:   &handler.DashboardHandler{},
	}, Guards{JWTSecret: "secret"})
	return e
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newEcho().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEcho()
	for _, path := range []string{"/v1/me", "/v1/dashboard/u1", "/v1/habits/u1", "/v1/alerts/u1"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestUserRoutesRejectOtherUsers(t *testing.T) {
	e := newEcho()
	tok, err := utils.NewAccessToken("secret", "u2", "bo@example.com", 5)
	require.NoError(t, err)

	for _, path := range []string{"/v1/users/u1", "/v1/dashboard/u1", "/v1/tokens/u1", "/v1/habits/u1/export"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u2","email":"bo@example.com"}`, rec.Body.String())
}
