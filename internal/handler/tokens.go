package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

type TokenHandler struct {
	Tokens *service.TokenService
	log    *zap.Logger
}

func NewTokenHandler(s *service.TokenService, log *zap.Logger) *TokenHandler {
	return &TokenHandler{Tokens: s, log: log}
}

func (h *TokenHandler) Summary(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	sum, err := h.Tokens.Summary(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// Redeem spends tokens; 409 when the balance is too low.
func (h *TokenHandler) Redeem(c echo.Context) error {
	var req service.RedeemInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.Tokens.Redeem(ctx, c.Param("user"), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
