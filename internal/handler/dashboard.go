package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
	log       *zap.Logger
}

func NewDashboardHandler(s *service.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: s, log: log}
}

func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	d, err := h.Dashboard.Get(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, d)
}
