package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

type PaperworkHandler struct {
	Paperwork *service.PaperworkService
	log       *zap.Logger
}

func NewPaperworkHandler(s *service.PaperworkService, log *zap.Logger) *PaperworkHandler {
	return &PaperworkHandler{Paperwork: s, log: log}
}

func (h *PaperworkHandler) Generate(c echo.Context) error {
	var req service.PaperworkInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Paperwork.Generate(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *PaperworkHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Paperwork.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": list, "count": len(list)})
}
