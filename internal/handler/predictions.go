package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

type PredictionHandler struct {
	Predictions *service.PredictionService
	log         *zap.Logger
}

func NewPredictionHandler(s *service.PredictionService, log *zap.Logger) *PredictionHandler {
	return &PredictionHandler{Predictions: s, log: log}
}

type predictionReq struct {
	UserID         string `json:"user_id"`
	TimePeriodDays int    `json:"time_period_days"`
}

func (h *PredictionHandler) Analyze(c echo.Context) error {
	var req predictionReq
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Predictions.Analyze(c.Request().Context(), req.UserID, req.TimePeriodDays)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *PredictionHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Predictions.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"predictions": list, "count": len(list)})
}
