package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

type AssistantHandler struct {
	Assistant *service.AssistantService
	log       *zap.Logger
}

func NewAssistantHandler(s *service.AssistantService, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{Assistant: s, log: log}
}

func (h *AssistantHandler) Chat(c echo.Context) error {
	var req service.ChatInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Assistant.Chat(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
