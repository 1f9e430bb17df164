package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HabitHandler struct {
	Habits *service.HabitService
	log    *zap.Logger
}

func NewHabitHandler(s *service.HabitService, log *zap.Logger) *HabitHandler {
	return &HabitHandler{Habits: s, log: log}
}

// Log records today's (or an explicit past day's) habits.  409 when the
// day is already logged.
func (h *HabitHandler) Log(c echo.Context) error {
	var req service.HabitInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	rec, err := h.Habits.Log(ctx, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *HabitHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Habits.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"habits": list, "count": len(list)})
}

func (h *HabitHandler) Analytics(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	a, err := h.Habits.Analytics(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Export streams the habit history as an xlsx attachment.
func (h *HabitHandler) Export(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	userID := c.Param("user")
	data, err := h.Habits.Export(ctx, userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="habits-%s.xlsx"`, userID))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}
