package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/service"
)

// CareHandler serves medications, emergency contacts and emergency checks.
type CareHandler struct {
	Medications *service.MedicationService
	Contacts    *service.ContactService
	Emergency   *service.EmergencyService
	log         *zap.Logger
}

func NewCareHandler(m *service.MedicationService, ct *service.ContactService, e *service.EmergencyService, log *zap.Logger) *CareHandler {
	return &CareHandler{Medications: m, Contacts: ct, Emergency: e, log: log}
}

func (h *CareHandler) AddMedication(c echo.Context) error {
	var req service.MedicationInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	m, err := h.Medications.Add(ctx, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CareHandler) ListMedications(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Medications.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"medications": list, "count": len(list)})
}

func (h *CareHandler) CheckInteractions(c echo.Context) error {
	var req service.InteractionInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Medications.CheckInteractions(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CareHandler) AddContact(c echo.Context) error {
	var req service.ContactInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	ct, err := h.Contacts.Add(ctx, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, ct)
}

func (h *CareHandler) ListContacts(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Contacts.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contacts": list, "count": len(list)})
}

// CheckEmergency answers 200 whether or not an emergency was detected.
func (h *CareHandler) CheckEmergency(c echo.Context) error {
	var req service.EmergencyInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Emergency.Check(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CareHandler) ListAlerts(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Emergency.ListAlerts(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"alerts": list, "count": len(list)})
}
