package alert

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	alerts := api.Group("/alerts")
	alerts.GET("/active", h.ListActive)
	alerts.GET("/all", h.ListAll, auth.RequireRole(auth.RoleAdmin))
	alerts.POST("/trigger", h.Trigger, auth.RequireRole(auth.RoleAdmin))
	alerts.PUT("/:id/deactivate", h.Deactivate, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Trigger(c echo.Context) error {
	var in TriggerInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.Trigger(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Deactivate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	a, err := h.svc.Deactivate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListActive(c echo.Context) error {
	alerts, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) ListAll(c echo.Context) error {
	alerts, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}
