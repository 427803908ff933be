package tokenqueue

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	tokens := api.Group("/tokens")
	tokens.GET("/:department", h.GetCurrent)
	tokens.PUT("/:department/advance", h.Advance,
		auth.RequireRole(auth.RoleOTStaff, auth.RolePharmacyStaff))
	tokens.PUT("/:department/reset", h.Reset,
		auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) GetCurrent(c echo.Context) error {
	state, err := h.svc.GetCurrent(c.Request().Context(), c.Param("department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

func (h *Handler) Advance(c echo.Context) error {
	state, err := h.svc.Advance(c.Request().Context(), c.Param("department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

func (h *Handler) Reset(c echo.Context) error {
	state, err := h.svc.Reset(c.Request().Context(), c.Param("department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}
