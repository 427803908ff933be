package integration

import (
	"net/http"

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
	integ := api.Group("/integrations")
	integ.POST("/ehr/sync-patient", h.SyncPatient, auth.RequireRole(auth.RoleAdmin))
	integ.GET("/lab/results/:patientId", h.FetchLabResults,
		auth.RequireRole(auth.RoleOTStaff, auth.RoleGeneralStaff))
}

func (h *Handler) SyncPatient(c echo.Context) error {
	var in SyncInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	res, err := h.svc.SyncPatient(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) FetchLabResults(c echo.Context) error {
	report, err := h.svc.FetchLabResults(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
