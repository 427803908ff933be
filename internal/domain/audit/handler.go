package audit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/auditlogs", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.List)
	admin.GET("/:id", h.GetByID)
}

func (h *Handler) List(c echo.Context) error {
	q := Query{
		ActionType:   ActionType(c.QueryParam("actionType")),
		ResourceType: c.QueryParam("resourceType"),
	}

	if raw := c.QueryParam("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Validation("invalid userId filter")
		}
		q.UserID = &id
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperr.Validation("invalid startDate, want RFC 3339")
		}
		q.Start = &t
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperr.Validation("invalid endDate, want RFC 3339")
		}
		q.End = &t
	}
	page := pagination.FromContext(c)
	q.Limit = page.Limit
	q.Offset = page.Offset
	if c.QueryParam("limit") == "" {
		q.Limit = DefaultQueryLimit
	}

	entries, err := h.svc.Query(c.Request().Context(), q)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	entry, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}
