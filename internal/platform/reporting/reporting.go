// Package reporting exposes read-only SQL aggregations over the operational
// tables. Every report access lands in the audit trail.
package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// Report wraps an aggregation result with its generation metadata.
type Report struct {
	Name        string                   `json:"name"`
	GeneratedAt time.Time                `json:"generated_at"`
	StartDate   time.Time                `json:"start_date"`
	EndDate     time.Time                `json:"end_date"`
	Results     []map[string]interface{} `json:"results"`
}

type Handler struct {
	pool  *pgxpool.Pool
	audit audit.Recorder
}

func NewHandler(pool *pgxpool.Pool, recorder audit.Recorder) *Handler {
	return &Handler{pool: pool, audit: recorder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	reports := api.Group("/reports")
	reports.GET("/schedules-summary", h.SchedulesSummary,
		auth.RequireRole(auth.RoleGeneralStaff, auth.RoleOTStaff))
	reports.GET("/inventory-overview", h.InventoryOverview,
		auth.RequireRole(auth.RolePharmacyStaff, auth.RoleGeneralStaff))
	reports.GET("/alert-metrics", h.AlertMetrics,
		auth.RequireRole(auth.RoleGeneralStaff))
	reports.GET("/audit-summary", h.AuditSummary,
		auth.RequireRole(auth.RoleAdmin))
}

const schedulesSummarySQL = `
	SELECT department,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'Scheduled')   AS scheduled,
		COUNT(*) FILTER (WHERE status = 'In Progress') AS in_progress,
		COUNT(*) FILTER (WHERE status = 'Completed')   AS completed,
		COUNT(*) FILTER (WHERE status = 'Cancelled')   AS cancelled
	FROM schedules
	WHERE scheduled_time BETWEEN $1 AND $2
	GROUP BY department
	ORDER BY department`

func (h *Handler) SchedulesSummary(c echo.Context) error {
	return h.run(c, "schedules-summary", schedulesSummarySQL, true)
}

const inventoryOverviewSQL = `
	SELECT drug_name,
		current_stock,
		reorder_threshold,
		current_stock <= reorder_threshold AS is_low_stock,
		location
	FROM inventory_items
	ORDER BY drug_name`

func (h *Handler) InventoryOverview(c echo.Context) error {
	return h.run(c, "inventory-overview", inventoryOverviewSQL, false)
}

const alertMetricsSQL = `
	SELECT type,
		COUNT(*) AS triggered,
		COUNT(*) FILTER (WHERE active) AS active_now,
		ROUND(AVG(EXTRACT(EPOCH FROM deactivated_at - triggered_at) / 60.0)
			FILTER (WHERE deactivated_at IS NOT NULL)::numeric, 2) AS avg_active_minutes,
		MAX(triggered_at) AS latest_trigger
	FROM alerts
	WHERE triggered_at BETWEEN $1 AND $2
	GROUP BY type
	ORDER BY type`

func (h *Handler) AlertMetrics(c echo.Context) error {
	return h.run(c, "alert-metrics", alertMetricsSQL, true)
}

const auditSummarySQL = `
	SELECT action_type,
		COUNT(*) AS total,
		COUNT(DISTINCT user_id) AS distinct_actors
	FROM audit_logs
	WHERE created_at BETWEEN $1 AND $2
	GROUP BY action_type
	ORDER BY total DESC`

func (h *Handler) AuditSummary(c echo.Context) error {
	return h.run(c, "audit-summary", auditSummarySQL, true)
}

func (h *Handler) run(c echo.Context, name, sql string, dated bool) error {
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var results []map[string]interface{}
	if dated {
		results, err = h.execute(ctx, sql, start, end)
	} else {
		results, err = h.execute(ctx, sql)
	}
	if err != nil {
		return apperr.Unavailable(fmt.Errorf("report %s: %w", name, err))
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	rt := audit.ResourceReport
	_ = h.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionReportAccess,
		Details:      fmt.Sprintf("Accessed report %s", name),
		ResourceType: &rt,
	})

	return c.JSON(http.StatusOK, Report{
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		StartDate:   start,
		EndDate:     end,
		Results:     results,
	})
}

// dateRange parses optional startDate/endDate query params, defaulting to
// epoch..now.
func dateRange(c echo.Context) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).UTC()
	end := time.Now().UTC()

	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, apperr.Validation("startDate must be RFC3339")
		}
		start = t
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, apperr.Validation("endDate must be RFC3339")
		}
		end = t
	}
	if end.Before(start) {
		return start, end, apperr.Validation("endDate must not be before startDate")
	}
	return start, end, nil
}

// execute runs a query and flattens the rows into name/value maps.
func (h *Handler) execute(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	results := []map[string]interface{}{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
