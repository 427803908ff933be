// Package audit is the append-only trail of every mutating action. Entries
// are write-once: no update or delete path exists anywhere in the app.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is the closed enumeration of auditable actions. Passing a value
// outside this set is a programming error, not runtime input.
type ActionType string

const (
	ActionUserLogin        ActionType = "user_login"
	ActionUserRegister     ActionType = "user_register"
	ActionUserUpdate       ActionType = "user_update"
	ActionUserDelete       ActionType = "user_delete"
	ActionScheduleCreate   ActionType = "schedule_create"
	ActionScheduleUpdate   ActionType = "schedule_update"
	ActionScheduleDelete   ActionType = "schedule_delete"
	ActionTokenAdvance     ActionType = "token_advance"
	ActionTokenReset       ActionType = "token_reset"
	ActionInventoryCreate  ActionType = "inventory_create"
	ActionInventoryUpdate  ActionType = "inventory_update"
	ActionInventoryDelete  ActionType = "inventory_delete"
	ActionAlertTrigger     ActionType = "alert_trigger"
	ActionAlertDeactivate  ActionType = "alert_deactivate"
	ActionReportAccess     ActionType = "report_access"
	ActionIntegrationFetch ActionType = "integration_fetch"
	ActionIntegrationSync  ActionType = "integration_sync"
)

// Resource types referenced by entries.
const (
	ResourceUser        = "User"
	ResourceSchedule    = "Schedule"
	ResourceToken       = "Token"
	ResourceInventory   = "Inventory"
	ResourceAlert       = "Alert"
	ResourceReport      = "Report"
	ResourceIntegration = "Integration"
)

// Entry is one immutable audit record. Username is denormalized so the trail
// survives later deletion of the user.
type Entry struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Username     string     `json:"username"`
	ActionType   ActionType `json:"action_type"`
	Details      string     `json:"details"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	ResourceType *string    `json:"resource_type,omitempty"`
	IPAddress    *string    `json:"ip_address,omitempty"`
	UserAgent    *string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Query filters audit listings. Zero values mean "no filter".
type Query struct {
	UserID       *uuid.UUID
	ActionType   ActionType
	ResourceType string
	Start        *time.Time
	End          *time.Time
	Limit        int
	Offset       int
}

// DefaultQueryLimit bounds listings; it is also the maximum page size.
const DefaultQueryLimit = 100
