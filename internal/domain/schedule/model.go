// Package schedule is the operating-theatre and consultation ledger. Each
// booking gets a department-scoped patient token on creation; the token is
// assigned exactly once and never changes afterwards.
package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule types.
const (
	TypeOT           = "OT"
	TypeConsultation = "Consultation"
)

// Schedule statuses.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

func validType(t string) bool {
	return t == TypeOT || t == TypeConsultation
}

func validStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Schedule struct {
	ID            uuid.UUID `json:"id"`
	Department    string    `json:"department"`
	Type          string    `json:"type"`
	PatientToken  string    `json:"patientToken"`
	DoctorName    *string   `json:"doctorName,omitempty"`
	RoomNumber    *string   `json:"roomNumber,omitempty"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput is the booking request body. PatientToken is generated, never
// accepted from the client.
type CreateInput struct {
	Department    string     `json:"department"`
	Type          string     `json:"type"`
	DoctorName    *string    `json:"doctorName"`
	RoomNumber    *string    `json:"roomNumber"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Notes         *string    `json:"notes"`
}

// UpdateInput is a partial patch; nil fields are left unchanged. Department
// and patient token are immutable.
type UpdateInput struct {
	Type          *string    `json:"type"`
	DoctorName    *string    `json:"doctorName"`
	RoomNumber    *string    `json:"roomNumber"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Status        *string    `json:"status"`
	Notes         *string    `json:"notes"`
}
