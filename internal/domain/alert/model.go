// Package alert broadcasts hospital-wide emergency alerts and keeps their
// activation history.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	TypeCodeBlue  = "Code Blue"
	TypeCodeRed   = "Code Red"
	TypeEmergency = "Emergency"
)

func validType(t string) bool {
	return t == TypeCodeBlue || t == TypeCodeRed || t == TypeEmergency
}

type Alert struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	Message       string     `json:"message"`
	Active        bool       `json:"active"`
	TriggeredBy   uuid.UUID  `json:"triggeredBy"`
	TriggeredAt   time.Time  `json:"triggeredAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

type TriggerInput struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
