// Package tokenqueue manages per-department patient queues: the "now
// serving" token number each waiting room displays, plus the sequence
// counters that schedule creation draws patient tokens from.
package tokenqueue

import (
	"time"
)

// QueueState is the current position of a department's walk-in queue.
// CurrentToken only ever moves forward between resets.
type QueueState struct {
	Department   string     `json:"department"`
	CurrentToken int64      `json:"currentToken"`
	LastResetAt  *time.Time `json:"lastResetAt,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
