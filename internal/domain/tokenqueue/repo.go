package tokenqueue

import "context"

// Repository persists queue positions and sequence counters. Every mutation
// must be a single atomic statement: concurrent advances on the same
// department must each observe a distinct value.
type Repository interface {
	// GetCurrent returns the department's queue state, creating it at zero
	// when it does not exist yet.
	GetCurrent(ctx context.Context, department string) (*QueueState, error)
	// Advance increments the department's current token by one and returns
	// the new state. The row is created at one when absent.
	Advance(ctx context.Context, department string) (*QueueState, error)
	// Reset sets the department's current token back to zero and stamps
	// lastResetAt.
	Reset(ctx context.Context, department string) (*QueueState, error)
	// NextSequence draws the next value from the department's token
	// sequence. The first draw for a department returns 1.
	NextSequence(ctx context.Context, department string) (int64, error)
}
