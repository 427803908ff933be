package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// Recorder appends audit entries. Record returns its error so that every
// caller discards it visibly (`_ = recorder.Record(...)`): an audit failure
// must never abort the operation it documents.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Service persists entries and serves admin queries.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record fills in request metadata from the context and appends the entry.
// Failures are reported on the operational log channel and returned; callers
// deliberately drop the error.
func (s *Service) Record(ctx context.Context, e Entry) error {
	meta := MetaFromContext(ctx)
	if e.IPAddress == nil && meta.IPAddress != "" {
		e.IPAddress = &meta.IPAddress
	}
	if e.UserAgent == nil && meta.UserAgent != "" {
		e.UserAgent = &meta.UserAgent
	}

	if err := s.repo.Insert(ctx, &e); err != nil {
		s.logger.Error().Err(err).
			Str("action_type", string(e.ActionType)).
			Str("username", e.Username).
			Msg("failed to write audit entry")
		return err
	}
	return nil
}

// Query lists entries for the admin trail view, newest first, capped at
// DefaultQueryLimit.
func (s *Service) Query(ctx context.Context, q Query) ([]*Entry, error) {
	return s.repo.List(ctx, q)
}

// GetByID returns a single entry.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// Actor builds the attribution fields of an entry from the acting identity.
func Actor(identity *auth.Identity) (userID *uuid.UUID, username string) {
	if identity == nil {
		return nil, "System"
	}
	id := identity.ID
	return &id, identity.Username
}

// Ref builds resource reference fields.
func Ref(resourceType string, id uuid.UUID) (*uuid.UUID, *string) {
	rid := id
	rt := resourceType
	return &rid, &rt
}
