package tokenqueue

import (
	"context"
	"fmt"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/websocket"
)

type Service struct {
	repo   Repository
	audit  audit.Recorder
	events websocket.EventPublisher
}

func NewService(repo Repository, recorder audit.Recorder, events websocket.EventPublisher) *Service {
	return &Service{repo: repo, audit: recorder, events: events}
}

// NextSequence exposes the sequence counter for patient token generation.
func (s *Service) NextSequence(ctx context.Context, department string) (int64, error) {
	if department == "" {
		return 0, apperr.Validation("department is required")
	}
	return s.repo.NextSequence(ctx, department)
}

func (s *Service) GetCurrent(ctx context.Context, department string) (*QueueState, error) {
	if department == "" {
		return nil, apperr.Validation("department is required")
	}
	return s.repo.GetCurrent(ctx, department)
}

func (s *Service) Advance(ctx context.Context, department string) (*QueueState, error) {
	if department == "" {
		return nil, apperr.Validation("department is required")
	}
	state, err := s.repo.Advance(ctx, department)
	if err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventTokenUpdate,
		Action: "advance",
		Data: map[string]interface{}{
			"department":   state.Department,
			"currentToken": state.CurrentToken,
		},
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	rt := audit.ResourceToken
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionTokenAdvance,
		Details:      fmt.Sprintf("Advanced %s queue to token %d", state.Department, state.CurrentToken),
		ResourceType: &rt,
	})

	return state, nil
}

func (s *Service) Reset(ctx context.Context, department string) (*QueueState, error) {
	if department == "" {
		return nil, apperr.Validation("department is required")
	}
	state, err := s.repo.Reset(ctx, department)
	if err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventTokenUpdate,
		Action: "reset",
		Data: map[string]interface{}{
			"department":   state.Department,
			"currentToken": state.CurrentToken,
		},
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	rt := audit.ResourceToken
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionTokenReset,
		Details:      fmt.Sprintf("Reset %s queue to 0", state.Department),
		ResourceType: &rt,
	})

	return state, nil
}
