package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"

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

func (s *Service) Trigger(ctx context.Context, in TriggerInput) (*Alert, error) {
	if in.Type == "" || in.Message == "" {
		return nil, apperr.Validation("type and message are required")
	}
	if !validType(in.Type) {
		return nil, apperr.Validation("type must be %q, %q or %q",
			TypeCodeBlue, TypeCodeRed, TypeEmergency)
	}

	actor := auth.IdentityFromContext(ctx)
	if actor == nil {
		return nil, apperr.Authentication("not authorized")
	}

	a := &Alert{Type: in.Type, Message: in.Message, TriggeredBy: actor.ID}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventEmergencyAlert,
		Action: "trigger",
		Data: map[string]interface{}{
			"id":      a.ID,
			"type":    a.Type,
			"message": a.Message,
			"active":  a.Active,
		},
	})

	actorID, actorName := audit.Actor(actor)
	resID, resType := audit.Ref(audit.ResourceAlert, a.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionAlertTrigger,
		Details:      fmt.Sprintf("Triggered %s: %s", a.Type, a.Message),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return a, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventEmergencyAlert,
		Action: "deactivate",
		Data: map[string]interface{}{
			"id":     a.ID,
			"type":   a.Type,
			"active": a.Active,
		},
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceAlert, a.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionAlertDeactivate,
		Details:      fmt.Sprintf("Deactivated %s alert", a.Type),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return a, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*Alert, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]*Alert, error) {
	return s.repo.ListAll(ctx)
}
