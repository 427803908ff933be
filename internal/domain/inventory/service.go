package inventory

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

func (s *Service) Create(ctx context.Context, in CreateInput) (*Item, error) {
	if in.DrugName == "" || in.CurrentStock == nil || in.ReorderThreshold == nil {
		return nil, apperr.Validation("drugName, currentStock and reorderThreshold are required")
	}
	if *in.CurrentStock < 0 || *in.ReorderThreshold < 0 {
		return nil, apperr.Validation("stock and threshold must not be negative")
	}

	item := &Item{
		DrugName:         in.DrugName,
		CurrentStock:     *in.CurrentStock,
		ReorderThreshold: *in.ReorderThreshold,
		Location:         in.Location,
		Notes:            in.Notes,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventInventoryUpdate,
		Action: "create",
		Data:   itemEventData(item),
	})
	if item.IsLowStock {
		s.publishLowStock(ctx, item)
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceInventory, item.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Username:   actorName,
		ActionType: audit.ActionInventoryCreate,
		Details: fmt.Sprintf("Added drug %s (stock %d, threshold %d)",
			item.DrugName, item.CurrentStock, item.ReorderThreshold),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return item, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*Item, error) {
	return s.repo.ListLowStock(ctx)
}

// Update applies a partial patch and re-evaluates the low-stock predicate on
// the result. The audit detail records the stock movement.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStock := item.CurrentStock
	oldThreshold := item.ReorderThreshold

	if in.DrugName != nil && *in.DrugName != "" {
		item.DrugName = *in.DrugName
	}
	if in.CurrentStock != nil {
		if *in.CurrentStock < 0 {
			return nil, apperr.Validation("stock must not be negative")
		}
		item.CurrentStock = *in.CurrentStock
	}
	if in.ReorderThreshold != nil {
		if *in.ReorderThreshold < 0 {
			return nil, apperr.Validation("threshold must not be negative")
		}
		item.ReorderThreshold = *in.ReorderThreshold
	}
	if in.Location != nil {
		item.Location = in.Location
	}
	if in.Notes != nil {
		item.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventInventoryUpdate,
		Action: "update",
		Data:   itemEventData(item),
	})
	if item.IsLowStock {
		s.publishLowStock(ctx, item)
	}

	detail := fmt.Sprintf("Updated drug %s; stock %d -> %d",
		item.DrugName, oldStock, item.CurrentStock)
	if item.ReorderThreshold != oldThreshold {
		detail += fmt.Sprintf("; threshold %d -> %d", oldThreshold, item.ReorderThreshold)
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceInventory, item.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionInventoryUpdate,
		Details:      detail,
		ResourceID:   resID,
		ResourceType: resType,
	})

	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventInventoryUpdate,
		Action: "delete",
		Data:   itemEventData(item),
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceInventory, id)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionInventoryDelete,
		Details:      fmt.Sprintf("Removed drug %s", item.DrugName),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return nil
}

func (s *Service) publishLowStock(ctx context.Context, item *Item) {
	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventLowStockAlert,
		Action: "alert",
		Data:   itemEventData(item),
	})
}

func itemEventData(item *Item) map[string]interface{} {
	return map[string]interface{}{
		"id":               item.ID,
		"drugName":         item.DrugName,
		"currentStock":     item.CurrentStock,
		"reorderThreshold": item.ReorderThreshold,
		"isLowStock":       item.IsLowStock,
	}
}
