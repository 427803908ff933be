package inventory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/websocket"
)

type mockRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Item
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]*Item{}}
}

func (m *mockRepo) Create(_ context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.DrugName == item.DrugName {
			return apperr.Conflict("drug %q already tracked", item.DrugName)
		}
	}
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	item.IsLowStock = item.LowStock()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("inventory item not found")
	}
	cp := *it
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return apperr.NotFound("inventory item not found")
	}
	for id, existing := range m.items {
		if id != item.ID && existing.DrugName == item.DrugName {
			return apperr.Conflict("drug %q already tracked", item.DrugName)
		}
	}
	item.UpdatedAt = time.Now()
	item.IsLowStock = item.LowStock()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("inventory item not found")
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Item
	for _, it := range m.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepo) ListLowStock(_ context.Context) ([]*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Item
	for _, it := range m.items {
		if it.LowStock() {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

type publisherSpy struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *publisherSpy) Publish(_ context.Context, e websocket.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *publisherSpy) byName(name string) []websocket.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []websocket.Event
	for _, e := range p.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type recorderSpy struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recorderSpy) Record(_ context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *recorderSpy) last() *audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return &r.entries[len(r.entries)-1]
}

func newTestService() (*Service, *publisherSpy, *recorderSpy) {
	pub := &publisherSpy{}
	rec := &recorderSpy{}
	return NewService(newMockRepo(), rec, pub), pub, rec
}

func intp(v int) *int { return &v }

func TestCreate_BroadcastsAndAudits(t *testing.T) {
	svc, pub, rec := newTestService()

	item, err := svc.Create(context.Background(), CreateInput{
		DrugName: "Paracetamol", CurrentStock: intp(100), ReorderThreshold: intp(20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.IsLowStock {
		t.Fatal("100 > 20 must not be low stock")
	}
	if events := pub.byName(websocket.EventInventoryUpdate); len(events) != 1 || events[0].Action != "create" {
		t.Fatalf("unexpected inventoryUpdate events: %+v", events)
	}
	if events := pub.byName(websocket.EventLowStockAlert); len(events) != 0 {
		t.Fatal("unexpected lowStockAlert for healthy stock")
	}
	if a := rec.last(); a == nil || a.ActionType != audit.ActionInventoryCreate {
		t.Fatalf("expected inventory_create audit entry, got %+v", a)
	}
}

func TestCreate_LowStockAtBoundaryEmitsAlert(t *testing.T) {
	svc, pub, _ := newTestService()

	item, err := svc.Create(context.Background(), CreateInput{
		DrugName: "Insulin", CurrentStock: intp(20), ReorderThreshold: intp(20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !item.IsLowStock {
		t.Fatal("stock == threshold must count as low")
	}
	if events := pub.byName(websocket.EventLowStockAlert); len(events) != 1 {
		t.Fatalf("expected one lowStockAlert, got %d", len(events))
	}
}

func TestCreate_DuplicateDrugNameConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	in := CreateInput{DrugName: "Aspirin", CurrentStock: intp(10), ReorderThreshold: intp(5)}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), in)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Case differs, so this is a distinct drug.
	in.DrugName = "aspirin"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("case-distinct create: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []CreateInput{
		{CurrentStock: intp(1), ReorderThreshold: intp(1)},
		{DrugName: "X", ReorderThreshold: intp(1)},
		{DrugName: "X", CurrentStock: intp(1)},
		{DrugName: "X", CurrentStock: intp(-1), ReorderThreshold: intp(1)},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdate_RecomputesLowStockAndAuditsMovement(t *testing.T) {
	svc, pub, rec := newTestService()
	item, err := svc.Create(context.Background(), CreateInput{
		DrugName: "Morphine", CurrentStock: intp(50), ReorderThreshold: intp(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), item.ID, UpdateInput{CurrentStock: intp(5)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsLowStock {
		t.Fatal("5 <= 10 must be low stock")
	}
	if events := pub.byName(websocket.EventLowStockAlert); len(events) != 1 {
		t.Fatalf("expected lowStockAlert after drop, got %d", len(events))
	}

	a := rec.last()
	if a == nil || a.ActionType != audit.ActionInventoryUpdate {
		t.Fatalf("expected inventory_update audit entry, got %+v", a)
	}
	if !strings.Contains(a.Details, "50 -> 5") {
		t.Fatalf("audit detail %q lacks stock movement", a.Details)
	}
}

func TestUpdate_RenameOntoExistingConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Create(context.Background(), CreateInput{
		DrugName: "DrugA", CurrentStock: intp(1), ReorderThreshold: intp(1),
	}); err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := svc.Create(context.Background(), CreateInput{
		DrugName: "DrugB", CurrentStock: intp(1), ReorderThreshold: intp(1),
	})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	name := "DrugA"
	_, err = svc.Update(context.Background(), b.ID, UpdateInput{DrugName: &name})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{CurrentStock: intp(1)})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_BroadcastsAndAudits(t *testing.T) {
	svc, pub, rec := newTestService()
	item, err := svc.Create(context.Background(), CreateInput{
		DrugName: "Saline", CurrentStock: intp(30), ReorderThreshold: intp(5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), item.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatal("item still present after delete")
	}

	events := pub.byName(websocket.EventInventoryUpdate)
	if len(events) == 0 || events[len(events)-1].Action != "delete" {
		t.Fatalf("expected delete broadcast, got %+v", events)
	}
	if a := rec.last(); a == nil || a.ActionType != audit.ActionInventoryDelete {
		t.Fatalf("expected inventory_delete audit entry, got %+v", a)
	}
}

func TestListLowStock_QueryTimePredicate(t *testing.T) {
	svc, _, _ := newTestService()
	seed := []struct {
		name      string
		stock     int
		threshold int
	}{
		{"Low1", 3, 10},
		{"Edge", 10, 10},
		{"Healthy", 11, 10},
	}
	for _, s := range seed {
		if _, err := svc.Create(context.Background(), CreateInput{
			DrugName: s.name, CurrentStock: intp(s.stock), ReorderThreshold: intp(s.threshold),
		}); err != nil {
			t.Fatalf("create %s: %v", s.name, err)
		}
	}

	low, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("len = %d, want 2 (boundary inclusive)", len(low))
	}
	for _, it := range low {
		if it.DrugName == "Healthy" {
			t.Fatal("healthy item reported as low stock")
		}
	}
}

func TestListLowStock_RestockRemovesItem(t *testing.T) {
	svc, _, _ := newTestService()
	item, err := svc.Create(context.Background(), CreateInput{
		DrugName: "Paracetamol", CurrentStock: intp(5), ReorderThreshold: intp(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	low, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected item in low-stock list, got %d entries", len(low))
	}

	if _, err := svc.Update(context.Background(), item.ID, UpdateInput{CurrentStock: intp(20)}); err != nil {
		t.Fatalf("restock: %v", err)
	}
	low, err = svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("restocked item still reported low, got %d entries", len(low))
	}
}
