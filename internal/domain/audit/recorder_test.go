package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	entries []*Entry
	failing bool
}

func (m *mockRepo) Insert(_ context.Context, e *Entry) error {
	if m.failing {
		return errors.New("connection refused")
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("audit entry not found")
}

func (m *mockRepo) List(_ context.Context, q Query) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if q.ActionType != "" && e.ActionType != q.ActionType {
			continue
		}
		if q.UserID != nil && (e.UserID == nil || *e.UserID != *q.UserID) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func TestRecord_FillsMetaFromContext(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	ctx := WithMeta(context.Background(), Meta{
		IPAddress: "10.0.0.9",
		UserAgent: "ward-terminal/1.0",
	})
	if err := svc.Record(ctx, Entry{
		Username:   "nurse1",
		ActionType: ActionTokenAdvance,
		Details:    "Advanced er queue to token 4",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	e := repo.entries[0]
	if e.IPAddress == nil || *e.IPAddress != "10.0.0.9" {
		t.Fatalf("ip = %v", e.IPAddress)
	}
	if e.UserAgent == nil || *e.UserAgent != "ward-terminal/1.0" {
		t.Fatalf("user agent = %v", e.UserAgent)
	}
}

func TestRecord_ExplicitMetaWins(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	ip := "192.168.1.1"
	ctx := WithMeta(context.Background(), Meta{IPAddress: "10.0.0.9"})
	if err := svc.Record(ctx, Entry{
		Username:   "nurse1",
		ActionType: ActionUserLogin,
		IPAddress:  &ip,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if *repo.entries[0].IPAddress != "192.168.1.1" {
		t.Fatalf("ip = %s", *repo.entries[0].IPAddress)
	}
}

func TestRecord_ReturnsRepoError(t *testing.T) {
	svc := NewService(&mockRepo{failing: true}, zerolog.Nop())
	err := svc.Record(context.Background(), Entry{
		Username:   "nurse1",
		ActionType: ActionUserLogin,
	})
	if err == nil {
		t.Fatal("expected error from failing repo")
	}
}

func TestActor(t *testing.T) {
	id, name := Actor(nil)
	if id != nil || name != "System" {
		t.Fatalf("nil identity: got (%v, %q)", id, name)
	}

	who := &auth.Identity{ID: uuid.New(), Username: "admin", Role: auth.RoleAdmin}
	id, name = Actor(who)
	if id == nil || *id != who.ID || name != "admin" {
		t.Fatalf("identity: got (%v, %q)", id, name)
	}
}

func TestRef(t *testing.T) {
	target := uuid.New()
	id, rt := Ref(ResourceSchedule, target)
	if id == nil || *id != target {
		t.Fatalf("resource id = %v", id)
	}
	if rt == nil || *rt != ResourceSchedule {
		t.Fatalf("resource type = %v", rt)
	}
}

func TestQuery_Filters(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	actor := uuid.New()
	for _, at := range []ActionType{ActionUserLogin, ActionTokenAdvance, ActionUserLogin} {
		if err := svc.Record(context.Background(), Entry{
			UserID: &actor, Username: "admin", ActionType: at,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	out, err := svc.Query(context.Background(), Query{ActionType: ActionUserLogin})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}
