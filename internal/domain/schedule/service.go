package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/websocket"
)

// Sequencer draws the next value from a department's token sequence.
// Satisfied by the tokenqueue service.
type Sequencer interface {
	NextSequence(ctx context.Context, department string) (int64, error)
}

type Service struct {
	repo   Repository
	seq    Sequencer
	audit  audit.Recorder
	events websocket.EventPublisher
}

func NewService(repo Repository, seq Sequencer, recorder audit.Recorder, events websocket.EventPublisher) *Service {
	return &Service{repo: repo, seq: seq, audit: recorder, events: events}
}

// PatientToken builds a department-scoped token, e.g. "PHA-00000001" for the
// first pharmacy draw.
func PatientToken(department string, seq int64) string {
	prefix := strings.ToUpper(department)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%08d", prefix, seq)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Schedule, error) {
	if in.Department == "" || in.Type == "" || in.ScheduledTime == nil {
		return nil, apperr.Validation("department, type and scheduledTime are required")
	}
	if !validType(in.Type) {
		return nil, apperr.Validation("type must be %q or %q", TypeOT, TypeConsultation)
	}

	seq, err := s.seq.NextSequence(ctx, in.Department)
	if err != nil {
		return nil, err
	}

	sched := &Schedule{
		Department:    in.Department,
		Type:          in.Type,
		PatientToken:  PatientToken(in.Department, seq),
		DoctorName:    in.DoctorName,
		RoomNumber:    in.RoomNumber,
		ScheduledTime: *in.ScheduledTime,
		Status:        StatusScheduled,
		Notes:         in.Notes,
	}
	if err := s.repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventScheduleUpdate,
		Action: "create",
		Data: map[string]interface{}{
			"id":           sched.ID,
			"department":   sched.Department,
			"type":         sched.Type,
			"patientToken": sched.PatientToken,
		},
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceSchedule, sched.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Username:   actorName,
		ActionType: audit.ActionScheduleCreate,
		Details: fmt.Sprintf("Created %s schedule in %s, patient token %s",
			sched.Type, sched.Department, sched.PatientToken),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return sched, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDepartment(ctx context.Context, department string) ([]*Schedule, error) {
	return s.repo.List(ctx, department)
}

func (s *Service) ListByPatientToken(ctx context.Context, token string) ([]*Schedule, error) {
	if token == "" {
		return nil, apperr.Validation("patient token is required")
	}
	out, err := s.repo.ListByPatientToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("no schedules for patient token %s", token)
	}
	return out, nil
}

// Update applies a partial patch. The audit detail records status and time
// transitions so the trail shows what moved.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Schedule, error) {
	sched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := sched.Status
	oldTime := sched.ScheduledTime

	if in.Type != nil {
		if !validType(*in.Type) {
			return nil, apperr.Validation("type must be %q or %q", TypeOT, TypeConsultation)
		}
		sched.Type = *in.Type
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, apperr.Validation("unknown status: %s", *in.Status)
		}
		sched.Status = *in.Status
	}
	if in.DoctorName != nil {
		sched.DoctorName = in.DoctorName
	}
	if in.RoomNumber != nil {
		sched.RoomNumber = in.RoomNumber
	}
	if in.ScheduledTime != nil {
		sched.ScheduledTime = *in.ScheduledTime
	}
	if in.Notes != nil {
		sched.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventScheduleUpdate,
		Action: "update",
		Data: map[string]interface{}{
			"id":           sched.ID,
			"department":   sched.Department,
			"patientToken": sched.PatientToken,
			"status":       sched.Status,
		},
	})

	detail := fmt.Sprintf("Updated schedule %s (%s)", sched.PatientToken, sched.Department)
	if sched.Status != oldStatus {
		detail += fmt.Sprintf("; status %s -> %s", oldStatus, sched.Status)
	}
	if !sched.ScheduledTime.Equal(oldTime) {
		detail += fmt.Sprintf("; time %s -> %s",
			oldTime.Format("2006-01-02 15:04"), sched.ScheduledTime.Format("2006-01-02 15:04"))
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceSchedule, sched.ID)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionScheduleUpdate,
		Details:      detail,
		ResourceID:   resID,
		ResourceType: resType,
	})

	return sched, nil
}

// Delete removes a booking. The audit entry carries the department, type and
// token so the trail stays readable after the row is gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.events.Publish(ctx, websocket.Event{
		Name:   websocket.EventScheduleUpdate,
		Action: "delete",
		Data: map[string]interface{}{
			"id":           sched.ID,
			"department":   sched.Department,
			"patientToken": sched.PatientToken,
		},
	})

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	resID, resType := audit.Ref(audit.ResourceSchedule, id)
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Username:   actorName,
		ActionType: audit.ActionScheduleDelete,
		Details: fmt.Sprintf("Deleted %s schedule in %s, patient token %s",
			sched.Type, sched.Department, sched.PatientToken),
		ResourceID:   resID,
		ResourceType: resType,
	})

	return nil
}
