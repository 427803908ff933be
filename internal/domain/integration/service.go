// Package integration holds the external-system bridges: a simulated EHR
// patient sync and a simulated lab-results feed. No real upstream exists in
// this deployment; the endpoints exercise the full auth, audit and error
// paths so a real connector can slot in behind the same interface.
package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/audit"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// failingPatientID simulates an upstream miss for exercising error handling.
const failingPatientID = "PAT-FAIL"

type SyncInput struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
}

type SyncResult struct {
	PatientID   string    `json:"patientId"`
	EHRRecordID string    `json:"ehrRecordId"`
	SyncedAt    time.Time `json:"syncedAt"`
	Status      string    `json:"status"`
}

type LabResult struct {
	TestName    string    `json:"testName"`
	Value       string    `json:"value"`
	Unit        string    `json:"unit"`
	ReferenceLo string    `json:"referenceLow"`
	ReferenceHi string    `json:"referenceHigh"`
	CollectedAt time.Time `json:"collectedAt"`
}

type LabReport struct {
	PatientID string      `json:"patientId"`
	Results   []LabResult `json:"results"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

type Service struct {
	audit audit.Recorder
}

func NewService(recorder audit.Recorder) *Service {
	return &Service{audit: recorder}
}

func (s *Service) SyncPatient(ctx context.Context, in SyncInput) (*SyncResult, error) {
	if in.PatientID == "" {
		return nil, apperr.Validation("patientId is required")
	}

	res := &SyncResult{
		PatientID:   in.PatientID,
		EHRRecordID: "EHR-" + strings.ToUpper(uuid.NewString()[:8]),
		SyncedAt:    time.Now().UTC(),
		Status:      "synced",
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	rt := audit.ResourceIntegration
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionIntegrationSync,
		Details:      fmt.Sprintf("Synced patient %s to EHR record %s", res.PatientID, res.EHRRecordID),
		ResourceType: &rt,
	})

	return res, nil
}

func (s *Service) FetchLabResults(ctx context.Context, patientID string) (*LabReport, error) {
	if patientID == "" {
		return nil, apperr.Validation("patientId is required")
	}
	if patientID == failingPatientID {
		return nil, apperr.NotFound("no lab results for patient %s", patientID)
	}

	now := time.Now().UTC()
	report := &LabReport{
		PatientID: patientID,
		FetchedAt: now,
		Results: []LabResult{
			{TestName: "Hemoglobin", Value: "13.5", Unit: "g/dL",
				ReferenceLo: "12.0", ReferenceHi: "17.5", CollectedAt: now.Add(-2 * time.Hour)},
			{TestName: "WBC", Value: "6.1", Unit: "10^9/L",
				ReferenceLo: "4.0", ReferenceHi: "11.0", CollectedAt: now.Add(-2 * time.Hour)},
			{TestName: "Platelets", Value: "250", Unit: "10^9/L",
				ReferenceLo: "150", ReferenceHi: "400", CollectedAt: now.Add(-2 * time.Hour)},
		},
	}

	actorID, actorName := audit.Actor(auth.IdentityFromContext(ctx))
	rt := audit.ResourceIntegration
	_ = s.audit.Record(ctx, audit.Entry{
		UserID:       actorID,
		Username:     actorName,
		ActionType:   audit.ActionIntegrationFetch,
		Details:      fmt.Sprintf("Fetched lab results for patient %s", patientID),
		ResourceType: &rt,
	})

	return report, nil
}
