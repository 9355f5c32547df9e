package report

import (
	"time"

	"github.com/google/uuid"
)

// Report types.
const (
	TypeMedicalReport = "medical-report"
	TypeTranscription = "transcription"
)

// Report statuses. Transcriptions move pending_upload -> processing ->
// completed/failed; authored reports move draft -> reviewed -> finalized.
const (
	StatusPendingUpload = "pending_upload"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusDraft         = "draft"
	StatusReviewed      = "reviewed"
	StatusFinalized     = "finalized"
)

// Report is a clinician-owned medical report or dictation transcription.
// JobName identifies the transcription job at the external speech-to-text
// engine and is server-generated.
type Report struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ClinicianID     string     `db:"clinician_id" json:"clinicianId"`
	PatientID       *uuid.UUID `db:"patient_id" json:"patientId,omitempty"`
	Type            string     `db:"type" json:"type"`
	Status          string     `db:"status" json:"status"`
	Title           *string    `db:"title" json:"title,omitempty"`
	JobName         *string    `db:"job_name" json:"jobName,omitempty"`
	TranscriptText  *string    `db:"transcript_text" json:"transcriptText,omitempty"`
	AnalysisSummary *string    `db:"analysis_summary" json:"analysisSummary,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// UpdateParams carries the mutable report fields. Nil fields are left
// untouched.
type UpdateParams struct {
	PatientID       *uuid.UUID `json:"patientId,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Title           *string    `json:"title,omitempty"`
	TranscriptText  *string    `json:"transcriptText,omitempty"`
	AnalysisSummary *string    `json:"analysisSummary,omitempty"`
}

// Filter narrows report listings.
type Filter struct {
	Type      string
	Status    string
	PatientID string
}
