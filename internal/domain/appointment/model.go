package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Completed, cancelled and no-show are terminal.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Appointment types.
const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow-up"
	TypeProcedure    = "procedure"
	TypeUrgent       = "urgent"
)

// Appointment is a scheduled visit. Date and Time are stored as ISO strings
// ("2025-03-01", "09:30") so string comparison orders them chronologically.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClinicianID string    `db:"clinician_id" json:"clinicianId"`
	PatientID   uuid.UUID `db:"patient_id" json:"patientId"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Type        string    `db:"type" json:"type"`
	Duration    int       `db:"duration" json:"duration"`
	Status      string    `db:"status" json:"status"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// UpdateParams carries the mutable fields of an appointment. Nil fields are
// left untouched.
type UpdateParams struct {
	PatientID *uuid.UUID `json:"patientId,omitempty"`
	Date      *string    `json:"date,omitempty"`
	Time      *string    `json:"time,omitempty"`
	Type      *string    `json:"type,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// Filter narrows appointment listings.
type Filter struct {
	Date      string
	From      string
	To        string
	PatientID string
	Status    string
	Type      string
}

// IsTerminal reports whether status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled || status == StatusNoShow
}
