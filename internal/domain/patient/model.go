package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/praxishealth/praxis/internal/domain/analytics"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Portal account statuses.
const (
	AccountPending = "pending"
	AccountActive  = "active"
)

// Activation tracks the patient's portal account lifecycle. The invitation
// token never leaves the server.
type Activation struct {
	PortalUserID        *string    `db:"portal_user_id" json:"portalUserId,omitempty"`
	AccountStatus       string     `db:"account_status" json:"accountStatus"`
	InvitationToken     *string    `db:"invitation_token" json:"-"`
	InvitationSentAt    *time.Time `db:"invitation_sent_at" json:"invitationSentAt,omitempty"`
	InvitationExpiresAt *time.Time `db:"invitation_expires_at" json:"invitationExpiresAt,omitempty"`
}

// Patient is a clinician-owned patient record. MRN is globally unique and
// server-generated. Patients are never hard-deleted; delete flips status to
// inactive.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ClinicianID string     `db:"clinician_id" json:"clinicianId"`
	MRN         string     `db:"mrn" json:"mrn"`
	FirstName   string     `db:"first_name" json:"firstName"`
	LastName    string     `db:"last_name" json:"lastName"`
	DateOfBirth *string    `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	Status      string     `db:"status" json:"status"`
	Activation  Activation `json:"activation"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// UpdateParams carries the mutable patient fields. Nil fields are left
// untouched; MRN, clinician and activation state are never client-mutable.
type UpdateParams struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// View is a patient decorated with computed enrichment for read endpoints.
type View struct {
	*Patient
	Age            *int                      `json:"age"`
	VisitFrequency *analytics.VisitFrequency `json:"visitFrequency,omitempty"`
}

// ScoredPatient is one search hit.
type ScoredPatient struct {
	*Patient
	Age   *int `json:"age"`
	Score int  `json:"relevanceScore"`
}

// SearchResult echoes the query back alongside the ranked hits.
type SearchResult struct {
	Data  []*ScoredPatient `json:"data"`
	Total int              `json:"total"`
	Query string           `json:"query"`
}
