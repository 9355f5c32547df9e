package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for appointments. All clinician-side
// reads and writes are scoped by clinician id; ListByPatient serves the
// patient portal and is scoped by patient id instead.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, clinicianID string, id uuid.UUID) error
	List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Appointment, int, error)
	ListAll(ctx context.Context, clinicianID string, f Filter) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
}
