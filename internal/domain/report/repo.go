package report

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for reports. ListByPatient serves
// the patient portal and is scoped by patient id.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Report, error)
	Update(ctx context.Context, r *Report) error
	Delete(ctx context.Context, clinicianID string, id uuid.UUID) error
	List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Report, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error)
	CountPending(ctx context.Context, clinicianID string) (int, error)
}
