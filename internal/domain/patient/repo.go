package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for patients. GetByMRN and
// GetAnyByID are unscoped: MRN uniqueness is global, and portal activation
// arrives before the caller has a clinician identity.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Patient, error)
	GetAnyByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	GetByPortalUserID(ctx context.Context, portalUserID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, clinicianID, status string, limit, offset int) ([]*Patient, int, error)
	ListAll(ctx context.Context, clinicianID string) ([]*Patient, error)
	CountActive(ctx context.Context, clinicianID string) (int, error)
}
