// Package template manages clinician-owned report templates. Content carries
// {{placeholder}} tokens filled in by the report editor client side.
package template

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/praxishealth/praxis/internal/platform/httperr"
)

type Template struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClinicianID string    `db:"clinician_id" json:"clinicianId"`
	Name        string    `db:"name" json:"name"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type UpdateParams struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, clinicianID string, id uuid.UUID) (*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, clinicianID string, id uuid.UUID) error
	List(ctx context.Context, clinicianID string, limit, offset int) ([]*Template, int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(t *Template) []string {
	var msgs []string
	if strings.TrimSpace(t.Name) == "" {
		msgs = append(msgs, "name is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		msgs = append(msgs, "content is required")
	}
	return msgs
}

func (s *Service) Create(ctx context.Context, clinicianID string, t *Template) error {
	t.ClinicianID = clinicianID
	if msgs := validate(t); len(msgs) > 0 {
		return httperr.Validation(msgs...)
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, clinicianID string, id uuid.UUID) (*Template, error) {
	t, err := s.repo.GetByID(ctx, clinicianID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	return t, err
}

func (s *Service) List(ctx context.Context, clinicianID string, limit, offset int) ([]*Template, int, error) {
	return s.repo.List(ctx, clinicianID, limit, offset)
}

func (s *Service) Update(ctx context.Context, clinicianID string, id uuid.UUID, params *UpdateParams) (*Template, error) {
	t, err := s.Get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.Content != nil {
		t.Content = *params.Content
	}
	if msgs := validate(t); len(msgs) > 0 {
		return nil, httperr.Validation(msgs...)
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the template permanently.
func (s *Service) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	if _, err := s.Get(ctx, clinicianID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, clinicianID, id)
}
