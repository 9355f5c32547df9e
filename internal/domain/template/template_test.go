package template

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/praxishealth/praxis/internal/platform/httperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Template
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Template)}
}

func (m *mockRepo) Create(_ context.Context, t *Template) error {
	t.ID = uuid.New()
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, clinicianID string, id uuid.UUID) (*Template, error) {
	t, ok := m.items[id]
	if !ok || t.ClinicianID != clinicianID {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, t *Template) error {
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, clinicianID string, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, clinicianID string, limit, offset int) ([]*Template, int, error) {
	var all []*Template
	for _, t := range m.items {
		if t.ClinicianID == clinicianID {
			cp := *t
			all = append(all, &cp)
		}
	}
	return all, len(all), nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	tpl := &Template{Name: "Discharge Summary", Content: "Patient {{patient_name}} was discharged on {{date}}."}
	if err := svc.Create(context.Background(), "doc-1", tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ClinicianID != "doc-1" {
		t.Errorf("clinician = %q", tpl.ClinicianID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Create(context.Background(), "doc-1", &Template{Name: " ", Content: ""})
	var ve *httperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(ve.Messages) != 2 {
		t.Errorf("messages = %v, want 2", ve.Messages)
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	tpl := &Template{Name: "Referral", Content: "Refer {{patient_name}} to {{specialty}}."}
	if err := svc.Create(context.Background(), "doc-1", tpl); err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Referral Letter"
	updated, err := svc.Update(context.Background(), "doc-1", tpl.ID, &UpdateParams{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.Content != tpl.Content {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdateCannotBlankContent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	tpl := &Template{Name: "Referral", Content: "body"}
	if err := svc.Create(context.Background(), "doc-1", tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	blank := "  "
	_, err := svc.Update(context.Background(), "doc-1", tpl.ID, &UpdateParams{Content: &blank})
	var ve *httperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestDeleteIsHard(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	tpl := &Template{Name: "Referral", Content: "body"}
	if err := svc.Create(context.Background(), "doc-1", tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), "doc-1", tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.items[tpl.ID]; ok {
		t.Error("template still present after delete")
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), "doc-1", uuid.New()); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
