package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/praxishealth/praxis/internal/platform/httperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, clinicianID string, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok || a.ClinicianID != clinicianID {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, clinicianID string, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func matches(a *Appointment, f Filter) bool {
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.From != "" && a.Date < f.From {
		return false
	}
	if f.To != "" && a.Date > f.To {
		return false
	}
	if f.PatientID != "" && a.PatientID.String() != f.PatientID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	return true
}

func (m *mockRepo) List(_ context.Context, clinicianID string, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var all []*Appointment
	for _, a := range m.items {
		if a.ClinicianID == clinicianID && matches(a, f) {
			cp := *a
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListAll(_ context.Context, clinicianID string, f Filter) ([]*Appointment, error) {
	var all []*Appointment
	for _, a := range m.items {
		if a.ClinicianID == clinicianID && matches(a, f) {
			cp := *a
			all = append(all, &cp)
		}
	}
	return all, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var all []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			cp := *a
			all = append(all, &cp)
		}
	}
	return all, nil
}

func valid() *Appointment {
	return &Appointment{
		PatientID: uuid.New(),
		Date:      "2025-03-01",
		Time:      "09:00",
		Type:      TypeConsultation,
		Duration:  30,
	}
}

func TestCreateDefaultsStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	a := valid()
	if err := svc.Create(context.Background(), "doc-1", a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", a.Status)
	}
	if a.ClinicianID != "doc-1" {
		t.Errorf("clinician = %q", a.ClinicianID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*Appointment)
	}{
		{"missing patient", func(a *Appointment) { a.PatientID = uuid.Nil }},
		{"bad date", func(a *Appointment) { a.Date = "03/01/2025" }},
		{"bad time", func(a *Appointment) { a.Time = "9am" }},
		{"unknown type", func(a *Appointment) { a.Type = "checkup" }},
		{"zero duration", func(a *Appointment) { a.Duration = 0 }},
		{"duration not multiple of 15", func(a *Appointment) { a.Duration = 25 }},
		{"unknown status", func(a *Appointment) { a.Status = "booked" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := valid()
			tc.mutate(a)
			err := svc.Create(context.Background(), "doc-1", a)
			var ve *httperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first := valid()
	if err := svc.Create(context.Background(), "doc-1", first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Overlapping slot on the same day is rejected.
	second := valid()
	second.Time = "09:15"
	err := svc.Create(context.Background(), "doc-1", second)
	if !errors.Is(err, httperr.ErrConflict) {
		t.Errorf("overlapping create err = %v, want conflict", err)
	}

	// Back-to-back is fine: intervals are half-open.
	third := valid()
	third.Time = "09:30"
	if err := svc.Create(context.Background(), "doc-1", third); err != nil {
		t.Errorf("back-to-back create: %v", err)
	}

	// A different clinician is not constrained.
	other := valid()
	other.Time = "09:15"
	if err := svc.Create(context.Background(), "doc-2", other); err != nil {
		t.Errorf("other clinician create: %v", err)
	}
}

func TestCancelledDoesNotConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first := valid()
	first.Status = StatusCancelled
	if err := svc.Create(context.Background(), "doc-1", first); err != nil {
		t.Fatalf("create: %v", err)
	}

	second := valid()
	if err := svc.Create(context.Background(), "doc-1", second); err != nil {
		t.Errorf("create over cancelled slot: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Get(context.Background(), "doc-1", uuid.New())
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetScopedToClinician(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := valid()
	if err := svc.Create(context.Background(), "doc-1", a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(context.Background(), "doc-2", a.ID); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("cross-clinician get err = %v, want not found", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := valid()
	if err := svc.Create(context.Background(), "doc-1", a); err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "bring previous scans"
	updated, err := svc.Update(context.Background(), "doc-1", a.ID, &UpdateParams{Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("notes not applied")
	}
	if updated.Time != "09:00" || updated.Duration != 30 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateRejectsTerminalStatusChange(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := valid()
	a.Status = StatusCompleted
	if err := svc.Create(context.Background(), "doc-1", a); err != nil {
		t.Fatalf("create: %v", err)
	}

	status := StatusScheduled
	_, err := svc.Update(context.Background(), "doc-1", a.ID, &UpdateParams{Status: &status})
	if !errors.Is(err, httperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestUpdateRescheduleChecksConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first := valid()
	if err := svc.Create(context.Background(), "doc-1", first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := valid()
	second.Time = "10:00"
	if err := svc.Create(context.Background(), "doc-1", second); err != nil {
		t.Fatalf("create: %v", err)
	}

	clash := "09:15"
	_, err := svc.Update(context.Background(), "doc-1", second.ID, &UpdateParams{Time: &clash})
	if !errors.Is(err, httperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := valid()
	if err := svc.Create(context.Background(), "doc-1", a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), "doc-1", a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "doc-1", a.ID); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("deleted appointment still readable")
	}
}

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{"0930", 0, false},
	}
	for _, tc := range cases {
		got, ok := timeToMinutes(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("timeToMinutes(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
