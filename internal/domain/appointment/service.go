package appointment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/praxishealth/praxis/internal/platform/httperr"
	"github.com/praxishealth/praxis/pkg/dates"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

var validTypes = map[string]bool{
	TypeConsultation: true,
	TypeFollowUp:     true,
	TypeProcedure:    true,
	TypeUrgent:       true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// timeToMinutes converts "HH:MM" to minutes since midnight.
func timeToMinutes(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// overlaps is the half-open interval test: [aStart,aEnd) and [bStart,bEnd)
// intersect iff each starts before the other ends.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func validate(a *Appointment) []string {
	var msgs []string
	if a.PatientID == uuid.Nil {
		msgs = append(msgs, "patientId is required")
	}
	if _, ok := dates.Parse(a.Date); !ok {
		msgs = append(msgs, "date must be a valid ISO date (YYYY-MM-DD)")
	}
	if _, ok := timeToMinutes(a.Time); !ok {
		msgs = append(msgs, "time must be a valid HH:MM time")
	}
	if !validTypes[a.Type] {
		msgs = append(msgs, "type must be one of: consultation, follow-up, procedure, urgent")
	}
	if a.Duration <= 0 || a.Duration%15 != 0 {
		msgs = append(msgs, "duration must be a positive multiple of 15 minutes")
	}
	if !validStatuses[a.Status] {
		msgs = append(msgs, "status must be one of: scheduled, confirmed, completed, cancelled, no-show")
	}
	return msgs
}

// checkConflict rejects a when it overlaps another non-cancelled appointment
// of the same clinician on the same date.
func (s *Service) checkConflict(ctx context.Context, a *Appointment) error {
	start, ok := timeToMinutes(a.Time)
	if !ok {
		return nil
	}
	existing, err := s.repo.ListAll(ctx, a.ClinicianID, Filter{Date: a.Date})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == a.ID || other.Status == StatusCancelled {
			continue
		}
		otherStart, ok := timeToMinutes(other.Time)
		if !ok {
			continue
		}
		if overlaps(start, start+a.Duration, otherStart, otherStart+other.Duration) {
			return fmt.Errorf("%w: appointment overlaps an existing appointment at %s %s",
				httperr.ErrConflict, other.Date, other.Time)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, clinicianID string, a *Appointment) error {
	a.ClinicianID = clinicianID
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if msgs := validate(a); len(msgs) > 0 {
		return httperr.Validation(msgs...)
	}
	if err := s.checkConflict(ctx, a); err != nil {
		return err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, clinicianID string, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, clinicianID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	return a, err
}

func (s *Service) List(ctx context.Context, clinicianID string, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, clinicianID, f, limit, offset)
}

// Update applies the non-nil fields of params to the appointment. Terminal
// statuses (completed, cancelled, no-show) admit no further status change.
func (s *Service) Update(ctx context.Context, clinicianID string, id uuid.UUID, params *UpdateParams) (*Appointment, error) {
	a, err := s.Get(ctx, clinicianID, id)
	if err != nil {
		return nil, err
	}

	if params.Status != nil && *params.Status != a.Status && IsTerminal(a.Status) {
		return nil, fmt.Errorf("%w: appointment status %q is terminal", httperr.ErrConflict, a.Status)
	}

	rescheduled := false
	if params.PatientID != nil {
		a.PatientID = *params.PatientID
	}
	if params.Date != nil {
		a.Date = *params.Date
		rescheduled = true
	}
	if params.Time != nil {
		a.Time = *params.Time
		rescheduled = true
	}
	if params.Type != nil {
		a.Type = *params.Type
	}
	if params.Duration != nil {
		a.Duration = *params.Duration
		rescheduled = true
	}
	if params.Status != nil {
		a.Status = *params.Status
	}
	if params.Notes != nil {
		a.Notes = params.Notes
	}

	if msgs := validate(a); len(msgs) > 0 {
		return nil, httperr.Validation(msgs...)
	}
	if rescheduled && !IsTerminal(a.Status) {
		if err := s.checkConflict(ctx, a); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, clinicianID string, id uuid.UUID) error {
	if _, err := s.Get(ctx, clinicianID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, clinicianID, id)
}
