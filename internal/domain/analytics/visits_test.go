package analytics

import (
	"testing"
	"time"

	"github.com/praxishealth/praxis/internal/domain/appointment"
)

func visit(date, tm, status string) *appointment.Appointment {
	return &appointment.Appointment{Date: date, Time: tm, Status: status}
}

func TestVisitsEmpty(t *testing.T) {
	got := Visits(nil, time.Now())
	if got.LastVisitDate != nil || got.AnnualVisitCount != 0 || got.NeedsFollowUp {
		t.Errorf("got %+v, want zero result", got)
	}
}

func TestVisitsIgnoresNonCompleted(t *testing.T) {
	appts := []*appointment.Appointment{
		visit("2025-05-01", "09:00", appointment.StatusScheduled),
		visit("2025-04-01", "09:00", appointment.StatusCancelled),
	}
	got := Visits(appts, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if got.LastVisitDate != nil {
		t.Errorf("lastVisitDate = %v, want nil", *got.LastVisitDate)
	}
}

func TestVisitsLastVisitByDateThenTime(t *testing.T) {
	appts := []*appointment.Appointment{
		visit("2025-03-01", "09:00", appointment.StatusCompleted),
		visit("2025-03-10", "08:00", appointment.StatusCompleted),
		visit("2025-03-10", "14:00", appointment.StatusCompleted),
	}
	got := Visits(appts, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if got.LastVisitDate == nil || *got.LastVisitDate != "2025-03-10" {
		t.Errorf("lastVisitDate = %v, want 2025-03-10", got.LastVisitDate)
	}
	if got.NeedsFollowUp {
		t.Error("needsFollowUp = true for a visit one month ago")
	}
}

func TestVisitsNeedsFollowUpBoundary(t *testing.T) {
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	// Exactly six months ago: not yet due.
	got := Visits([]*appointment.Appointment{visit("2025-02-01", "09:00", appointment.StatusCompleted)}, now)
	if got.NeedsFollowUp {
		t.Error("six months since last visit should not need follow-up")
	}

	// Seven months ago: due.
	got = Visits([]*appointment.Appointment{visit("2025-01-01", "09:00", appointment.StatusCompleted)}, now)
	if !got.NeedsFollowUp {
		t.Error("seven months since last visit should need follow-up")
	}
}

func TestVisitsAnnualCount(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	appts := []*appointment.Appointment{
		visit("2025-05-01", "09:00", appointment.StatusCompleted),
		visit("2024-06-01", "09:00", appointment.StatusCompleted), // exactly on the cutoff
		visit("2024-05-31", "09:00", appointment.StatusCompleted), // just outside
	}
	got := Visits(appts, now)
	if got.AnnualVisitCount != 2 {
		t.Errorf("annualVisitCount = %d, want 2", got.AnnualVisitCount)
	}
}
