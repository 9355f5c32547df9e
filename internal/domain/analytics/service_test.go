package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praxishealth/praxis/internal/domain/appointment"
)

type stubSource struct {
	appts []*appointment.Appointment
	err   error
}

func (s *stubSource) ListAll(_ context.Context, _ string, f appointment.Filter) ([]*appointment.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*appointment.Appointment
	for _, a := range s.appts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type stubCounter struct {
	n   int
	err error
}

func (s *stubCounter) CountActive(context.Context, string) (int, error) { return s.n, s.err }

type stubReportCounter struct {
	n   int
	err error
}

func (s *stubReportCounter) CountPending(context.Context, string) (int, error) { return s.n, s.err }

func TestAppointmentsPassesFilter(t *testing.T) {
	src := &stubSource{appts: []*appointment.Appointment{
		appt("2025-01-01", appointment.StatusCompleted, appointment.TypeConsultation, 30),
		appt("2025-01-02", appointment.StatusCancelled, appointment.TypeConsultation, 30),
	}}
	svc := NewService(src, nil, nil)

	got, err := svc.Appointments(context.Background(), "doc-1", appointment.Filter{Status: appointment.StatusCompleted})
	if err != nil {
		t.Fatalf("appointments: %v", err)
	}
	if got.Summary.TotalAppointments != 1 {
		t.Errorf("total = %d, want 1", got.Summary.TotalAppointments)
	}
}

func TestAppointmentsSourceError(t *testing.T) {
	svc := NewService(&stubSource{err: errors.New("store down")}, nil, nil)
	if _, err := svc.Appointments(context.Background(), "doc-1", appointment.Filter{}); err == nil {
		t.Error("expected error")
	}
}

func TestDashboard(t *testing.T) {
	src := &stubSource{appts: []*appointment.Appointment{
		{Date: "2025-06-01", Time: "14:00", Status: appointment.StatusScheduled},
		{Date: "2025-06-01", Time: "09:00", Status: appointment.StatusConfirmed},
		{Date: "2025-06-05", Time: "09:00", Status: appointment.StatusScheduled},
		{Date: "2025-06-05", Time: "10:00", Status: appointment.StatusCancelled},
		{Date: "2025-05-01", Time: "09:00", Status: appointment.StatusCompleted},
	}}
	svc := NewService(src, &stubCounter{n: 12}, &stubReportCounter{n: 3})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }

	d, err := svc.DashboardFor(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Date != "2025-06-01" {
		t.Errorf("date = %q", d.Date)
	}
	if len(d.TodaysAppointments) != 2 || d.TodaysAppointments[0].Time != "09:00" {
		t.Errorf("today = %+v, want 2 entries sorted by time", d.TodaysAppointments)
	}
	if d.UpcomingCount != 1 {
		t.Errorf("upcoming = %d, want 1 (cancelled excluded)", d.UpcomingCount)
	}
	if d.ActivePatients != 12 {
		t.Errorf("activePatients = %d, want 12", d.ActivePatients)
	}
	if d.PendingReports != 3 {
		t.Errorf("pendingReports = %d, want 3", d.PendingReports)
	}
}

func TestDashboardCounterFailureIsSwallowed(t *testing.T) {
	svc := NewService(&stubSource{}, &stubCounter{err: errors.New("boom")}, &stubReportCounter{err: errors.New("boom")})
	d, err := svc.DashboardFor(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.ActivePatients != 0 {
		t.Errorf("activePatients = %d, want 0", d.ActivePatients)
	}
	if d.PendingReports != 0 {
		t.Errorf("pendingReports = %d, want 0", d.PendingReports)
	}
}
