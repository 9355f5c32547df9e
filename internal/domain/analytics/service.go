package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/pkg/dates"
)

// AppointmentSource supplies the unpaginated appointment set to aggregate.
type AppointmentSource interface {
	ListAll(ctx context.Context, clinicianID string, f appointment.Filter) ([]*appointment.Appointment, error)
}

// PatientCounter reports the number of active patients for a clinician.
type PatientCounter interface {
	CountActive(ctx context.Context, clinicianID string) (int, error)
}

// ReportCounter reports the number of unfinished reports for a clinician.
type ReportCounter interface {
	CountPending(ctx context.Context, clinicianID string) (int, error)
}

// Dashboard is the at-a-glance view served to clinicians.
type Dashboard struct {
	Date               string                     `json:"date"`
	TodaysAppointments []*appointment.Appointment `json:"todaysAppointments"`
	UpcomingCount      int                        `json:"upcomingCount"`
	ActivePatients     int                        `json:"activePatients"`
	PendingReports     int                        `json:"pendingReports"`
	Summary            Summary                    `json:"summary"`
}

type Service struct {
	appts    AppointmentSource
	patients PatientCounter
	reports  ReportCounter
	now      func() time.Time
}

func NewService(appts AppointmentSource, patients PatientCounter, reports ReportCounter) *Service {
	return &Service{appts: appts, patients: patients, reports: reports, now: time.Now}
}

// Appointments fetches the clinician's appointments matching f and aggregates
// them.
func (s *Service) Appointments(ctx context.Context, clinicianID string, f appointment.Filter) (*AppointmentAnalytics, error) {
	appts, err := s.appts.ListAll(ctx, clinicianID, f)
	if err != nil {
		return nil, err
	}
	return Aggregate(appts), nil
}

// DashboardFor builds the clinician dashboard from a single appointment scan.
func (s *Service) DashboardFor(ctx context.Context, clinicianID string) (*Dashboard, error) {
	appts, err := s.appts.ListAll(ctx, clinicianID, appointment.Filter{})
	if err != nil {
		return nil, err
	}
	today := s.now().Format(dates.ISODate)

	d := &Dashboard{
		Date:               today,
		TodaysAppointments: []*appointment.Appointment{},
		Summary:            Summarize(appts),
	}
	for _, a := range appts {
		switch {
		case a.Date == today:
			d.TodaysAppointments = append(d.TodaysAppointments, a)
		case a.Date > today && (a.Status == appointment.StatusScheduled || a.Status == appointment.StatusConfirmed):
			d.UpcomingCount++
		}
	}
	sort.Slice(d.TodaysAppointments, func(i, j int) bool {
		return d.TodaysAppointments[i].Time < d.TodaysAppointments[j].Time
	})

	// Counters are enrichment only; a failing count never fails the
	// dashboard.
	if s.patients != nil {
		if n, err := s.patients.CountActive(ctx, clinicianID); err == nil {
			d.ActivePatients = n
		}
	}
	if s.reports != nil {
		if n, err := s.reports.CountPending(ctx, clinicianID); err == nil {
			d.PendingReports = n
		}
	}
	return d, nil
}
