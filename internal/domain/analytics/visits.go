package analytics

import (
	"sort"
	"time"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/pkg/dates"
)

// VisitFrequency summarizes a patient's completed-visit history.
type VisitFrequency struct {
	LastVisitDate    *string `json:"lastVisitDate"`
	AnnualVisitCount int     `json:"annualVisitCount"`
	NeedsFollowUp    bool    `json:"needsFollowUp"`
}

// Visits derives visit frequency from a patient's appointments. Only
// completed appointments count. An empty history returns the zero result.
func Visits(appts []*appointment.Appointment, now time.Time) VisitFrequency {
	var completed []*appointment.Appointment
	for _, a := range appts {
		if a.Status == appointment.StatusCompleted {
			completed = append(completed, a)
		}
	}
	if len(completed) == 0 {
		return VisitFrequency{}
	}

	sort.Slice(completed, func(i, j int) bool {
		if completed[i].Date != completed[j].Date {
			return completed[i].Date > completed[j].Date
		}
		return completed[i].Time > completed[j].Time
	})

	last := completed[0].Date
	cutoff := dates.OneYearBefore(now)
	annual := 0
	for _, a := range completed {
		if a.Date >= cutoff {
			annual++
		}
	}

	return VisitFrequency{
		LastVisitDate:    &last,
		AnnualVisitCount: annual,
		NeedsFollowUp:    dates.MonthsSince(last, now) > 6,
	}
}
