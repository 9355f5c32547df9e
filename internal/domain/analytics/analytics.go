// Package analytics turns appointment lists into status counts, rates and
// time-bucketed volume trends. All computations are pure: callers fetch the
// records, this package only folds over them.
package analytics

import (
	"math"
	"sort"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/pkg/dates"
)

// PeriodCount is one bucket of a volume trend.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Trends holds completed-appointment volume bucketed three ways. Periods are
// ISO strings, so the ascending sort is chronological.
type Trends struct {
	Daily   []PeriodCount `json:"daily"`
	Weekly  []PeriodCount `json:"weekly"`
	Monthly []PeriodCount `json:"monthly"`
}

type Summary struct {
	TotalAppointments     int     `json:"totalAppointments"`
	TotalScheduled        int     `json:"totalScheduled"`
	CompletedAppointments int     `json:"completedAppointments"`
	CompletionRate        float64 `json:"completionRate"`
	AvgAppointmentsPerDay float64 `json:"avgAppointmentsPerDay"`
}

// AppointmentAnalytics is the full aggregation result.
type AppointmentAnalytics struct {
	StatusCounts      map[string]int `json:"statusCounts"`
	TotalScheduled    int            `json:"totalScheduled"`
	NoShowRate        float64        `json:"noShowRate"`
	CancellationRate  float64        `json:"cancellationRate"`
	AvgDurationByType map[string]int `json:"avgDurationByType"`
	Trends            Trends         `json:"trends"`
	Summary           Summary        `json:"summary"`
}

var knownStatuses = []string{
	appointment.StatusScheduled,
	appointment.StatusConfirmed,
	appointment.StatusCompleted,
	appointment.StatusCancelled,
	appointment.StatusNoShow,
}

var knownTypes = []string{
	appointment.TypeConsultation,
	appointment.TypeFollowUp,
	appointment.TypeProcedure,
	appointment.TypeUrgent,
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate folds appts into the full analytics result. Unknown statuses are
// ignored rather than counted. Empty input yields zero counts and zero rates.
func Aggregate(appts []*appointment.Appointment) *AppointmentAnalytics {
	counts := make(map[string]int, len(knownStatuses))
	for _, st := range knownStatuses {
		counts[st] = 0
	}
	known := make(map[string]bool, len(knownStatuses))
	for _, st := range knownStatuses {
		known[st] = true
	}
	for _, a := range appts {
		if known[a.Status] {
			counts[a.Status]++
		}
	}

	// Cancelled appointments never counted as scheduled.
	totalScheduled := counts[appointment.StatusScheduled] + counts[appointment.StatusConfirmed] +
		counts[appointment.StatusCompleted] + counts[appointment.StatusNoShow]

	noShowRate := 0.0
	if totalScheduled > 0 {
		noShowRate = round2(float64(counts[appointment.StatusNoShow]) / float64(totalScheduled) * 100)
	}
	cancellationRate := 0.0
	if len(appts) > 0 {
		cancellationRate = round2(float64(counts[appointment.StatusCancelled]) / float64(len(appts)) * 100)
	}

	return &AppointmentAnalytics{
		StatusCounts:      counts,
		TotalScheduled:    totalScheduled,
		NoShowRate:        noShowRate,
		CancellationRate:  cancellationRate,
		AvgDurationByType: averageDurationByType(appts),
		Trends:            VolumeTrends(appts),
		Summary:           Summarize(appts),
	}
}

func averageDurationByType(appts []*appointment.Appointment) map[string]int {
	sums := make(map[string]int, len(knownTypes))
	ns := make(map[string]int, len(knownTypes))
	for _, a := range appts {
		sums[a.Type] += a.Duration
		ns[a.Type]++
	}
	out := make(map[string]int, len(knownTypes))
	for _, t := range knownTypes {
		if ns[t] == 0 {
			out[t] = 0
			continue
		}
		out[t] = int(math.Round(float64(sums[t]) / float64(ns[t])))
	}
	return out
}

// VolumeTrends buckets completed appointments by day, ISO week (Monday start)
// and month.
func VolumeTrends(appts []*appointment.Appointment) Trends {
	daily := make(map[string]int)
	weekly := make(map[string]int)
	monthly := make(map[string]int)
	for _, a := range appts {
		if a.Status != appointment.StatusCompleted {
			continue
		}
		daily[a.Date]++
		weekly[dates.WeekStart(a.Date)]++
		monthly[dates.Month(a.Date)]++
	}
	return Trends{
		Daily:   sortedCounts(daily),
		Weekly:  sortedCounts(weekly),
		Monthly: sortedCounts(monthly),
	}
}

func sortedCounts(buckets map[string]int) []PeriodCount {
	out := make([]PeriodCount, 0, len(buckets))
	for period, count := range buckets {
		out = append(out, PeriodCount{Period: period, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// Summarize computes the headline figures over appts.
func Summarize(appts []*appointment.Appointment) Summary {
	var totalScheduled, completed int
	distinctDates := make(map[string]bool)
	for _, a := range appts {
		distinctDates[a.Date] = true
		switch a.Status {
		case appointment.StatusScheduled, appointment.StatusConfirmed,
			appointment.StatusCompleted, appointment.StatusNoShow:
			totalScheduled++
		}
		if a.Status == appointment.StatusCompleted {
			completed++
		}
	}

	completionRate := 0.0
	if totalScheduled > 0 {
		completionRate = round2(float64(completed) / float64(totalScheduled) * 100)
	}
	avgPerDay := 0.0
	if len(distinctDates) > 0 {
		avgPerDay = round2(float64(len(appts)) / float64(len(distinctDates)))
	}

	return Summary{
		TotalAppointments:     len(appts),
		TotalScheduled:        totalScheduled,
		CompletedAppointments: completed,
		CompletionRate:        completionRate,
		AvgAppointmentsPerDay: avgPerDay,
	}
}
