// Package maintenance predicts when installed assets are due for service and
// ranks the ones that need attention.
//
// Every function here is pure: callers pass the current time explicitly and
// the asset must already carry its LastServiceDate.
package maintenance

import (
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// DaysPerMonth approximates a service month. Intervals are not calendar
// accurate on purpose so results do not depend on time zones or month length.
const DaysPerMonth = 30

const (
	urgentWithinDays   = 15
	upcomingWithinDays = 30
)

// Priority classifies how soon an asset needs maintenance.
type Priority string

const (
	PriorityOverdue  Priority = "overdue"
	PriorityUrgent   Priority = "urgent"
	PriorityUpcoming Priority = "upcoming"
	PriorityOK       Priority = "ok"
)

// NeedsAttention reports whether the priority calls for action now
// (overdue or urgent). Upcoming is informational only.
func (p Priority) NeedsAttention() bool {
	return p == PriorityOverdue || p == PriorityUrgent
}

// IsAlert reports whether the priority is surfaced as an alert.
func (p Priority) IsAlert() bool {
	return p != PriorityOK && p != ""
}

// Classify maps days until maintenance to a priority. The first matching
// threshold wins: <0 overdue, <=15 urgent, <=30 upcoming.
func Classify(daysUntil int) Priority {
	switch {
	case daysUntil < 0:
		return PriorityOverdue
	case daysUntil <= urgentWithinDays:
		return PriorityUrgent
	case daysUntil <= upcomingWithinDays:
		return PriorityUpcoming
	default:
		return PriorityOK
	}
}

// ReferenceKind tells which date the interval was measured from.
type ReferenceKind string

const (
	ReferenceLastService ReferenceKind = "last_service"
	ReferenceInstall     ReferenceKind = "install"
)

// Status is the maintenance state of one asset at a given instant.
type Status struct {
	AssetID              string        `json:"asset_id"`
	Priority             Priority      `json:"priority"`
	DaysUntilMaintenance int           `json:"days_until_maintenance"`
	DaysSinceReference   int           `json:"days_since_reference"`
	IntervalDays         int           `json:"interval_days"`
	ReferenceDate        time.Time     `json:"reference_date"`
	ReferenceKind        ReferenceKind `json:"reference_kind"`
	NextMaintenanceDate  time.Time     `json:"next_maintenance_date"`
}

// Evaluate computes the maintenance status of a. The boolean is false when
// prediction does not apply: no positive service frequency, or neither a
// last-service nor an install date to measure from.
func Evaluate(a domain.Asset, now time.Time) (Status, bool) {
	if a.ServiceFrequencyMonths == nil || *a.ServiceFrequencyMonths <= 0 {
		return Status{}, false
	}

	var (
		ref  time.Time
		kind ReferenceKind
	)
	switch {
	case a.LastServiceDate != nil && !a.LastServiceDate.IsZero():
		ref, kind = *a.LastServiceDate, ReferenceLastService
	case a.InstallDate != nil && !a.InstallDate.IsZero():
		ref, kind = *a.InstallDate, ReferenceInstall
	default:
		return Status{}, false
	}

	interval := *a.ServiceFrequencyMonths * DaysPerMonth
	since := DaysBetween(ref, now)
	until := interval - since

	return Status{
		AssetID:              a.AssetID,
		Priority:             Classify(until),
		DaysUntilMaintenance: until,
		DaysSinceReference:   since,
		IntervalDays:         interval,
		ReferenceDate:        ref,
		ReferenceKind:        kind,
		NextMaintenanceDate:  calendarDate(ref).AddDate(0, 0, interval),
	}, true
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts whole calendar days from a to b using UTC dates, so
// the time of day never shifts the result. Negative when b precedes a.
// Unix seconds are used instead of Sub, which saturates past ~292 years.
func DaysBetween(a, b time.Time) int {
	return int((calendarDate(b).Unix() - calendarDate(a).Unix()) / secondsPerDay)
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
