package billing

import (
	"time"

	"github.com/houseway/backend/internal/domain/shared"
)

// Frequency enumerates recurring invoice schedules
type Frequency string

const (
	FrequencyDaily        Frequency = "daily"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiweekly     Frequency = "biweekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiannually Frequency = "semiannually"
	FrequencyAnnually     Frequency = "annually"
)

// IsValid checks if the frequency is valid
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiannually, FrequencyAnnually:
		return true
	}
	return false
}

// RecurringPattern describes how a template invoice regenerates due dates
type RecurringPattern struct {
	Enabled        bool       `json:"enabled"`
	Frequency      Frequency  `json:"frequency,omitempty"`
	Interval       int        `json:"interval"` // Every N frequency units, minimum 1
	DayOfMonth     int        `json:"day_of_month,omitempty"`
	DayOfWeek      int        `json:"day_of_week,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	MaxOccurrences int        `json:"max_occurrences,omitempty"`
	Occurrences    int        `json:"occurrences"` // Invoices generated so far
	NextDueDate    *time.Time `json:"next_due_date,omitempty"`
}

// NewRecurringPattern creates a validated recurring pattern
func NewRecurringPattern(frequency Frequency, interval int, endDate *time.Time, maxOccurrences int) (RecurringPattern, error) {
	if !frequency.IsValid() {
		return RecurringPattern{}, shared.NewDomainError("INVALID_FREQUENCY", "Recurring frequency is not valid")
	}
	if interval < 1 {
		return RecurringPattern{}, shared.NewDomainError("INVALID_INTERVAL", "Recurring interval must be at least 1")
	}
	if maxOccurrences < 0 {
		return RecurringPattern{}, shared.NewDomainError("INVALID_OCCURRENCES", "Max occurrences cannot be negative")
	}
	return RecurringPattern{
		Enabled:        true,
		Frequency:      frequency,
		Interval:       interval,
		EndDate:        endDate,
		MaxOccurrences: maxOccurrences,
	}, nil
}

// Exhausted returns true if the pattern cannot produce another invoice:
// either the occurrence cap is reached or the candidate date is past EndDate
func (r RecurringPattern) Exhausted(candidate time.Time) bool {
	if !r.Enabled {
		return true
	}
	if r.MaxOccurrences > 0 && r.Occurrences >= r.MaxOccurrences {
		return true
	}
	if r.EndDate != nil && candidate.After(*r.EndDate) {
		return true
	}
	return false
}

// NextDueDate advances dueDate by the pattern's interval. Returns dueDate
// unchanged when recurrence is disabled or the frequency is unset.
//
// Month and year steps use time.Time.AddDate, which normalizes overflowing
// days rather than clamping: Jan 31 + 1 month is Mar 3 (Mar 2 in leap years).
func NextDueDate(dueDate time.Time, pattern RecurringPattern) time.Time {
	if !pattern.Enabled || pattern.Frequency == "" {
		return dueDate
	}

	interval := pattern.Interval
	if interval < 1 {
		interval = 1
	}

	switch pattern.Frequency {
	case FrequencyDaily:
		return dueDate.AddDate(0, 0, interval)
	case FrequencyWeekly:
		return dueDate.AddDate(0, 0, 7*interval)
	case FrequencyBiweekly:
		return dueDate.AddDate(0, 0, 14*interval)
	case FrequencyMonthly:
		return dueDate.AddDate(0, interval, 0)
	case FrequencyQuarterly:
		return dueDate.AddDate(0, 3*interval, 0)
	case FrequencySemiannually:
		return dueDate.AddDate(0, 6*interval, 0)
	case FrequencyAnnually:
		return dueDate.AddDate(interval, 0, 0)
	}
	return dueDate
}
