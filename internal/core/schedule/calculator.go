// Package schedule computes the due dates of recurring definitions.
// Every function is pure: no clock, no storage.
package schedule

import (
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// Rule is the part of a definition that decides its due dates.
type Rule struct {
	Frequency domain.Frequency
	// AnchorDay is the day of month for MONTHLY and YEARLY; days past the end
	// of a month are clamped to its last day.
	AnchorDay int
	StartDate time.Time
	EndDate   *time.Time
	// TotalInstallments bounds the number of occurrences when > 0.
	TotalInstallments int
}

// RuleFor extracts the schedule rule of a definition. A missing anchor day
// falls back to the start date's day.
func RuleFor(def *domain.RecurringDefinition) Rule {
	r := Rule{
		Frequency: def.Frequency,
		StartDate: DateOf(def.StartDate),
		AnchorDay: def.StartDate.Day(),
	}
	if def.AnchorDay != nil {
		r.AnchorDay = *def.AnchorDay
	}
	if def.EndDate != nil {
		end := DateOf(*def.EndDate)
		r.EndDate = &end
	}
	if def.IsInstallment {
		r.TotalInstallments = def.TotalInstallments
	}
	return r
}

// Occurrence is one scheduled date and its 0-based position in the schedule.
type Occurrence struct {
	Date  time.Time
	Index int
}

func (r Rule) normalized() Rule {
	r.StartDate = DateOf(r.StartDate)
	if r.EndDate != nil {
		end := DateOf(*r.EndDate)
		r.EndDate = &end
	}
	if r.AnchorDay == 0 {
		r.AnchorDay = r.StartDate.Day()
	}
	return r
}

func (r Rule) within(date time.Time, index int) bool {
	if index < 0 {
		return false
	}
	if r.EndDate != nil && date.After(*r.EndDate) {
		return false
	}
	if r.TotalInstallments > 0 && index >= r.TotalInstallments {
		return false
	}
	return true
}

// DueDateOnOrAfter returns the first scheduled date on or after ref. It reports
// false when the schedule has ended (end date or installment count) or the
// frequency is unknown.
func DueDateOnOrAfter(rule Rule, ref time.Time) (Occurrence, bool) {
	r := rule.normalized()
	s, err := stepperFor(r.Frequency)
	if err != nil {
		return Occurrence{}, false
	}
	ref = DateOf(ref)
	if ref.Before(r.StartDate) {
		ref = r.StartDate
	}
	date, index := s.onOrAfter(r, ref)
	if !r.within(date, index) {
		return Occurrence{}, false
	}
	return Occurrence{Date: date, Index: index}, true
}

// DueDateInPeriod returns the occurrence of the given calendar month. For
// frequencies shorter than a month that is the first scheduled date in it.
func DueDateInPeriod(rule Rule, month, year int) (Occurrence, bool) {
	p := Period{Month: month, Year: year}
	occ, ok := DueDateOnOrAfter(rule, p.Start())
	if !ok || occ.Date.After(p.End()) {
		return Occurrence{}, false
	}
	return occ, true
}

// OccurrenceAt returns the occurrence with the given index.
func OccurrenceAt(rule Rule, index int) (Occurrence, bool) {
	r := rule.normalized()
	s, err := stepperFor(r.Frequency)
	if err != nil {
		return Occurrence{}, false
	}
	date := s.at(r, index)
	if !r.within(date, index) {
		return Occurrence{}, false
	}
	return Occurrence{Date: date, Index: index}, true
}
