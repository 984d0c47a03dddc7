package schedule

import (
	"fmt"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// stepper encapsulates the date arithmetic of one frequency.
type stepper interface {
	// at returns the date of the occurrence with the given 0-based index.
	at(r Rule, index int) time.Time
	// onOrAfter returns the first occurrence on or after ref. ref is never before r.StartDate.
	onOrAfter(r Rule, ref time.Time) (time.Time, int)
}

// fixedStep handles frequencies that advance by a constant number of days.
type fixedStep struct{ days int }

func (s fixedStep) at(r Rule, index int) time.Time {
	return r.StartDate.AddDate(0, 0, index*s.days)
}

func (s fixedStep) onOrAfter(r Rule, ref time.Time) (time.Time, int) {
	d := daysBetween(r.StartDate, ref)
	index := (d + s.days - 1) / s.days
	return s.at(r, index), index
}

// monthlyStep handles the anchor day of every month.
type monthlyStep struct{}

// base is 1 when the anchor in the start month falls before the start date, so
// the first occurrence is in the following month.
func (monthlyStep) base(r Rule) int {
	if clampedDate(r.StartDate.Year(), r.StartDate.Month(), 0, r.AnchorDay).Before(r.StartDate) {
		return 1
	}
	return 0
}

func (m monthlyStep) at(r Rule, index int) time.Time {
	return clampedDate(r.StartDate.Year(), r.StartDate.Month(), m.base(r)+index, r.AnchorDay)
}

func (m monthlyStep) onOrAfter(r Rule, ref time.Time) (time.Time, int) {
	offset := monthsBetween(r.StartDate, ref)
	date := clampedDate(r.StartDate.Year(), r.StartDate.Month(), offset, r.AnchorDay)
	if date.Before(ref) {
		offset++
		date = clampedDate(r.StartDate.Year(), r.StartDate.Month(), offset, r.AnchorDay)
	}
	return date, offset - m.base(r)
}

// yearlyStep handles the anchor day of the start date's month, once a year.
type yearlyStep struct{}

func (yearlyStep) dateIn(r Rule, year int) time.Time {
	return clampedDate(year, r.StartDate.Month(), 0, r.AnchorDay)
}

func (y yearlyStep) base(r Rule) int {
	if y.dateIn(r, r.StartDate.Year()).Before(r.StartDate) {
		return 1
	}
	return 0
}

func (y yearlyStep) at(r Rule, index int) time.Time {
	return y.dateIn(r, r.StartDate.Year()+y.base(r)+index)
}

func (y yearlyStep) onOrAfter(r Rule, ref time.Time) (time.Time, int) {
	offset := ref.Year() - r.StartDate.Year()
	date := y.dateIn(r, ref.Year())
	if date.Before(ref) {
		offset++
		date = y.dateIn(r, ref.Year()+1)
	}
	return date, offset - y.base(r)
}

var steppers = map[domain.Frequency]stepper{
	domain.Daily:    fixedStep{days: 1},
	domain.Weekly:   fixedStep{days: 7},
	domain.Biweekly: fixedStep{days: 14},
	domain.Monthly:  monthlyStep{},
	domain.Yearly:   yearlyStep{},
}

func stepperFor(f domain.Frequency) (stepper, error) {
	s, ok := steppers[f]
	if !ok {
		return nil, fmt.Errorf("unsupported frequency: %s", f)
	}
	return s, nil
}
