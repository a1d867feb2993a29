// Package stats aggregates a ledger snapshot into the figures shown for a
// period: category rollups, concentration, burn rate and spending pace.
package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
)

// Rolling window lengths offered to users.
var WindowDays = []int{15, 30, 60}

// Period selects either the last Days days or one calendar month.
type Period struct {
	Days  int       // rolling window length; zero for a calendar month
	Month time.Time // first day of the month when Days is zero
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// Len is the number of days in the window.
func (w Window) Len() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// ParsePeriod reads "30d" style rolling windows and "YYYY-MM" months. An
// empty selector is the 30 day window.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{Days: 30}, nil
	}
	if n, ok := strings.CutSuffix(strings.ToLower(s), "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return Period{}, models.Invalid("period", fmt.Sprintf("unrecognised window %q", s))
		}
		for _, allowed := range WindowDays {
			if days == allowed {
				return Period{Days: days}, nil
			}
		}
		return Period{}, models.Invalid("period", fmt.Sprintf("window must be one of %v days", WindowDays))
	}
	month, err := calendar.ParseMonth(s)
	if err != nil {
		return Period{}, models.Invalid("period", err.Error())
	}
	return Period{Month: month}, nil
}

// String renders the period the way ParsePeriod reads it.
func (p Period) String() string {
	if p.Days > 0 {
		return fmt.Sprintf("%dd", p.Days)
	}
	return calendar.MonthKey(p.Month)
}

// Rolling reports whether p is a rolling window.
func (p Period) Rolling() bool {
	return p.Days > 0
}

// Window resolves the period against today. A rolling window ends today and
// includes it.
func (p Period) Window(now time.Time) Window {
	today := calendar.Day(now)
	if p.Rolling() {
		return Window{Start: today.AddDate(0, 0, -(p.Days - 1)), End: today}
	}
	start := calendar.FirstOfMonth(p.Month)
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}

// Previous is the window of the same shape just before this one.
func (p Period) Previous(now time.Time) Window {
	w := p.Window(now)
	if p.Rolling() {
		return Window{Start: w.Start.AddDate(0, 0, -p.Days), End: w.Start.AddDate(0, 0, -1)}
	}
	start := w.Start.AddDate(0, -1, 0)
	return Window{Start: start, End: w.Start.AddDate(0, 0, -1)}
}

// ElapsedDays is the divisor of the daily average: the window length, the
// day of month for the current month, or the full length of any other month.
func (p Period) ElapsedDays(now time.Time) int {
	if !p.Rolling() && calendar.SameMonth(p.Month, now) {
		return now.Day()
	}
	return p.Window(now).Len()
}
