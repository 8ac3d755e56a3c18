package volume

import (
	"math"
	"time"

	"github.com/meltforce/periodix/internal/models"
)

// Week is an ISO week as [Start, End) calendar dates at UTC midnight.
type Week struct {
	Start time.Time
	End   time.Time
}

// Date reduces t to its calendar date in loc, expressed at UTC midnight.
func Date(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekOf returns the Monday-based week containing t's date in loc.
func WeekOf(t time.Time, loc *time.Location) Week {
	day := Date(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 7)}
}

// Shift moves the week by n weeks.
func (w Week) Shift(n int) Week {
	return Week{Start: w.Start.AddDate(0, 0, 7*n), End: w.End.AddDate(0, 0, 7*n)}
}

// InProgress reports whether now (already reduced with Date) falls in the week.
func (w Week) InProgress(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// StartLabel and LastDayLabel format the week bounds as dates.
func (w Week) StartLabel() string   { return w.Start.Format(models.DateLayout) }
func (w Week) LastDayLabel() string { return w.End.AddDate(0, 0, -1).Format(models.DateLayout) }

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
