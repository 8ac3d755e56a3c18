package volume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"golang.org/x/sync/errgroup"
)

// History window bounds in weeks.
const (
	DefaultHistoryWeeks = 8
	MaxHistoryWeeks     = 52
)

// Options tune an Aggregator.
type Options struct {
	// Location decides where a calendar week starts. Defaults to UTC.
	Location            *time.Location
	HistoryDefaultWeeks int
	HistoryMaxWeeks     int
}

// Aggregator sums completed and planned sets per muscle group.
type Aggregator struct {
	store    store.Reader
	reg      *Registry
	loc      *time.Location
	defWeeks int
	maxWeeks int
	log      *slog.Logger
}

// NewAggregator creates an Aggregator over r using the landmarks in reg.
func NewAggregator(r store.Reader, reg *Registry, opts Options, log *slog.Logger) *Aggregator {
	a := &Aggregator{
		store:    r,
		reg:      reg,
		loc:      opts.Location,
		defWeeks: opts.HistoryDefaultWeeks,
		maxWeeks: opts.HistoryMaxWeeks,
		log:      log,
	}
	if a.loc == nil {
		a.loc = time.UTC
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.maxWeeks <= 0 || a.maxWeeks > MaxHistoryWeeks {
		a.maxWeeks = MaxHistoryWeeks
	}
	if a.defWeeks <= 0 || a.defWeeks > a.maxWeeks {
		a.defWeeks = min(DefaultHistoryWeeks, a.maxWeeks)
	}
	return a
}

// Registry returns the landmark registry the aggregator classifies with.
func (a *Aggregator) Registry() *Registry {
	return a.reg
}

// CurrentWeek merges this week's completed sets with the active program's
// planned sets, one snapshot per muscle group present on either side.
func (a *Aggregator) CurrentWeek(ctx context.Context, userID int64, now time.Time) (*models.CurrentWeekVolume, error) {
	week := WeekOf(now, a.loc)
	today := Date(now, a.loc)

	var completed, planned map[models.MuscleGroup]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.store.CompletedSets(gctx, userID, week.Start, week.End)
		if err != nil {
			return fmt.Errorf("reading completed sets: %w", err)
		}
		completed = fanOutCompleted(rows)
		return nil
	})
	g.Go(func() error {
		var err error
		planned, err = a.activePlanned(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := make(map[models.MuscleGroup]bool, len(completed)+len(planned))
	for mg := range completed {
		groups[mg] = true
	}
	for mg := range planned {
		groups[mg] = true
	}

	snapshots := make([]models.VolumeSnapshot, 0, len(groups))
	for mg := range groups {
		c, p := completed[mg], planned[mg]
		l := a.reg.For(mg)
		zone := ClassifyWithTarget(c, p, l, week, today)
		snapshots = append(snapshots, models.VolumeSnapshot{
			MuscleGroup:          mg,
			CompletedSets:        c,
			PlannedSets:          p,
			RemainingSets:        max(0, p-c),
			MEV:                  l.MEV,
			MAV:                  l.MAV,
			MRV:                  l.MRV,
			CompletionPercentage: CompletionPercentage(c, p),
			Zone:                 zone,
			Warning:              optional(a.reg.Warning(zone, mg)),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].MuscleGroup < snapshots[j].MuscleGroup })
	a.log.Debug("current week volume", "user_id", userID, "week_start", week.StartLabel(), "groups", len(snapshots))

	return &models.CurrentWeekVolume{
		WeekStart:    week.StartLabel(),
		WeekEnd:      week.LastDayLabel(),
		MuscleGroups: snapshots,
	}, nil
}

// History aggregates completed sets per ISO week over the trailing window of
// weeks ending with the week containing now. weeks == 0 selects the default.
// filter == "" returns every muscle group.
func (a *Aggregator) History(ctx context.Context, userID int64, now time.Time, weeks int, filter string) (*models.VolumeHistory, error) {
	if weeks == 0 {
		weeks = a.defWeeks
	}
	if weeks < 1 || weeks > a.maxWeeks {
		return nil, fmt.Errorf("%w: weeks must be between 1 and %d, got %d", models.ErrInvalidArgument, a.maxWeeks, weeks)
	}
	var only models.MuscleGroup
	if filter != "" {
		mg, err := models.ParseMuscleGroup(filter)
		if err != nil {
			return nil, err
		}
		only = mg
	}

	current := WeekOf(now, a.loc)
	first := current.Shift(-(weeks - 1))
	rows, err := a.store.CompletedSets(ctx, userID, first.Start, current.End)
	if err != nil {
		return nil, fmt.Errorf("reading completed sets: %w", err)
	}

	byWeek := map[time.Time]map[models.MuscleGroup]int{}
	for _, r := range rows {
		start := WeekOf(r.Date, time.UTC).Start
		for _, mg := range r.MuscleGroups {
			if only != "" && mg != only {
				continue
			}
			if byWeek[start] == nil {
				byWeek[start] = map[models.MuscleGroup]int{}
			}
			byWeek[start][mg] += r.Sets
		}
	}

	starts := make([]time.Time, 0, len(byWeek))
	for s := range byWeek {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	out := &models.VolumeHistory{Weeks: make([]models.WeekVolume, 0, len(starts))}
	for _, s := range starts {
		wk := models.WeekVolume{WeekStart: s.Format(models.DateLayout)}
		for mg, n := range byWeek[s] {
			l := a.reg.For(mg)
			wk.MuscleGroups = append(wk.MuscleGroups, models.WeeklyMuscleGroupVolume{
				MuscleGroup:   mg,
				CompletedSets: n,
				MEV:           l.MEV,
				MAV:           l.MAV,
				MRV:           l.MRV,
			})
		}
		sort.Slice(wk.MuscleGroups, func(i, j int) bool { return wk.MuscleGroups[i].MuscleGroup < wk.MuscleGroups[j].MuscleGroup })
		out.Weeks = append(out.Weeks, wk)
	}
	return out, nil
}

func (a *Aggregator) activePlanned(ctx context.Context, userID int64) (map[models.MuscleGroup]int, error) {
	p, err := a.store.ActiveProgram(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return map[models.MuscleGroup]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active program: %w", err)
	}
	rows, err := a.store.ProgramExercises(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reading program exercises: %w", err)
	}
	return fanOutPlanned(rows), nil
}

// fanOutCompleted credits every muscle group of an exercise with its sets.
func fanOutCompleted(rows []models.CompletedSetCount) map[models.MuscleGroup]int {
	out := map[models.MuscleGroup]int{}
	for _, r := range rows {
		for _, mg := range r.MuscleGroups {
			out[mg] += r.Sets
		}
	}
	return out
}

func fanOutPlanned(rows []models.ProgramExerciseDetail) map[models.MuscleGroup]int {
	out := map[models.MuscleGroup]int{}
	for _, r := range rows {
		for _, mg := range r.MuscleGroups {
			out[mg] += r.TargetSets
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
