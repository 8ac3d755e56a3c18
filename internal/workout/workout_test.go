package workout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store/memstore"
	"github.com/meltforce/periodix/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC)

func newService() (*Service, *memstore.Store) {
	s := memstore.New()
	return NewService(s, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil))), s
}

func TestWorkoutLifecycle(t *testing.T) {
	svc, s := newService()
	bench := s.SeedExercise("Bench Press", models.Chest, models.Triceps)
	ctx := context.Background()

	w, err := svc.Create(ctx, 1, CreateInput{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.WorkoutNotStarted, w.Status)
	assert.Equal(t, "2026-03-04", w.Date.Format(models.DateLayout))

	_, err = svc.LogSet(ctx, 1, w.ID, SetInput{ExerciseID: bench.ID, WeightKg: 80, Reps: 8, RIR: 2}, now)
	assert.ErrorIs(t, err, models.ErrInvalidArgument, "sets need an in-progress workout")

	_, err = svc.Transition(ctx, 1, w.ID, models.WorkoutInProgress)
	require.NoError(t, err)

	first, err := svc.LogSet(ctx, 1, w.ID, SetInput{ExerciseID: bench.ID, WeightKg: 80, Reps: 8, RIR: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SetNumber)
	second, err := svc.LogSet(ctx, 1, w.ID, SetInput{ExerciseID: bench.ID, WeightKg: 80, Reps: 6, RIR: 1}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SetNumber)

	done, err := svc.Transition(ctx, 1, w.ID, models.WorkoutCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.WorkoutCompleted, done.Status)
	assert.Equal(t, 1120.0, done.TotalVolumeKg)
	require.NotNil(t, done.AverageRIR)
	assert.Equal(t, 1.5, *done.AverageRIR)

	_, err = svc.Transition(ctx, 1, w.ID, models.WorkoutCancelled)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	d, err := svc.Get(ctx, 1, w.ID)
	require.NoError(t, err)
	assert.Len(t, d.Sets, 2)
}

func TestWorkoutOwnership(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	w, err := svc.Create(ctx, 1, CreateInput{Date: "2026-03-01"}, now)
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, w.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Transition(ctx, 2, w.ID, models.WorkoutInProgress)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(ctx, 1, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, s := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{Date: "04.03.2026"}, now)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	p := s.SeedProgram(2, "Theirs", models.PhaseMEV, now)
	day := s.SeedDay(p.ID, 0)
	_, err = svc.Create(ctx, 1, CreateInput{ProgramDayID: &day.ID}, now)
	assert.ErrorIs(t, err, models.ErrNotFound)

	w, err := svc.Create(ctx, 2, CreateInput{ProgramDayID: &day.ID}, now)
	require.NoError(t, err)
	require.NotNil(t, w.ProgramDayID)
	assert.Equal(t, day.ID, *w.ProgramDayID)
}

func TestLogSetValidation(t *testing.T) {
	svc, s := newService()
	ctx := context.Background()
	bench := s.SeedExercise("Bench Press", models.Chest)
	w, err := svc.Create(ctx, 1, CreateInput{}, now)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, 1, w.ID, models.WorkoutInProgress)
	require.NoError(t, err)

	bad := []SetInput{
		{ExerciseID: bench.ID, WeightKg: -1, Reps: 5},
		{ExerciseID: bench.ID, WeightKg: 10, Reps: -5},
		{ExerciseID: bench.ID, WeightKg: 10, Reps: 5, RIR: 11},
	}
	for _, in := range bad {
		_, err := svc.LogSet(ctx, 1, w.ID, in, now)
		assert.ErrorIs(t, err, models.ErrInvalidArgument, "%+v", in)
	}
	_, err = svc.LogSet(ctx, 1, w.ID, SetInput{ExerciseID: 999, WeightKg: 10, Reps: 5}, now)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	total, avg := Summarize(nil)
	assert.Zero(t, total)
	assert.Nil(t, avg)

	total, avg = Summarize([]models.Set{
		{WeightKg: 102.5, Reps: 6, RIR: 0},
		{WeightKg: 100, Reps: 6, RIR: 1},
		{WeightKg: 0, Reps: 12, RIR: 1},
	})
	assert.Equal(t, 1215.0, total)
	require.NotNil(t, avg)
	assert.Equal(t, 0.67, *avg)
}

func TestDefaultDateFollowsWeekLocation(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	s := memstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(s, la, log)
	bench := s.SeedExercise("Bench Press", models.Chest)
	ctx := context.Background()

	// Sunday 19:00 in Los Angeles, already Monday in UTC.
	sundayEvening := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)

	w, err := svc.Create(ctx, 1, CreateInput{}, sundayEvening)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", w.Date.Format(models.DateLayout))

	_, err = svc.Transition(ctx, 1, w.ID, models.WorkoutInProgress)
	require.NoError(t, err)
	_, err = svc.LogSet(ctx, 1, w.ID, SetInput{ExerciseID: bench.ID, WeightKg: 80, Reps: 8, RIR: 2}, sundayEvening)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, 1, w.ID, models.WorkoutCompleted)
	require.NoError(t, err)

	agg := volume.NewAggregator(s, volume.DefaultRegistry(), volume.Options{Location: la}, log)
	cur, err := agg.CurrentWeek(ctx, 1, sundayEvening)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", cur.WeekStart)
	var chest int
	for _, g := range cur.MuscleGroups {
		if g.MuscleGroup == models.Chest {
			chest = g.CompletedSets
		}
	}
	assert.Equal(t, 1, chest)
}
