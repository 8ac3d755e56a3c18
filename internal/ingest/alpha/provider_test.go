package alpha

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestStoresCompletedWorkouts(t *testing.T) {
	s := memstore.New()
	s.SeedExercise("Hack Squats", models.Quads, models.Glutes)
	s.SeedExercise("Bench Press", models.Chest, models.Triceps)
	p := NewProvider(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	res, err := p.Ingest(ctx, strings.NewReader(sampleCSV), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SessionsReceived)
	assert.Equal(t, 2, res.WorkoutsInserted)
	assert.Equal(t, 20, res.SetsReceived)
	assert.Equal(t, 6, res.SetsInserted)
	assert.Len(t, res.UnknownExercises, 5)
	assert.Contains(t, res.UnknownExercises, "Sumo Squats")

	sessions, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	w, err := s.Workout(ctx, SessionID(1, sessions[1]))
	require.NoError(t, err)
	assert.Equal(t, models.WorkoutCompleted, w.Status)
	assert.Equal(t, "2026-02-17", w.Date.Format(models.DateLayout))
	assert.Equal(t, 1830.0, w.TotalVolumeKg)

	start := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	counts, err := s.CompletedSets(ctx, 1, start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	total := 0
	for _, c := range counts {
		total += c.Sets
	}
	assert.Equal(t, 6, total)
}

func TestIngestIsIdempotent(t *testing.T) {
	s := memstore.New()
	s.SeedExercise("Bench Press", models.Chest)
	p := NewProvider(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := p.Ingest(ctx, strings.NewReader(sampleCSV), 1)
	require.NoError(t, err)
	res, err := p.Ingest(ctx, strings.NewReader(sampleCSV), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SessionsSkipped)
	assert.Zero(t, res.WorkoutsInserted)
	assert.Zero(t, res.SetsInserted)

	// Another user importing the same export gets their own workouts.
	res, err = p.Ingest(ctx, strings.NewReader(sampleCSV), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.WorkoutsInserted)
}
