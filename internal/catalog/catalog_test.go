package catalog

import (
	"context"
	"testing"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinIsValid(t *testing.T) {
	exercises, err := Builtin()
	require.NoError(t, err)
	require.NotEmpty(t, exercises)

	covered := map[models.MuscleGroup]bool{}
	for _, e := range exercises {
		require.NotEmpty(t, e.MuscleGroups, e.Name)
		for _, g := range e.MuscleGroups {
			covered[g] = true
		}
	}
	for _, g := range models.AllMuscleGroups {
		assert.True(t, covered[g], "no built-in exercise trains %s", g)
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	tests := map[string]string{
		"unknown group": "exercises:\n  - name: Bench\n    muscle_groups: [pecs]\n",
		"no groups":     "exercises:\n  - name: Bench\n",
		"no name":       "exercises:\n  - muscle_groups: [chest]\n",
		"duplicate":     "exercises:\n  - name: Bench\n    muscle_groups: [chest]\n  - name: bench\n    muscle_groups: [chest]\n",
		"not yaml":      "exercises: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseKeepsPrimaryFirst(t *testing.T) {
	got, err := Parse([]byte("exercises:\n  - name: Dips\n    muscle_groups: [triceps, chest, triceps]\n    equipment: bodyweight\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.MuscleGroups{models.Triceps, models.Chest}, got[0].MuscleGroups)
	assert.Equal(t, "bodyweight", got[0].Equipment)
}

func TestSyncIsIdempotent(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	exercises, err := Builtin()
	require.NoError(t, err)
	n, err := Sync(ctx, s, exercises)
	require.NoError(t, err)
	assert.Equal(t, len(exercises), n)

	again, err := Builtin()
	require.NoError(t, err)
	_, err = Sync(ctx, s, again)
	require.NoError(t, err)

	stored, err := s.Exercises(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(exercises))

	bench, err := s.ExerciseByName(ctx, "bench press")
	require.NoError(t, err)
	assert.Equal(t, models.Chest, bench.MuscleGroups[0])
}
