package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestInjectFault(t *testing.T) {
	s := New()
	ex := s.SeedExercise("Bench Press", models.Chest)
	pe := s.SeedProgramExercise(s.SeedDay(s.SeedProgram(1, "P", models.PhaseMEV, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).ID, 0).ID, ex.ID, 4)

	boom := errors.New("boom")
	s.InjectFault("UpdateTargetSets", boom)
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.UpdateTargetSets(context.Background(), []models.TargetSetsUpdate{{ID: pe.ID, TargetSets: 9}})
		return err
	})
	assert.ErrorIs(t, err, boom)

	s.InjectFault("UpdateTargetSets", nil)
	require.NoError(t, s.WithTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.UpdateTargetSets(context.Background(), []models.TargetSetsUpdate{{ID: pe.ID, TargetSets: 9}})
		return err
	}))
	got, err := s.ProgramExercise(context.Background(), pe.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.TargetSets)
}

func TestCorruptPhase(t *testing.T) {
	s := New()
	p := s.SeedProgram(1, "P", models.PhaseMEV, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.CorruptPhase(p.ID, "peak")
	got, err := s.Program(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.MesocyclePhase.Valid())
}
