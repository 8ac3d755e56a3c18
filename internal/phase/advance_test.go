package phase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedTransition struct {
	from, to models.Phase
	manual   bool
}

type recorder struct {
	mu    sync.Mutex
	calls []recordedTransition
}

func (r *recorder) PhaseTransition(from, to models.Phase, manual bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedTransition{from, to, manual})
}

// seedProgram builds a one-day program whose exercises carry sets, in order.
func seedProgram(t *testing.T, s *memstore.Store, phase models.Phase, sets ...int) (models.Program, []int64) {
	t.Helper()
	p := s.SeedProgram(1, "Block", phase, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	day := s.SeedDay(p.ID, 0)
	ids := make([]int64, len(sets))
	for i, n := range sets {
		ex := s.SeedExercise("Exercise "+string(rune('A'+i)), models.Chest)
		ids[i] = s.SeedProgramExercise(day.ID, ex.ID, n).ID
	}
	return p, ids
}

func targetSets(t *testing.T, s *memstore.Store, programID int64) []int {
	t.Helper()
	rows, err := s.ProgramExercises(context.Background(), programID)
	require.NoError(t, err)
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.TargetSets
	}
	return out
}

func programState(t *testing.T, s *memstore.Store, programID int64) *models.Program {
	t.Helper()
	p, err := s.Program(context.Background(), programID)
	require.NoError(t, err)
	return p
}

func newEngine(s *memstore.Store, obs Observer) *Engine {
	return NewEngine(s, obs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAdvanceAutomatic(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 4, 3)
	rec := &recorder{}

	tr, err := newEngine(s, rec).Advance(context.Background(), p.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseMEV, tr.PreviousPhase)
	assert.Equal(t, models.PhaseMAV, tr.NewPhase)
	assert.Equal(t, 1.2, tr.VolumeMultiplier)
	assert.Equal(t, 3, tr.ExercisesUpdated)

	assert.Equal(t, []int{5, 5, 4}, targetSets(t, s, p.ID))
	st := programState(t, s, p.ID)
	assert.Equal(t, models.PhaseMAV, st.MesocyclePhase)
	assert.Equal(t, 1, st.MesocycleWeek)
	assert.Equal(t, []recordedTransition{{models.PhaseMEV, models.PhaseMAV, false}}, rec.calls)
}

func TestAdvanceFullCycleGrowsVolume(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 4, 3)
	e := newEngine(s, nil)

	want := [][]int{{5, 5, 4}, {6, 6, 5}, {3, 3, 3}, {6, 6, 6}}
	for i := range 4 {
		_, err := e.Advance(context.Background(), p.ID, false, "")
		require.NoError(t, err)
		assert.Equal(t, want[i], targetSets(t, s, p.ID), "after advance %d", i+1)
	}
	assert.Equal(t, models.PhaseMEV, programState(t, s, p.ID).MesocyclePhase)

	before := []int{4, 4, 3}
	for i, n := range targetSets(t, s, p.ID) {
		assert.Greater(t, n, before[i])
	}
}

func TestAdvanceManualSamePhaseResetsWeek(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMAV, 6, 3)
	require.NoError(t, s.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.SetProgramPhase(context.Background(), p.ID, models.PhaseMAV, 3)
	}))
	rec := &recorder{}

	tr, err := newEngine(s, rec).Advance(context.Background(), p.ID, true, "mav")
	require.NoError(t, err)
	assert.Equal(t, 1.0, tr.VolumeMultiplier)
	assert.Equal(t, models.PhaseMAV, tr.NewPhase)
	assert.Equal(t, []int{6, 3}, targetSets(t, s, p.ID))
	assert.Equal(t, 1, programState(t, s, p.ID).MesocycleWeek)
	require.Len(t, rec.calls, 1)
	assert.True(t, rec.calls[0].manual)
}

func TestAdvanceManualJump(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 4, 3)

	tr, err := newEngine(s, nil).Advance(context.Background(), p.ID, true, "mrv")
	require.NoError(t, err)
	assert.InDelta(t, 1.38, tr.VolumeMultiplier, 1e-9)
	assert.Equal(t, []int{6, 6, 4}, targetSets(t, s, p.ID))
	assert.Equal(t, models.PhaseMRV, programState(t, s, p.ID).MesocyclePhase)
}

func TestAdvanceManualCanonicalEdgeUsesEdgeMultiplier(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMRV, 8)

	tr, err := newEngine(s, nil).Advance(context.Background(), p.ID, true, "deload")
	require.NoError(t, err)
	assert.Equal(t, 0.5, tr.VolumeMultiplier)
	assert.Equal(t, []int{4}, targetSets(t, s, p.ID))
}

func TestAdvanceRejectsBadInput(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4)
	e := newEngine(s, nil)

	_, err := e.Advance(context.Background(), p.ID, true, "peak")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = e.Advance(context.Background(), p.ID, true, "")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = e.Advance(context.Background(), p.ID+999, false, "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, []int{4}, targetSets(t, s, p.ID))
	assert.Equal(t, models.PhaseMEV, programState(t, s, p.ID).MesocyclePhase)
}

func TestAdvanceCorruptedPhase(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 3)
	s.CorruptPhase(p.ID, "hypertrophy")
	rec := &recorder{}
	e := newEngine(s, rec)

	_, err := e.Advance(context.Background(), p.ID, false, "")
	assert.ErrorIs(t, err, models.ErrInvariantViolation)

	_, err = e.Advance(context.Background(), p.ID, true, "mav")
	assert.ErrorIs(t, err, models.ErrInvariantViolation)

	assert.Equal(t, []int{4, 3}, targetSets(t, s, p.ID))
	assert.Empty(t, rec.calls)
}

func TestAdvanceRollsBackOnFailure(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 4, 3)
	s.InjectFault("SetProgramPhase", errors.New("disk full"))
	rec := &recorder{}

	_, err := newEngine(s, rec).Advance(context.Background(), p.ID, false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, []int{4, 4, 3}, targetSets(t, s, p.ID))
	assert.Equal(t, models.PhaseMEV, programState(t, s, p.ID).MesocyclePhase)
	assert.Empty(t, rec.calls)

	s.InjectFault("SetProgramPhase", nil)
	_, err = newEngine(s, rec).Advance(context.Background(), p.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5, 4}, targetSets(t, s, p.ID))
}

func TestAdvanceConcurrentCallsSerialize(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4, 4, 3)
	e := newEngine(s, nil)

	var wg sync.WaitGroup
	results := make([]*Transition, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, err := e.Advance(context.Background(), p.ID, false, "")
			assert.NoError(t, err)
			results[i] = tr
		}()
	}
	wg.Wait()

	assert.Equal(t, models.PhaseMRV, programState(t, s, p.ID).MesocyclePhase)
	assert.Equal(t, []int{6, 6, 5}, targetSets(t, s, p.ID))
	seen := map[models.Phase]bool{}
	for _, tr := range results {
		require.NotNil(t, tr)
		seen[tr.PreviousPhase] = true
	}
	assert.Equal(t, map[models.Phase]bool{models.PhaseMEV: true, models.PhaseMAV: true}, seen)
}

func TestNewEngineWithoutLogger(t *testing.T) {
	s := memstore.New()
	p, _ := seedProgram(t, s, models.PhaseMEV, 4)

	tr, err := NewEngine(s, nil, nil).Advance(context.Background(), p.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseMAV, tr.NewPhase)
	assert.Equal(t, []int{5}, targetSets(t, s, p.ID))
}
