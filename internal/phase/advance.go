package phase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// Transition summarizes one phase change.
type Transition struct {
	PreviousPhase    models.Phase `json:"previous_phase"`
	NewPhase         models.Phase `json:"new_phase"`
	VolumeMultiplier float64      `json:"volume_multiplier"`
	ExercisesUpdated int          `json:"exercises_updated"`
}

// Observer is notified after a transition commits.
type Observer interface {
	PhaseTransition(from, to models.Phase, manual bool)
}

// Engine runs phase transitions against a store.
type Engine struct {
	store    store.Store
	log      *slog.Logger
	observer Observer
}

// NewEngine creates an Engine. observer and log may be nil.
func NewEngine(s store.Store, observer Observer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: s, observer: observer, log: log}
}

// Advance moves the program to its next phase, or to target when manual is
// set. Every program exercise is rescaled and the program row updated in one
// unit of work that holds the program row lock, so concurrent calls on the
// same program apply one after the other and each sees the previous result.
func (e *Engine) Advance(ctx context.Context, programID int64, manual bool, target string) (*Transition, error) {
	var targetPhase models.Phase
	if manual {
		if target == "" {
			return nil, fmt.Errorf("%w: manual advance requires a target phase", models.ErrInvalidArgument)
		}
		p, err := models.ParsePhase(target)
		if err != nil {
			return nil, err
		}
		targetPhase = p
	}

	var t Transition
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		program, err := tx.LockProgram(ctx, programID)
		if err != nil {
			return fmt.Errorf("locking program %d: %w", programID, err)
		}

		previous := program.MesocyclePhase
		var next models.Phase
		var multiplier float64
		if manual {
			next = targetPhase
			multiplier, err = Multiplier(previous, targetPhase)
		} else {
			next, multiplier, err = Next(previous)
		}
		if err != nil {
			if errors.Is(err, models.ErrInvariantViolation) {
				e.log.Error("refusing phase advance on corrupted program",
					"program_id", programID, "stored_phase", string(previous), "manual", manual, "error", err)
			}
			return err
		}

		rows, err := tx.ProgramExercises(ctx, programID)
		if err != nil {
			return fmt.Errorf("reading program exercises: %w", err)
		}
		updates := make([]models.TargetSetsUpdate, len(rows))
		for i, r := range rows {
			updates[i] = models.TargetSetsUpdate{ID: r.ID, TargetSets: Rescale(r.TargetSets, multiplier)}
		}

		n, err := tx.UpdateTargetSets(ctx, updates)
		if err != nil {
			return fmt.Errorf("rescaling target sets: %w", err)
		}
		if n != len(updates) {
			return fmt.Errorf("rescaling target sets: updated %d of %d rows", n, len(updates))
		}
		if err := tx.SetProgramPhase(ctx, programID, next, 1); err != nil {
			return fmt.Errorf("setting program phase: %w", err)
		}

		t = Transition{
			PreviousPhase:    previous,
			NewPhase:         next,
			VolumeMultiplier: multiplier,
			ExercisesUpdated: n,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("phase advanced",
		"program_id", programID,
		"from", string(t.PreviousPhase),
		"to", string(t.NewPhase),
		"multiplier", t.VolumeMultiplier,
		"exercises_updated", t.ExercisesUpdated,
		"manual", manual,
	)
	if e.observer != nil {
		e.observer.PhaseTransition(t.PreviousPhase, t.NewPhase, manual)
	}
	return &t, nil
}
