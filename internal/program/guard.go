package program

import (
	"context"
	"fmt"
	"sort"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// AddInput describes a new program exercise.
type AddInput struct {
	ExerciseID     int64  `json:"exercise_id"`
	TargetSets     int    `json:"target_sets"`
	TargetRepRange string `json:"target_rep_range"`
	TargetRIR      int    `json:"target_rir"`
}

// UpdateInput patches prescription fields; nil fields are left alone.
type UpdateInput struct {
	TargetSets     *int    `json:"target_sets"`
	TargetRepRange *string `json:"target_rep_range"`
	TargetRIR      *int    `json:"target_rir"`
}

// AddExercise appends an exercise to the end of a day.
func (s *Service) AddExercise(ctx context.Context, dayID int64, in AddInput) (*MutationResult, error) {
	if err := models.ValidateTargets(in.TargetSets, in.TargetRepRange, in.TargetRIR); err != nil {
		return nil, err
	}

	var res MutationResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := lockDay(ctx, tx, dayID); err != nil {
			return err
		}
		ex, err := tx.Exercise(ctx, in.ExerciseID)
		if err != nil {
			return err
		}
		existing, err := tx.DayExercises(ctx, dayID)
		if err != nil {
			return fmt.Errorf("reading day exercises: %w", err)
		}

		pe := models.ProgramExercise{
			ProgramDayID:   dayID,
			ExerciseID:     ex.ID,
			OrderIndex:     len(existing),
			TargetSets:     in.TargetSets,
			TargetRepRange: in.TargetRepRange,
			TargetRIR:      in.TargetRIR,
		}
		if err := tx.CreateProgramExercise(ctx, &pe); err != nil {
			return fmt.Errorf("creating program exercise: %w", err)
		}
		if res.ProgramExercise, err = tx.ProgramExercise(ctx, pe.ID); err != nil {
			return err
		}
		res.VolumeWarning, err = s.warnFor(ctx, tx, dayID, primaries(ex.MuscleGroups))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed("add", &res)
	return &res, nil
}

// UpdateExercise changes the prescription of a program exercise.
func (s *Service) UpdateExercise(ctx context.Context, id int64, in UpdateInput) (*MutationResult, error) {
	var res MutationResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := lockExercise(ctx, tx, id)
		if err != nil {
			return err
		}
		pe := cur.ProgramExercise
		if in.TargetSets != nil {
			pe.TargetSets = *in.TargetSets
		}
		if in.TargetRepRange != nil {
			pe.TargetRepRange = *in.TargetRepRange
		}
		if in.TargetRIR != nil {
			pe.TargetRIR = *in.TargetRIR
		}
		if err := models.ValidateTargets(pe.TargetSets, pe.TargetRepRange, pe.TargetRIR); err != nil {
			return err
		}
		if err := tx.UpdateProgramExercise(ctx, pe); err != nil {
			return fmt.Errorf("updating program exercise: %w", err)
		}
		if res.ProgramExercise, err = tx.ProgramExercise(ctx, id); err != nil {
			return err
		}
		res.VolumeWarning, err = s.warnFor(ctx, tx, pe.ProgramDayID, primaries(cur.MuscleGroups))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed("update", &res)
	return &res, nil
}

// DeleteExercise removes a program exercise and closes the gap in its day's
// ordering.
func (s *Service) DeleteExercise(ctx context.Context, id int64) (*MutationResult, error) {
	var res MutationResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := lockExercise(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteProgramExercise(ctx, id); err != nil {
			return fmt.Errorf("deleting program exercise: %w", err)
		}
		rest, err := tx.DayExercises(ctx, cur.ProgramDayID)
		if err != nil {
			return fmt.Errorf("reading day exercises: %w", err)
		}
		if err := tx.SetOrderIndexes(ctx, cur.ProgramDayID, dense(rest)); err != nil {
			return fmt.Errorf("renumbering day: %w", err)
		}
		res.DeletedID = id
		res.VolumeWarning, err = s.warnFor(ctx, tx, cur.ProgramDayID, primaries(cur.MuscleGroups))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed("delete", &res)
	return &res, nil
}

// SwapExercise replaces the exercise of a slot, keeping its prescription and
// position. The new exercise's primary muscle group must be one the old
// exercise trains; otherwise nothing is changed and ErrIncompatibleMutation is
// returned.
func (s *Service) SwapExercise(ctx context.Context, id, newExerciseID int64) (*MutationResult, error) {
	var res MutationResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := lockExercise(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := tx.Exercise(ctx, newExerciseID)
		if err != nil {
			return err
		}
		primary, ok := next.MuscleGroups.Primary()
		if !ok || !cur.MuscleGroups.Contains(primary) {
			return fmt.Errorf("%w: %s (primary %s) cannot replace %s (%v)",
				models.ErrIncompatibleMutation, next.Name, primary, cur.ExerciseName, cur.MuscleGroups.Strings())
		}

		pe := cur.ProgramExercise
		pe.ExerciseID = next.ID
		if err := tx.UpdateProgramExercise(ctx, pe); err != nil {
			return fmt.Errorf("swapping program exercise: %w", err)
		}
		if res.ProgramExercise, err = tx.ProgramExercise(ctx, id); err != nil {
			return err
		}
		res.VolumeWarning, err = s.warnFor(ctx, tx, pe.ProgramDayID, primaries(cur.MuscleGroups, next.MuscleGroups))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed("swap", &res)
	return &res, nil
}

// Reorder moves exercises within one day. Every id must belong to the day and
// every index must be >= 0; otherwise nothing changes. Exercises not named in
// the batch keep their relative order, yielding to moved ones on ties, and the
// day is renumbered 0..n-1.
func (s *Service) Reorder(ctx context.Context, dayID int64, items []models.OrderUpdate) (*MutationResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: reorder needs at least one item", models.ErrInvalidArgument)
	}
	ids := make(map[int64]int, len(items))
	indexes := make(map[int]bool, len(items))
	for _, it := range items {
		if it.NewOrderIndex < 0 {
			return nil, fmt.Errorf("%w: negative order index %d for program exercise %d",
				models.ErrInvalidArgument, it.NewOrderIndex, it.ProgramExerciseID)
		}
		if _, dup := ids[it.ProgramExerciseID]; dup {
			return nil, fmt.Errorf("%w: program exercise %d listed twice", models.ErrInvalidArgument, it.ProgramExerciseID)
		}
		if indexes[it.NewOrderIndex] {
			return nil, fmt.Errorf("%w: order index %d assigned twice", models.ErrInvalidArgument, it.NewOrderIndex)
		}
		ids[it.ProgramExerciseID] = it.NewOrderIndex
		indexes[it.NewOrderIndex] = true
	}

	var res MutationResult
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := lockDay(ctx, tx, dayID); err != nil {
			return err
		}
		current, err := tx.DayExercises(ctx, dayID)
		if err != nil {
			return fmt.Errorf("reading day exercises: %w", err)
		}
		inDay := make(map[int64]bool, len(current))
		for _, pe := range current {
			inDay[pe.ID] = true
		}
		for id := range ids {
			if !inDay[id] {
				return fmt.Errorf("%w: program exercise %d does not belong to day %d", models.ErrInvalidArgument, id, dayID)
			}
		}

		type slot struct {
			pe    models.ProgramExerciseDetail
			index int
			moved bool
		}
		slots := make([]slot, len(current))
		var groups []models.MuscleGroups
		for i, pe := range current {
			idx, moved := ids[pe.ID]
			if !moved {
				idx = pe.OrderIndex
			} else {
				groups = append(groups, pe.MuscleGroups)
			}
			slots[i] = slot{pe: pe, index: idx, moved: moved}
		}
		sort.SliceStable(slots, func(i, j int) bool {
			if slots[i].index != slots[j].index {
				return slots[i].index < slots[j].index
			}
			if slots[i].moved != slots[j].moved {
				return slots[i].moved
			}
			return slots[i].pe.ID < slots[j].pe.ID
		})
		ordered := make([]models.ProgramExerciseDetail, len(slots))
		for i, sl := range slots {
			ordered[i] = sl.pe
		}
		if err := tx.SetOrderIndexes(ctx, dayID, dense(ordered)); err != nil {
			return fmt.Errorf("writing order indexes: %w", err)
		}
		if res.Exercises, err = tx.DayExercises(ctx, dayID); err != nil {
			return err
		}
		res.VolumeWarning, err = s.warnFor(ctx, tx, dayID, primaries(groups...))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed("reorder", &res)
	return &res, nil
}

// dense assigns 0..n-1 in slice order.
func dense(rows []models.ProgramExerciseDetail) []models.OrderUpdate {
	out := make([]models.OrderUpdate, len(rows))
	for i, r := range rows {
		out[i] = models.OrderUpdate{ProgramExerciseID: r.ID, NewOrderIndex: i}
	}
	return out
}

// lockDay takes the row lock of the program owning dayID. Phase advances
// hold the same lock while rescaling, so a mutation never commits between
// an advance's read of the target sets and its write.
func lockDay(ctx context.Context, tx store.Tx, dayID int64) error {
	day, err := tx.ProgramDay(ctx, dayID)
	if err != nil {
		return err
	}
	_, err = tx.LockProgram(ctx, day.ProgramID)
	return err
}

// lockExercise locks the owning program and then reads the slot, so the row
// returned reflects any advance that committed while waiting for the lock.
func lockExercise(ctx context.Context, tx store.Tx, id int64) (*models.ProgramExerciseDetail, error) {
	cur, err := tx.ProgramExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lockDay(ctx, tx, cur.ProgramDayID); err != nil {
		return nil, err
	}
	return tx.ProgramExercise(ctx, id)
}
