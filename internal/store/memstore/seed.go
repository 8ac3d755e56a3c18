package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// The Seed helpers populate a Store for tests and panic on failure.

func (s *Store) mustTx(fn func(tx store.Tx) error) {
	if err := s.WithTx(context.Background(), fn); err != nil {
		panic(fmt.Sprintf("memstore seed: %v", err))
	}
}

// SeedExercise adds a catalog exercise trained by groups; the first group is
// primary.
func (s *Store) SeedExercise(name string, groups ...models.MuscleGroup) models.Exercise {
	e := models.Exercise{Name: name, MuscleGroups: models.MuscleGroups(groups)}
	s.mustTx(func(tx store.Tx) error { return tx.UpsertExercise(context.Background(), &e) })
	return e
}

// SeedProgram adds a program in phase, week 1.
func (s *Store) SeedProgram(userID int64, name string, phase models.Phase, createdAt time.Time) models.Program {
	p := models.Program{UserID: userID, Name: name, MesocycleWeek: 1, MesocyclePhase: phase, CreatedAt: createdAt}
	s.mustTx(func(tx store.Tx) error { return tx.CreateProgram(context.Background(), &p) })
	return p
}

// SeedDay adds a strength day to a program.
func (s *Store) SeedDay(programID int64, dayOfWeek int) models.ProgramDay {
	d := models.ProgramDay{ProgramID: programID, DayOfWeek: dayOfWeek, DayName: fmt.Sprintf("Day %d", dayOfWeek), DayType: models.DayStrength}
	s.mustTx(func(tx store.Tx) error { return tx.CreateProgramDay(context.Background(), &d) })
	return d
}

// SeedProgramExercise appends an exercise to a day with the given target sets.
func (s *Store) SeedProgramExercise(dayID, exerciseID int64, sets int) models.ProgramExercise {
	var pe models.ProgramExercise
	s.mustTx(func(tx store.Tx) error {
		existing, err := tx.DayExercises(context.Background(), dayID)
		if err != nil {
			return err
		}
		pe = models.ProgramExercise{
			ProgramDayID:   dayID,
			ExerciseID:     exerciseID,
			OrderIndex:     len(existing),
			TargetSets:     sets,
			TargetRepRange: "8-12",
			TargetRIR:      2,
		}
		return tx.CreateProgramExercise(context.Background(), &pe)
	})
	return pe
}

// SeedWorkout adds a workout in status on date with n identical sets per
// exercise.
func (s *Store) SeedWorkout(userID int64, date time.Time, status models.WorkoutStatus, sets map[int64]int) models.Workout {
	w := models.Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Status:    status,
		CreatedAt: date,
	}
	s.mustTx(func(tx store.Tx) error {
		if err := tx.CreateWorkout(context.Background(), &w); err != nil {
			return err
		}
		for exID, n := range sets {
			for i := 0; i < n; i++ {
				set := models.Set{WorkoutID: w.ID, ExerciseID: exID, SetNumber: i + 1, WeightKg: 50, Reps: 10, RIR: 2, Timestamp: date}
				if err := tx.AddSet(context.Background(), &set); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return w
}

// CorruptPhase overwrites a program's phase with an arbitrary value.
func (s *Store) CorruptPhase(programID int64, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.programs[programID]
	p.MesocyclePhase = models.Phase(raw)
	s.st.programs[programID] = p
}
