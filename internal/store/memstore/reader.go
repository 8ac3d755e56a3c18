package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
)

// Reads outside a unit of work see the last committed state.

func (s *Store) ActiveProgram(ctx context.Context, userID int64) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ActiveProgram(ctx, userID)
}

func (s *Store) Program(ctx context.Context, programID int64) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Program(ctx, programID)
}

func (s *Store) ProgramDays(ctx context.Context, programID int64) ([]models.ProgramDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ProgramDays(ctx, programID)
}

func (s *Store) ProgramDay(ctx context.Context, dayID int64) (*models.ProgramDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ProgramDay(ctx, dayID)
}

func (s *Store) ProgramExercises(ctx context.Context, programID int64) ([]models.ProgramExerciseDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ProgramExercises(ctx, programID)
}

func (s *Store) DayExercises(ctx context.Context, dayID int64) ([]models.ProgramExerciseDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.DayExercises(ctx, dayID)
}

func (s *Store) ProgramExercise(ctx context.Context, id int64) (*models.ProgramExerciseDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ProgramExercise(ctx, id)
}

func (s *Store) Exercise(ctx context.Context, id int64) (*models.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Exercise(ctx, id)
}

func (s *Store) Exercises(ctx context.Context) ([]models.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Exercises(ctx)
}

func (s *Store) ExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ExerciseByName(ctx, name)
}

func (s *Store) CompletedSets(ctx context.Context, userID int64, start, end time.Time) ([]models.CompletedSetCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CompletedSets(ctx, userID, start, end)
}

func (s *Store) Workout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Workout(ctx, id)
}

func (s *Store) WorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.WorkoutSets(ctx, workoutID)
}
