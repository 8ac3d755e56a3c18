// Package store defines the storage collaborator the engine packages consume.
// Implementations live in internal/storage (PostgreSQL), internal/storage/sqlite
// and store/memstore (in-memory, for tests).
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
)

// Reader is the read side. Missing single rows are reported as
// models.ErrNotFound.
type Reader interface {
	// ActiveProgram returns the user's most recently created program.
	ActiveProgram(ctx context.Context, userID int64) (*models.Program, error)
	Program(ctx context.Context, programID int64) (*models.Program, error)
	ProgramDays(ctx context.Context, programID int64) ([]models.ProgramDay, error)
	ProgramDay(ctx context.Context, dayID int64) (*models.ProgramDay, error)
	// ProgramExercises returns every exercise of every day under the program,
	// ordered by day then order_index.
	ProgramExercises(ctx context.Context, programID int64) ([]models.ProgramExerciseDetail, error)
	// DayExercises returns a day's exercises ordered by order_index.
	DayExercises(ctx context.Context, dayID int64) ([]models.ProgramExerciseDetail, error)
	ProgramExercise(ctx context.Context, id int64) (*models.ProgramExerciseDetail, error)
	Exercise(ctx context.Context, id int64) (*models.Exercise, error)
	Exercises(ctx context.Context) ([]models.Exercise, error)
	ExerciseByName(ctx context.Context, name string) (*models.Exercise, error)
	// CompletedSets counts sets per (exercise, workout date) for completed
	// workouts dated in [start, end).
	CompletedSets(ctx context.Context, userID int64, start, end time.Time) ([]models.CompletedSetCount, error)
	Workout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	WorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.Set, error)
}

// Tx is a unit of work. Reads through a Tx observe its uncommitted writes.
type Tx interface {
	Reader

	// LockProgram reads the program row and holds it until the unit of work
	// ends, serializing concurrent writers of the same program.
	LockProgram(ctx context.Context, programID int64) (*models.Program, error)
	// UpdateTargetSets rewrites target_sets and returns the rows touched.
	UpdateTargetSets(ctx context.Context, updates []models.TargetSetsUpdate) (int, error)
	SetProgramPhase(ctx context.Context, programID int64, phase models.Phase, week int) error

	CreateProgram(ctx context.Context, p *models.Program) error
	CreateProgramDay(ctx context.Context, d *models.ProgramDay) error
	CreateProgramExercise(ctx context.Context, pe *models.ProgramExercise) error
	UpdateProgramExercise(ctx context.Context, pe models.ProgramExercise) error
	DeleteProgramExercise(ctx context.Context, id int64) error
	SetOrderIndexes(ctx context.Context, dayID int64, updates []models.OrderUpdate) error

	CreateWorkout(ctx context.Context, w *models.Workout) error
	UpdateWorkout(ctx context.Context, w models.Workout) error
	AddSet(ctx context.Context, s *models.Set) error

	UpsertExercise(ctx context.Context, e *models.Exercise) error
	GetOrCreateUser(ctx context.Context, login, displayName string) (int64, error)
}

// Store is a Reader that can open units of work.
type Store interface {
	Reader
	// WithTx runs fn in one transaction: committed when fn returns nil,
	// rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
