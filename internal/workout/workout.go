// Package workout records training sessions and the sets performed in them.
// Only sets of completed workouts count toward volume.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/volume"
)

// Service manages workouts.
type Service struct {
	store store.Store
	loc   *time.Location
	log   *slog.Logger
}

// NewService creates a workout Service. loc decides which calendar day a
// workout without an explicit date falls on and must match the week
// location of the volume aggregator; nil means UTC.
func NewService(s store.Store, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: s, loc: loc, log: log}
}

// CreateInput describes a planned workout. Date defaults to today.
type CreateInput struct {
	ProgramDayID *int64 `json:"program_day_id"`
	Date         string `json:"date"`
}

// SetInput describes one performed set.
type SetInput struct {
	ExerciseID int64   `json:"exercise_id"`
	WeightKg   float64 `json:"weight_kg"`
	Reps       int     `json:"reps"`
	RIR        float64 `json:"rir"`
}

// Detail is a workout with its sets.
type Detail struct {
	models.Workout
	Sets []models.Set `json:"sets"`
}

// Create stores a not_started workout for userID.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput, now time.Time) (*models.Workout, error) {
	date := volume.Date(now, s.loc)
	if in.Date != "" {
		d, err := time.Parse(models.DateLayout, in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", models.ErrInvalidArgument, in.Date)
		}
		date = d
	}

	w := models.Workout{
		ID:           uuid.New(),
		UserID:       userID,
		ProgramDayID: in.ProgramDayID,
		Date:         date,
		Status:       models.WorkoutNotStarted,
		CreatedAt:    now.UTC(),
	}
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if in.ProgramDayID != nil {
			day, err := tx.ProgramDay(ctx, *in.ProgramDayID)
			if err != nil {
				return err
			}
			p, err := tx.Program(ctx, day.ProgramID)
			if err != nil {
				return err
			}
			if p.UserID != userID {
				return fmt.Errorf("%w: program day %d", models.ErrNotFound, day.ID)
			}
		}
		if err := tx.CreateWorkout(ctx, &w); err != nil {
			return fmt.Errorf("creating workout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Get returns a workout owned by userID with its sets.
func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (*Detail, error) {
	w, err := owned(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.WorkoutSets(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading sets: %w", err)
	}
	if sets == nil {
		sets = []models.Set{}
	}
	return &Detail{Workout: *w, Sets: sets}, nil
}

// Transition moves a workout to next. Completing computes total volume and
// average RIR from the logged sets.
func (s *Service) Transition(ctx context.Context, userID int64, id uuid.UUID, next models.WorkoutStatus) (*models.Workout, error) {
	var out models.Workout
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		w, err := owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if !w.Status.CanTransition(next) {
			return fmt.Errorf("%w: workout cannot move from %s to %s", models.ErrInvalidArgument, w.Status, next)
		}
		w.Status = next
		if next == models.WorkoutCompleted {
			sets, err := tx.WorkoutSets(ctx, id)
			if err != nil {
				return fmt.Errorf("reading sets: %w", err)
			}
			w.TotalVolumeKg, w.AverageRIR = Summarize(sets)
		}
		if err := tx.UpdateWorkout(ctx, *w); err != nil {
			return fmt.Errorf("updating workout: %w", err)
		}
		out = *w
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("workout status changed", "workout_id", id, "status", string(next))
	return &out, nil
}

// LogSet appends a set to an in-progress workout.
func (s *Service) LogSet(ctx context.Context, userID int64, workoutID uuid.UUID, in SetInput, now time.Time) (*models.Set, error) {
	if in.WeightKg < 0 || in.Reps < 0 {
		return nil, fmt.Errorf("%w: weight and reps must not be negative", models.ErrInvalidArgument)
	}
	if in.RIR < 0 || in.RIR > 10 {
		return nil, fmt.Errorf("%w: rir %.1f outside [0,10]", models.ErrInvalidArgument, in.RIR)
	}

	var set models.Set
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		w, err := owned(ctx, tx, userID, workoutID)
		if err != nil {
			return err
		}
		if w.Status != models.WorkoutInProgress {
			return fmt.Errorf("%w: sets can only be logged while a workout is in progress (status %s)",
				models.ErrInvalidArgument, w.Status)
		}
		if _, err := tx.Exercise(ctx, in.ExerciseID); err != nil {
			return err
		}
		existing, err := tx.WorkoutSets(ctx, workoutID)
		if err != nil {
			return fmt.Errorf("reading sets: %w", err)
		}
		number := 1
		for _, e := range existing {
			if e.ExerciseID == in.ExerciseID {
				number++
			}
		}
		set = models.Set{
			WorkoutID:  workoutID,
			ExerciseID: in.ExerciseID,
			SetNumber:  number,
			WeightKg:   in.WeightKg,
			Reps:       in.Reps,
			RIR:        in.RIR,
			Timestamp:  now.UTC(),
		}
		if err := tx.AddSet(ctx, &set); err != nil {
			return fmt.Errorf("adding set: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// Summarize returns the tonnage of sets (sum of weight x reps) and their
// average RIR, which is nil for an empty workout.
func Summarize(sets []models.Set) (float64, *float64) {
	if len(sets) == 0 {
		return 0, nil
	}
	var total, rir float64
	for _, s := range sets {
		total += s.WeightKg * float64(s.Reps)
		rir += s.RIR
	}
	avg := math.Round(rir/float64(len(sets))*100) / 100
	return math.Round(total*100) / 100, &avg
}

func owned(ctx context.Context, r store.Reader, userID int64, id uuid.UUID) (*models.Workout, error) {
	w, err := r.Workout(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, fmt.Errorf("%w: workout %s", models.ErrNotFound, id)
	}
	return w, nil
}
