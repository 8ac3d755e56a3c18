package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/periodix/internal/models"
)

// CompletedSets counts sets per exercise and workout date for the user's
// completed workouts in [start, end).
func (q queries) CompletedSets(ctx context.Context, userID int64, start, end time.Time) ([]models.CompletedSetCount, error) {
	rows, err := q.q.Query(ctx,
		`SELECT e.id, e.muscle_groups, w.date, COUNT(*)::int
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 JOIN exercises e ON e.id = s.exercise_id
		 WHERE w.user_id = $1 AND w.status = 'completed'
		   AND w.date >= $2::date AND w.date < $3::date
		 GROUP BY e.id, w.date
		 ORDER BY w.date, e.id`,
		userID, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}
	defer rows.Close()

	var out []models.CompletedSetCount
	for rows.Next() {
		var c models.CompletedSetCount
		var groups []string
		if err := rows.Scan(&c.ExerciseID, &groups, &c.Date, &c.Sets); err != nil {
			return nil, fmt.Errorf("scanning completed sets: %w", err)
		}
		if c.MuscleGroups, err = storedGroups(groups); err != nil {
			return nil, err
		}
		c.Date = dateOnly(c.Date)
		out = append(out, c)
	}
	return out, rows.Err()
}

// dateOnly normalizes a DATE column to UTC midnight.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (q queries) Workout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	var status string
	err := q.q.QueryRow(ctx,
		`SELECT id, user_id, program_day_id, date, status, total_volume_kg, average_rir, created_at
		 FROM workouts WHERE id = $1`, id).
		Scan(&w.ID, &w.UserID, &w.ProgramDayID, &w.Date, &status, &w.TotalVolumeKg, &w.AverageRIR, &w.CreatedAt)
	if err != nil {
		return nil, notFound(err, "workout", id)
	}
	w.Status = models.WorkoutStatus(status)
	w.Date = dateOnly(w.Date)
	return &w, nil
}

func (q queries) WorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.Set, error) {
	rows, err := q.q.Query(ctx,
		`SELECT id, workout_id, exercise_id, set_number, weight_kg, reps, rir, timestamp
		 FROM sets WHERE workout_id = $1 ORDER BY timestamp, id`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Set, error) {
		var s models.Set
		err := row.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.SetNumber, &s.WeightKg, &s.Reps, &s.RIR, &s.Timestamp)
		return s, err
	})
}

func (t *tx) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := t.q.Exec(ctx,
		`INSERT INTO workouts (id, user_id, program_day_id, date, status, total_volume_kg, average_rir, created_at)
		 VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)`,
		w.ID, w.UserID, w.ProgramDayID, w.Date.Format(models.DateLayout), string(w.Status),
		w.TotalVolumeKg, w.AverageRIR, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

func (t *tx) UpdateWorkout(ctx context.Context, w models.Workout) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE workouts SET status = $2, total_volume_kg = $3, average_rir = $4 WHERE id = $1`,
		w.ID, string(w.Status), w.TotalVolumeKg, w.AverageRIR)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %s: %w", w.ID, models.ErrNotFound)
	}
	return nil
}

func (t *tx) AddSet(ctx context.Context, s *models.Set) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO sets (workout_id, exercise_id, set_number, weight_kg, reps, rir, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		s.WorkoutID, s.ExerciseID, s.SetNumber, s.WeightKg, s.Reps, s.RIR, s.Timestamp).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	return nil
}
