package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
)

var timeNow = time.Now

func (q queries) CompletedSets(ctx context.Context, userID int64, start, end time.Time) ([]models.CompletedSetCount, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT e.id, e.muscle_groups, w.date, COUNT(*)
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 JOIN exercises e ON e.id = s.exercise_id
		 WHERE w.user_id = ? AND w.status = 'completed' AND w.date >= ? AND w.date < ?
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
		var groups, date string
		if err := rows.Scan(&c.ExerciseID, &groups, &date, &c.Sets); err != nil {
			return nil, fmt.Errorf("scanning completed sets: %w", err)
		}
		if c.MuscleGroups, err = decodeGroups(groups); err != nil {
			return nil, err
		}
		if c.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q queries) Workout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	var status, date, created string
	err := q.q.QueryRowContext(ctx,
		`SELECT id, user_id, program_day_id, date, status, total_volume_kg, average_rir, created_at
		 FROM workouts WHERE id = ?`, id.String()).
		Scan(&w.ID, &w.UserID, &w.ProgramDayID, &date, &status, &w.TotalVolumeKg, &w.AverageRIR, &created)
	if err != nil {
		return nil, notFound(err, "workout", id)
	}
	w.Status = models.WorkoutStatus(status)
	if w.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTS(created); err != nil {
		return nil, fmt.Errorf("parsing workout created_at: %w", err)
	}
	return &w, nil
}

func (q queries) WorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.Set, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, workout_id, exercise_id, set_number, weight_kg, reps, rir, timestamp
		 FROM sets WHERE workout_id = ? ORDER BY timestamp, id`, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var out []models.Set
	for rows.Next() {
		var s models.Set
		var ts string
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.SetNumber, &s.WeightKg, &s.Reps, &s.RIR, &ts); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		if s.Timestamp, err = parseTS(ts); err != nil {
			return nil, fmt.Errorf("parsing set timestamp: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *tx) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, program_day_id, date, status, total_volume_kg, average_rir, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.UserID, w.ProgramDayID, w.Date.Format(models.DateLayout), string(w.Status),
		w.TotalVolumeKg, w.AverageRIR, formatTS(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

func (t *tx) UpdateWorkout(ctx context.Context, w models.Workout) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE workouts SET status = ?, total_volume_kg = ?, average_rir = ? WHERE id = ?`,
		string(w.Status), w.TotalVolumeKg, w.AverageRIR, w.ID.String())
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	return expectOne(res, "workout", w.ID)
}

func (t *tx) AddSet(ctx context.Context, s *models.Set) error {
	res, err := t.q.ExecContext(ctx,
		`INSERT INTO sets (workout_id, exercise_id, set_number, weight_kg, reps, rir, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.WorkoutID.String(), s.ExerciseID, s.SetNumber, s.WeightKg, s.Reps, s.RIR, formatTS(s.Timestamp))
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	s.ID, err = res.LastInsertId()
	return err
}
