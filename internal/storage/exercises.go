package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/periodix/internal/models"
)

const exerciseColumns = `id, name, muscle_groups, equipment, movement_pattern`

func scanExercise(row pgx.Row) (*models.Exercise, error) {
	var e models.Exercise
	var groups []string
	if err := row.Scan(&e.ID, &e.Name, &groups, &e.Equipment, &e.MovementPattern); err != nil {
		return nil, err
	}
	g, err := storedGroups(groups)
	if err != nil {
		return nil, err
	}
	e.MuscleGroups = g
	return &e, nil
}

func (q queries) Exercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := scanExercise(q.q.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, models.ErrInvariantViolation) {
			return nil, err
		}
		return nil, notFound(err, "exercise", id)
	}
	return e, nil
}

// ExerciseByName looks an exercise up case-insensitively.
func (q queries) ExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	e, err := scanExercise(q.q.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE lower(name) = lower($1)`, name))
	if err != nil {
		if errors.Is(err, models.ErrInvariantViolation) {
			return nil, err
		}
		return nil, notFound(err, "exercise", name)
	}
	return e, nil
}

func (q queries) Exercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := q.q.Query(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpsertExercise inserts or refreshes a catalog exercise keyed by name.
func (t *tx) UpsertExercise(ctx context.Context, e *models.Exercise) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO exercises (name, muscle_groups, equipment, movement_pattern)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ((lower(name))) DO UPDATE
			SET muscle_groups = EXCLUDED.muscle_groups,
			    equipment = EXCLUDED.equipment,
			    movement_pattern = EXCLUDED.movement_pattern
		 RETURNING id`,
		e.Name, e.MuscleGroups.Strings(), e.Equipment, e.MovementPattern).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("upserting exercise %q: %w", e.Name, err)
	}
	return nil
}
