package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/meltforce/periodix/internal/models"
)

const exerciseColumns = `id, name, muscle_groups, equipment, movement_pattern`

func scanExercise(row scanner) (*models.Exercise, error) {
	var e models.Exercise
	var groups string
	if err := row.Scan(&e.ID, &e.Name, &groups, &e.Equipment, &e.MovementPattern); err != nil {
		return nil, err
	}
	g, err := decodeGroups(groups)
	if err != nil {
		return nil, err
	}
	e.MuscleGroups = g
	return &e, nil
}

func (q queries) Exercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := scanExercise(q.q.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, models.ErrInvariantViolation) {
			return nil, err
		}
		return nil, notFound(err, "exercise", id)
	}
	return e, nil
}

func (q queries) ExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	e, err := scanExercise(q.q.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE name = ? COLLATE NOCASE`, name))
	if err != nil {
		if errors.Is(err, models.ErrInvariantViolation) {
			return nil, err
		}
		return nil, notFound(err, "exercise", name)
	}
	return e, nil
}

func (q queries) Exercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name`)
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

func (t *tx) UpsertExercise(ctx context.Context, e *models.Exercise) error {
	groups, err := encodeGroups(e.MuscleGroups)
	if err != nil {
		return err
	}
	err = t.q.QueryRowContext(ctx,
		`INSERT INTO exercises (name, muscle_groups, equipment, movement_pattern)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (name COLLATE NOCASE) DO UPDATE
			SET muscle_groups = excluded.muscle_groups,
			    equipment = excluded.equipment,
			    movement_pattern = excluded.movement_pattern
		 RETURNING id`,
		e.Name, groups, e.Equipment, e.MovementPattern).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("upserting exercise %q: %w", e.Name, err)
	}
	return nil
}

func (t *tx) GetOrCreateUser(ctx context.Context, login, displayName string) (int64, error) {
	now := formatTS(timeNow())
	var id int64
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, created_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id`, login, displayName, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}
