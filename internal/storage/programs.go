package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/periodix/internal/models"
)

const programColumns = `id, user_id, name, mesocycle_week, mesocycle_phase, created_at`

const detailSelect = `SELECT pe.id, pe.program_day_id, pe.exercise_id, pe.order_index, pe.target_sets,
		pe.target_rep_range, pe.target_rir, pd.program_id, e.name, e.muscle_groups, e.equipment
	FROM program_exercises pe
	JOIN program_days pd ON pd.id = pe.program_day_id
	JOIN exercises e ON e.id = pe.exercise_id`

func scanProgram(row pgx.Row) (*models.Program, error) {
	var p models.Program
	var phase string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.MesocycleWeek, &phase, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.MesocyclePhase = models.Phase(phase)
	return &p, nil
}

// notFound maps pgx.ErrNoRows to models.ErrNotFound.
func notFound(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, models.ErrNotFound)
	}
	return fmt.Errorf("querying %s %v: %w", what, id, err)
}

// storedGroups revalidates muscle groups loaded from the database.
func storedGroups(raw []string) (models.MuscleGroups, error) {
	g, err := models.ParseMuscleGroups(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: stored muscle groups %v: %v", models.ErrInvariantViolation, raw, err)
	}
	return g, nil
}

// ActiveProgram returns the user's most recently created program.
func (q queries) ActiveProgram(ctx context.Context, userID int64) (*models.Program, error) {
	p, err := scanProgram(q.q.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`, userID))
	if err != nil {
		return nil, notFound(err, "active program for user", userID)
	}
	return p, nil
}

func (q queries) Program(ctx context.Context, programID int64) (*models.Program, error) {
	p, err := scanProgram(q.q.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = $1`, programID))
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	return p, nil
}

func (q queries) ProgramDays(ctx context.Context, programID int64) ([]models.ProgramDay, error) {
	rows, err := q.q.Query(ctx,
		`SELECT id, program_id, day_of_week, day_name, day_type FROM program_days
		 WHERE program_id = $1 ORDER BY day_of_week, id`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying program days: %w", err)
	}
	defer rows.Close()

	var days []models.ProgramDay
	for rows.Next() {
		var d models.ProgramDay
		var dayType string
		if err := rows.Scan(&d.ID, &d.ProgramID, &d.DayOfWeek, &d.DayName, &dayType); err != nil {
			return nil, fmt.Errorf("scanning program day: %w", err)
		}
		d.DayType = models.DayType(dayType)
		days = append(days, d)
	}
	return days, rows.Err()
}

func (q queries) ProgramDay(ctx context.Context, dayID int64) (*models.ProgramDay, error) {
	var d models.ProgramDay
	var dayType string
	err := q.q.QueryRow(ctx,
		`SELECT id, program_id, day_of_week, day_name, day_type FROM program_days WHERE id = $1`,
		dayID).Scan(&d.ID, &d.ProgramID, &d.DayOfWeek, &d.DayName, &dayType)
	if err != nil {
		return nil, notFound(err, "program day", dayID)
	}
	d.DayType = models.DayType(dayType)
	return &d, nil
}

func (q queries) details(ctx context.Context, sql string, arg any) ([]models.ProgramExerciseDetail, error) {
	rows, err := q.q.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("querying program exercises: %w", err)
	}
	defer rows.Close()

	var out []models.ProgramExerciseDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDetail(row pgx.Row) (*models.ProgramExerciseDetail, error) {
	var d models.ProgramExerciseDetail
	var groups []string
	err := row.Scan(&d.ID, &d.ProgramDayID, &d.ExerciseID, &d.OrderIndex, &d.TargetSets,
		&d.TargetRepRange, &d.TargetRIR, &d.ProgramID, &d.ExerciseName, &groups, &d.Equipment)
	if err != nil {
		return nil, err
	}
	if d.MuscleGroups, err = storedGroups(groups); err != nil {
		return nil, err
	}
	return &d, nil
}

func (q queries) ProgramExercises(ctx context.Context, programID int64) ([]models.ProgramExerciseDetail, error) {
	return q.details(ctx, detailSelect+`
		WHERE pd.program_id = $1
		ORDER BY pd.day_of_week, pd.id, pe.order_index, pe.id`, programID)
}

func (q queries) DayExercises(ctx context.Context, dayID int64) ([]models.ProgramExerciseDetail, error) {
	return q.details(ctx, detailSelect+`
		WHERE pe.program_day_id = $1
		ORDER BY pe.order_index, pe.id`, dayID)
}

func (q queries) ProgramExercise(ctx context.Context, id int64) (*models.ProgramExerciseDetail, error) {
	d, err := scanDetail(q.q.QueryRow(ctx, detailSelect+` WHERE pe.id = $1`, id))
	if err != nil {
		if errors.Is(err, models.ErrInvariantViolation) {
			return nil, err
		}
		return nil, notFound(err, "program exercise", id)
	}
	return d, nil
}

// LockProgram reads the program with FOR UPDATE.
func (t *tx) LockProgram(ctx context.Context, programID int64) (*models.Program, error) {
	p, err := scanProgram(t.q.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = $1 FOR UPDATE`, programID))
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	return p, nil
}

// UpdateTargetSets rewrites target_sets for every update in one statement.
func (t *tx) UpdateTargetSets(ctx context.Context, updates []models.TargetSetsUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(updates))
	sets := make([]int32, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		sets[i] = int32(u.TargetSets)
	}
	tag, err := t.q.Exec(ctx,
		`UPDATE program_exercises AS pe SET target_sets = v.sets
		 FROM unnest($1::bigint[], $2::int[]) AS v(id, sets)
		 WHERE pe.id = v.id`, ids, sets)
	if err != nil {
		return 0, fmt.Errorf("updating target sets: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (t *tx) SetProgramPhase(ctx context.Context, programID int64, phase models.Phase, week int) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE programs SET mesocycle_phase = $2, mesocycle_week = $3 WHERE id = $1`,
		programID, string(phase), week)
	if err != nil {
		return fmt.Errorf("updating program phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("program %d: %w", programID, models.ErrNotFound)
	}
	return nil
}

func (t *tx) CreateProgram(ctx context.Context, p *models.Program) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO programs (user_id, name, mesocycle_week, mesocycle_phase, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.UserID, p.Name, p.MesocycleWeek, string(p.MesocyclePhase), p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	return nil
}

func (t *tx) CreateProgramDay(ctx context.Context, d *models.ProgramDay) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO program_days (program_id, day_of_week, day_name, day_type)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		d.ProgramID, d.DayOfWeek, d.DayName, string(d.DayType)).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("inserting program day: %w", err)
	}
	return nil
}

func (t *tx) CreateProgramExercise(ctx context.Context, pe *models.ProgramExercise) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO program_exercises
		 (program_day_id, exercise_id, order_index, target_sets, target_rep_range, target_rir)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		pe.ProgramDayID, pe.ExerciseID, pe.OrderIndex, pe.TargetSets, pe.TargetRepRange, pe.TargetRIR).Scan(&pe.ID)
	if err != nil {
		return fmt.Errorf("inserting program exercise: %w", err)
	}
	return nil
}

func (t *tx) UpdateProgramExercise(ctx context.Context, pe models.ProgramExercise) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE program_exercises
		 SET exercise_id = $2, order_index = $3, target_sets = $4, target_rep_range = $5, target_rir = $6
		 WHERE id = $1`,
		pe.ID, pe.ExerciseID, pe.OrderIndex, pe.TargetSets, pe.TargetRepRange, pe.TargetRIR)
	if err != nil {
		return fmt.Errorf("updating program exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("program exercise %d: %w", pe.ID, models.ErrNotFound)
	}
	return nil
}

func (t *tx) DeleteProgramExercise(ctx context.Context, id int64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM program_exercises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting program exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("program exercise %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// SetOrderIndexes moves exercises of one day. The (day, order_index)
// uniqueness constraint is deferred, so intermediate collisions are fine.
func (t *tx) SetOrderIndexes(ctx context.Context, dayID int64, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]int64, len(updates))
	idx := make([]int32, len(updates))
	for i, u := range updates {
		ids[i] = u.ProgramExerciseID
		idx[i] = int32(u.NewOrderIndex)
	}
	tag, err := t.q.Exec(ctx,
		`UPDATE program_exercises AS pe SET order_index = v.idx
		 FROM unnest($2::bigint[], $3::int[]) AS v(id, idx)
		 WHERE pe.id = v.id AND pe.program_day_id = $1`, dayID, ids, idx)
	if err != nil {
		return fmt.Errorf("updating order indexes: %w", err)
	}
	if int(tag.RowsAffected()) != len(updates) {
		return fmt.Errorf("reorder on day %d touched %d of %d rows: %w",
			dayID, tag.RowsAffected(), len(updates), models.ErrNotFound)
	}
	return nil
}
