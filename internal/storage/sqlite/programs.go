package sqlite

import (
	"context"
	"fmt"

	"github.com/meltforce/periodix/internal/models"
)

const programColumns = `id, user_id, name, mesocycle_week, mesocycle_phase, created_at`

const detailSelect = `SELECT pe.id, pe.program_day_id, pe.exercise_id, pe.order_index, pe.target_sets,
		pe.target_rep_range, pe.target_rir, pd.program_id, e.name, e.muscle_groups, e.equipment
	FROM program_exercises pe
	JOIN program_days pd ON pd.id = pe.program_day_id
	JOIN exercises e ON e.id = pe.exercise_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanProgram(row scanner) (*models.Program, error) {
	var p models.Program
	var phase, created string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.MesocycleWeek, &phase, &created); err != nil {
		return nil, err
	}
	p.MesocyclePhase = models.Phase(phase)
	t, err := parseTS(created)
	if err != nil {
		return nil, fmt.Errorf("parsing program created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}

func scanDetail(row scanner) (*models.ProgramExerciseDetail, error) {
	var d models.ProgramExerciseDetail
	var groups string
	err := row.Scan(&d.ID, &d.ProgramDayID, &d.ExerciseID, &d.OrderIndex, &d.TargetSets,
		&d.TargetRepRange, &d.TargetRIR, &d.ProgramID, &d.ExerciseName, &groups, &d.Equipment)
	if err != nil {
		return nil, err
	}
	if d.MuscleGroups, err = decodeGroups(groups); err != nil {
		return nil, err
	}
	return &d, nil
}

func (q queries) ActiveProgram(ctx context.Context, userID int64) (*models.Program, error) {
	p, err := scanProgram(q.q.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, userID))
	if err != nil {
		return nil, notFound(err, "active program for user", userID)
	}
	return p, nil
}

func (q queries) Program(ctx context.Context, programID int64) (*models.Program, error) {
	p, err := scanProgram(q.q.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = ?`, programID))
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	return p, nil
}

func (q queries) ProgramDays(ctx context.Context, programID int64) ([]models.ProgramDay, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, program_id, day_of_week, day_name, day_type FROM program_days
		 WHERE program_id = ? ORDER BY day_of_week, id`, programID)
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
	err := q.q.QueryRowContext(ctx,
		`SELECT id, program_id, day_of_week, day_name, day_type FROM program_days WHERE id = ?`,
		dayID).Scan(&d.ID, &d.ProgramID, &d.DayOfWeek, &d.DayName, &dayType)
	if err != nil {
		return nil, notFound(err, "program day", dayID)
	}
	d.DayType = models.DayType(dayType)
	return &d, nil
}

func (q queries) details(ctx context.Context, query string, arg any) ([]models.ProgramExerciseDetail, error) {
	rows, err := q.q.QueryContext(ctx, query, arg)
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

func (q queries) ProgramExercises(ctx context.Context, programID int64) ([]models.ProgramExerciseDetail, error) {
	return q.details(ctx, detailSelect+`
		WHERE pd.program_id = ?
		ORDER BY pd.day_of_week, pd.id, pe.order_index, pe.id`, programID)
}

func (q queries) DayExercises(ctx context.Context, dayID int64) ([]models.ProgramExerciseDetail, error) {
	return q.details(ctx, detailSelect+`
		WHERE pe.program_day_id = ?
		ORDER BY pe.order_index, pe.id`, dayID)
}

func (q queries) ProgramExercise(ctx context.Context, id int64) (*models.ProgramExerciseDetail, error) {
	d, err := scanDetail(q.q.QueryRowContext(ctx, detailSelect+` WHERE pe.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "program exercise", id)
	}
	return d, nil
}

// LockProgram reads the program. No row lock is needed: the DSN sets
// _txlock=immediate so every transaction starts with BEGIN IMMEDIATE and
// holds the database write lock, and the pool is capped at one open
// connection, so transactions never interleave.
func (t *tx) LockProgram(ctx context.Context, programID int64) (*models.Program, error) {
	return t.Program(ctx, programID)
}

func (t *tx) UpdateTargetSets(ctx context.Context, updates []models.TargetSetsUpdate) (int, error) {
	n := 0
	for _, u := range updates {
		res, err := t.q.ExecContext(ctx,
			`UPDATE program_exercises SET target_sets = ? WHERE id = ?`, u.TargetSets, u.ID)
		if err != nil {
			return n, fmt.Errorf("updating target sets of %d: %w", u.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return n, fmt.Errorf("reading rows affected: %w", err)
		}
		n += int(affected)
	}
	return n, nil
}

func (t *tx) SetProgramPhase(ctx context.Context, programID int64, phase models.Phase, week int) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE programs SET mesocycle_phase = ?, mesocycle_week = ? WHERE id = ?`,
		string(phase), week, programID)
	if err != nil {
		return fmt.Errorf("updating program phase: %w", err)
	}
	return expectOne(res, "program", programID)
}

func expectOne(res interface{ RowsAffected() (int64, error) }, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, models.ErrNotFound)
	}
	return nil
}

func (t *tx) CreateProgram(ctx context.Context, p *models.Program) error {
	res, err := t.q.ExecContext(ctx,
		`INSERT INTO programs (user_id, name, mesocycle_week, mesocycle_phase, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.MesocycleWeek, string(p.MesocyclePhase), formatTS(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (t *tx) CreateProgramDay(ctx context.Context, d *models.ProgramDay) error {
	res, err := t.q.ExecContext(ctx,
		`INSERT INTO program_days (program_id, day_of_week, day_name, day_type) VALUES (?, ?, ?, ?)`,
		d.ProgramID, d.DayOfWeek, d.DayName, string(d.DayType))
	if err != nil {
		return fmt.Errorf("inserting program day: %w", err)
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (t *tx) CreateProgramExercise(ctx context.Context, pe *models.ProgramExercise) error {
	res, err := t.q.ExecContext(ctx,
		`INSERT INTO program_exercises
		 (program_day_id, exercise_id, order_index, target_sets, target_rep_range, target_rir)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pe.ProgramDayID, pe.ExerciseID, pe.OrderIndex, pe.TargetSets, pe.TargetRepRange, pe.TargetRIR)
	if err != nil {
		return fmt.Errorf("inserting program exercise: %w", err)
	}
	pe.ID, err = res.LastInsertId()
	return err
}

func (t *tx) UpdateProgramExercise(ctx context.Context, pe models.ProgramExercise) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE program_exercises
		 SET exercise_id = ?, order_index = ?, target_sets = ?, target_rep_range = ?, target_rir = ?
		 WHERE id = ?`,
		pe.ExerciseID, pe.OrderIndex, pe.TargetSets, pe.TargetRepRange, pe.TargetRIR, pe.ID)
	if err != nil {
		return fmt.Errorf("updating program exercise: %w", err)
	}
	return expectOne(res, "program exercise", pe.ID)
}

func (t *tx) DeleteProgramExercise(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM program_exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting program exercise: %w", err)
	}
	return expectOne(res, "program exercise", id)
}

// SetOrderIndexes parks the day's rows on negative indexes first so the
// (day, order_index) unique constraint holds after every statement.
func (t *tx) SetOrderIndexes(ctx context.Context, dayID int64, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if _, err := t.q.ExecContext(ctx,
		`UPDATE program_exercises SET order_index = -1 - order_index WHERE program_day_id = ?`, dayID); err != nil {
		return fmt.Errorf("parking order indexes: %w", err)
	}
	for _, u := range updates {
		res, err := t.q.ExecContext(ctx,
			`UPDATE program_exercises SET order_index = ? WHERE id = ? AND program_day_id = ?`,
			u.NewOrderIndex, u.ProgramExerciseID, dayID)
		if err != nil {
			return fmt.Errorf("updating order index of %d: %w", u.ProgramExerciseID, err)
		}
		if err := expectOne(res, "program exercise", u.ProgramExerciseID); err != nil {
			return err
		}
	}
	return nil
}
