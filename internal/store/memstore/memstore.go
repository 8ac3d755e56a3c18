// Package memstore is an in-memory store.Store. A unit of work runs against a
// copy of the state that replaces the live state only on commit, so a failed
// unit of work leaves nothing behind.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// Store implements store.Store in memory.
type Store struct {
	mu     sync.RWMutex
	st     *state
	faults map[string]error
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{st: newState(), faults: map[string]error{}}
}

// InjectFault makes the named write or lock operation (e.g. "UpdateTargetSets") fail
// with err inside every subsequent unit of work. A nil err clears it.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// WithTx runs fn against a private copy of the state and publishes the copy
// only when fn succeeds. Units of work are serialized.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	work.faults = s.faults
	if err := fn(work); err != nil {
		return err
	}
	work.faults = nil
	s.st = work
	return nil
}

type user struct {
	id          int64
	login       string
	displayName string
}

type state struct {
	seq              int64
	users            map[int64]user
	exercises        map[int64]models.Exercise
	programs         map[int64]models.Program
	days             map[int64]models.ProgramDay
	programExercises map[int64]models.ProgramExercise
	workouts         map[uuid.UUID]models.Workout
	sets             map[int64]models.Set

	faults map[string]error
}

func newState() *state {
	return &state{
		users:            map[int64]user{},
		exercises:        map[int64]models.Exercise{},
		programs:         map[int64]models.Program{},
		days:             map[int64]models.ProgramDay{},
		programExercises: map[int64]models.ProgramExercise{},
		workouts:         map[uuid.UUID]models.Workout{},
		sets:             map[int64]models.Set{},
	}
}

func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.exercises {
		c.exercises[k] = v
	}
	for k, v := range st.programs {
		c.programs[k] = v
	}
	for k, v := range st.days {
		c.days[k] = v
	}
	for k, v := range st.programExercises {
		c.programExercises[k] = v
	}
	for k, v := range st.workouts {
		c.workouts[k] = v
	}
	for k, v := range st.sets {
		c.sets[k] = v
	}
	return c
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

func (st *state) fault(op string) error {
	if err, ok := st.faults[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", models.ErrNotFound, what, id)
}

// --- Reader ---

func (st *state) ActiveProgram(_ context.Context, userID int64) (*models.Program, error) {
	var best *models.Program
	for _, p := range st.programs {
		if p.UserID != userID {
			continue
		}
		if best == nil || p.CreatedAt.After(best.CreatedAt) ||
			(p.CreatedAt.Equal(best.CreatedAt) && p.ID > best.ID) {
			p := p
			best = &p
		}
	}
	if best == nil {
		return nil, notFound("active program for user", userID)
	}
	return best, nil
}

func (st *state) Program(_ context.Context, programID int64) (*models.Program, error) {
	p, ok := st.programs[programID]
	if !ok {
		return nil, notFound("program", programID)
	}
	return &p, nil
}

func (st *state) ProgramDays(_ context.Context, programID int64) ([]models.ProgramDay, error) {
	var out []models.ProgramDay
	for _, d := range st.days {
		if d.ProgramID == programID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (st *state) ProgramDay(_ context.Context, dayID int64) (*models.ProgramDay, error) {
	d, ok := st.days[dayID]
	if !ok {
		return nil, notFound("program day", dayID)
	}
	return &d, nil
}

func (st *state) detail(pe models.ProgramExercise) models.ProgramExerciseDetail {
	ex := st.exercises[pe.ExerciseID]
	return models.ProgramExerciseDetail{
		ProgramExercise: pe,
		ProgramID:       st.days[pe.ProgramDayID].ProgramID,
		ExerciseName:    ex.Name,
		MuscleGroups:    ex.MuscleGroups,
		Equipment:       ex.Equipment,
	}
}

func (st *state) ProgramExercises(ctx context.Context, programID int64) ([]models.ProgramExerciseDetail, error) {
	days, _ := st.ProgramDays(ctx, programID)
	var out []models.ProgramExerciseDetail
	for _, d := range days {
		rows, _ := st.DayExercises(ctx, d.ID)
		out = append(out, rows...)
	}
	return out, nil
}

func (st *state) DayExercises(_ context.Context, dayID int64) ([]models.ProgramExerciseDetail, error) {
	var out []models.ProgramExerciseDetail
	for _, pe := range st.programExercises {
		if pe.ProgramDayID == dayID {
			out = append(out, st.detail(pe))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (st *state) ProgramExercise(_ context.Context, id int64) (*models.ProgramExerciseDetail, error) {
	pe, ok := st.programExercises[id]
	if !ok {
		return nil, notFound("program exercise", id)
	}
	d := st.detail(pe)
	return &d, nil
}

func (st *state) Exercise(_ context.Context, id int64) (*models.Exercise, error) {
	e, ok := st.exercises[id]
	if !ok {
		return nil, notFound("exercise", id)
	}
	return &e, nil
}

func (st *state) Exercises(_ context.Context) ([]models.Exercise, error) {
	out := make([]models.Exercise, 0, len(st.exercises))
	for _, e := range st.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (st *state) ExerciseByName(_ context.Context, name string) (*models.Exercise, error) {
	for _, e := range st.exercises {
		if strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, notFound("exercise", name)
}

func (st *state) CompletedSets(_ context.Context, userID int64, start, end time.Time) ([]models.CompletedSetCount, error) {
	type key struct {
		exerciseID int64
		date       time.Time
	}
	counts := map[key]int{}
	for _, s := range st.sets {
		w, ok := st.workouts[s.WorkoutID]
		if !ok || w.UserID != userID || w.Status != models.WorkoutCompleted {
			continue
		}
		if w.Date.Before(start) || !w.Date.Before(end) {
			continue
		}
		counts[key{s.ExerciseID, w.Date}]++
	}
	out := make([]models.CompletedSetCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.CompletedSetCount{
			ExerciseID:   k.exerciseID,
			MuscleGroups: st.exercises[k.exerciseID].MuscleGroups,
			Date:         k.date,
			Sets:         n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ExerciseID < out[j].ExerciseID
	})
	return out, nil
}

func (st *state) Workout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	w, ok := st.workouts[id]
	if !ok {
		return nil, notFound("workout", id)
	}
	return &w, nil
}

func (st *state) WorkoutSets(_ context.Context, workoutID uuid.UUID) ([]models.Set, error) {
	var out []models.Set
	for _, s := range st.sets {
		if s.WorkoutID == workoutID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Tx ---

func (st *state) LockProgram(ctx context.Context, programID int64) (*models.Program, error) {
	if err := st.fault("LockProgram"); err != nil {
		return nil, err
	}
	return st.Program(ctx, programID)
}

func (st *state) UpdateTargetSets(_ context.Context, updates []models.TargetSetsUpdate) (int, error) {
	if err := st.fault("UpdateTargetSets"); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range updates {
		pe, ok := st.programExercises[u.ID]
		if !ok {
			continue
		}
		pe.TargetSets = u.TargetSets
		st.programExercises[u.ID] = pe
		n++
	}
	return n, nil
}

func (st *state) SetProgramPhase(_ context.Context, programID int64, phase models.Phase, week int) error {
	if err := st.fault("SetProgramPhase"); err != nil {
		return err
	}
	p, ok := st.programs[programID]
	if !ok {
		return notFound("program", programID)
	}
	p.MesocyclePhase = phase
	p.MesocycleWeek = week
	st.programs[programID] = p
	return nil
}

func (st *state) CreateProgram(_ context.Context, p *models.Program) error {
	p.ID = st.nextID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	st.programs[p.ID] = *p
	return nil
}

func (st *state) CreateProgramDay(_ context.Context, d *models.ProgramDay) error {
	if _, ok := st.programs[d.ProgramID]; !ok {
		return notFound("program", d.ProgramID)
	}
	d.ID = st.nextID()
	st.days[d.ID] = *d
	return nil
}

func (st *state) CreateProgramExercise(_ context.Context, pe *models.ProgramExercise) error {
	if err := st.fault("CreateProgramExercise"); err != nil {
		return err
	}
	if _, ok := st.days[pe.ProgramDayID]; !ok {
		return notFound("program day", pe.ProgramDayID)
	}
	if _, ok := st.exercises[pe.ExerciseID]; !ok {
		return notFound("exercise", pe.ExerciseID)
	}
	pe.ID = st.nextID()
	st.programExercises[pe.ID] = *pe
	return nil
}

func (st *state) UpdateProgramExercise(_ context.Context, pe models.ProgramExercise) error {
	if err := st.fault("UpdateProgramExercise"); err != nil {
		return err
	}
	if _, ok := st.programExercises[pe.ID]; !ok {
		return notFound("program exercise", pe.ID)
	}
	if _, ok := st.exercises[pe.ExerciseID]; !ok {
		return notFound("exercise", pe.ExerciseID)
	}
	st.programExercises[pe.ID] = pe
	return nil
}

func (st *state) DeleteProgramExercise(_ context.Context, id int64) error {
	if _, ok := st.programExercises[id]; !ok {
		return notFound("program exercise", id)
	}
	delete(st.programExercises, id)
	return nil
}

func (st *state) SetOrderIndexes(_ context.Context, dayID int64, updates []models.OrderUpdate) error {
	if err := st.fault("SetOrderIndexes"); err != nil {
		return err
	}
	for _, u := range updates {
		pe, ok := st.programExercises[u.ProgramExerciseID]
		if !ok || pe.ProgramDayID != dayID {
			return notFound("program exercise in day", u.ProgramExerciseID)
		}
		pe.OrderIndex = u.NewOrderIndex
		st.programExercises[pe.ID] = pe
	}
	return nil
}

func (st *state) CreateWorkout(_ context.Context, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	st.workouts[w.ID] = *w
	return nil
}

func (st *state) UpdateWorkout(_ context.Context, w models.Workout) error {
	if _, ok := st.workouts[w.ID]; !ok {
		return notFound("workout", w.ID)
	}
	st.workouts[w.ID] = w
	return nil
}

func (st *state) AddSet(_ context.Context, s *models.Set) error {
	if _, ok := st.workouts[s.WorkoutID]; !ok {
		return notFound("workout", s.WorkoutID)
	}
	s.ID = st.nextID()
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	st.sets[s.ID] = *s
	return nil
}

func (st *state) UpsertExercise(_ context.Context, e *models.Exercise) error {
	for id, existing := range st.exercises {
		if strings.EqualFold(existing.Name, e.Name) {
			e.ID = id
			st.exercises[id] = *e
			return nil
		}
	}
	e.ID = st.nextID()
	st.exercises[e.ID] = *e
	return nil
}

func (st *state) GetOrCreateUser(_ context.Context, login, displayName string) (int64, error) {
	for id, u := range st.users {
		if u.login == login {
			if displayName != "" {
				u.displayName = displayName
				st.users[id] = u
			}
			return id, nil
		}
	}
	id := st.nextID()
	st.users[id] = user{id: id, login: login, displayName: displayName}
	return id, nil
}
