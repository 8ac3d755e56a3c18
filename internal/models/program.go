package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Target set bounds for a program exercise.
const (
	MinTargetSets = 1
	MaxTargetSets = 10
	MinTargetRIR  = 0
	MaxTargetRIR  = 4
)

// DayType labels a program day.
type DayType string

const (
	DayStrength DayType = "strength"
	DayVO2Max   DayType = "vo2max"
)

// Valid reports whether t is a known day type.
func (t DayType) Valid() bool {
	return t == DayStrength || t == DayVO2Max
}

// Exercise is immutable reference data.
type Exercise struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	MuscleGroups    MuscleGroups `json:"muscle_groups"`
	Equipment       string       `json:"equipment"`
	MovementPattern string       `json:"movement_pattern"`
}

// Program is a user's mesocycle. The most recently created one is active.
type Program struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	MesocycleWeek  int       `json:"mesocycle_week"`
	MesocyclePhase Phase     `json:"mesocycle_phase"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProgramDay is one training day of a program.
type ProgramDay struct {
	ID        int64   `json:"id"`
	ProgramID int64   `json:"program_id"`
	DayOfWeek int     `json:"day_of_week"`
	DayName   string  `json:"day_name"`
	DayType   DayType `json:"day_type"`
}

// ProgramExercise is the mutable unit of prescribed volume.
type ProgramExercise struct {
	ID             int64  `json:"id"`
	ProgramDayID   int64  `json:"program_day_id"`
	ExerciseID     int64  `json:"exercise_id"`
	OrderIndex     int    `json:"order_index"`
	TargetSets     int    `json:"target_sets"`
	TargetRepRange string `json:"target_rep_range"`
	TargetRIR      int    `json:"target_rir"`
}

// ProgramExerciseDetail is a program exercise joined with its Exercise. Muscle
// group attribution always comes from the joined exercise.
type ProgramExerciseDetail struct {
	ProgramExercise
	ProgramID    int64        `json:"program_id"`
	ExerciseName string       `json:"exercise_name"`
	MuscleGroups MuscleGroups `json:"muscle_groups"`
	Equipment    string       `json:"equipment"`
}

// TargetSetsUpdate is one row of a bulk target_sets rewrite.
type TargetSetsUpdate struct {
	ID         int64
	TargetSets int
}

// OrderUpdate moves one program exercise to a new position within its day.
type OrderUpdate struct {
	ProgramExerciseID int64 `json:"program_exercise_id"`
	NewOrderIndex     int   `json:"new_order_index"`
}

var repRangeRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})$`)

// ValidateTargets checks the prescription fields of a program exercise.
func ValidateTargets(sets int, repRange string, rir int) error {
	if sets < MinTargetSets || sets > MaxTargetSets {
		return fmt.Errorf("%w: target_sets %d outside [%d,%d]", ErrInvalidArgument, sets, MinTargetSets, MaxTargetSets)
	}
	if rir < MinTargetRIR || rir > MaxTargetRIR {
		return fmt.Errorf("%w: target_rir %d outside [%d,%d]", ErrInvalidArgument, rir, MinTargetRIR, MaxTargetRIR)
	}
	return ValidateRepRange(repRange)
}

// ValidateRepRange accepts "N-M" with 1 <= N <= M.
func ValidateRepRange(s string) error {
	m := repRangeRe.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("%w: target_rep_range %q must look like 8-12", ErrInvalidArgument, s)
	}
	lo, _ := strconv.Atoi(m[1])
	hi, _ := strconv.Atoi(m[2])
	if lo < 1 || lo > hi {
		return fmt.Errorf("%w: target_rep_range %q is not ascending", ErrInvalidArgument, s)
	}
	return nil
}

// ClampTargetSets forces n into [MinTargetSets, MaxTargetSets].
func ClampTargetSets(n int) int {
	if n < MinTargetSets {
		return MinTargetSets
	}
	if n > MaxTargetSets {
		return MaxTargetSets
	}
	return n
}
