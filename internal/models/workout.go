package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// WorkoutStatus is the lifecycle state of a workout.
type WorkoutStatus string

const (
	WorkoutNotStarted WorkoutStatus = "not_started"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutCancelled  WorkoutStatus = "cancelled"
)

// CanTransition reports whether a workout may move from s to next.
func (s WorkoutStatus) CanTransition(next WorkoutStatus) bool {
	switch s {
	case WorkoutNotStarted:
		return next == WorkoutInProgress || next == WorkoutCancelled
	case WorkoutInProgress:
		return next == WorkoutCompleted || next == WorkoutCancelled
	}
	return false
}

// Workout is a single training session.
type Workout struct {
	ID            uuid.UUID     `json:"id"`
	UserID        int64         `json:"user_id"`
	ProgramDayID  *int64        `json:"program_day_id"`
	Date          time.Time     `json:"date"`
	Status        WorkoutStatus `json:"status"`
	TotalVolumeKg float64       `json:"total_volume_kg"`
	AverageRIR    *float64      `json:"average_rir"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Set is one performed set. Sets are append-only.
type Set struct {
	ID         int64     `json:"id"`
	WorkoutID  uuid.UUID `json:"workout_id"`
	ExerciseID int64     `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	RIR        float64   `json:"rir"`
	Timestamp  time.Time `json:"timestamp"`
}

// CompletedSetCount is the number of sets of one exercise performed in
// completed workouts on one date, carrying the exercise's muscle groups so the
// caller can fan the count out.
type CompletedSetCount struct {
	ExerciseID   int64
	MuscleGroups MuscleGroups
	Date         time.Time
	Sets         int
}
