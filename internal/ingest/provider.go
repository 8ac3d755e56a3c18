// Package ingest holds shared types of the workout import providers.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsInserted int `json:"workouts_inserted"`
	SessionsSkipped  int `json:"sessions_skipped"`

	SetsReceived int `json:"sets_received"`
	SetsInserted int `json:"sets_inserted"`

	UnknownExercises []string `json:"unknown_exercises,omitempty"`

	Message string `json:"message,omitempty"`
}
