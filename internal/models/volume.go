package models

// Zone classifies a volume against the MEV/MAV/MRV landmarks.
type Zone string

const (
	ZoneBelowMEV Zone = "below_mev"
	ZoneAdequate Zone = "adequate"
	ZoneOptimal  Zone = "optimal"
	ZoneAboveMRV Zone = "above_mrv"
	ZoneOnTrack  Zone = "on_track"
)

// VolumeSnapshot is derived at read time and never persisted.
type VolumeSnapshot struct {
	MuscleGroup          MuscleGroup `json:"muscle_group"`
	CompletedSets        int         `json:"completed_sets"`
	PlannedSets          int         `json:"planned_sets"`
	RemainingSets        int         `json:"remaining_sets"`
	MEV                  int         `json:"mev"`
	MAV                  int         `json:"mav"`
	MRV                  int         `json:"mrv"`
	CompletionPercentage float64     `json:"completion_percentage"`
	Zone                 Zone        `json:"zone"`
	Warning              *string     `json:"warning"`
}

// CurrentWeekVolume is the per-muscle-group view of the running ISO week.
type CurrentWeekVolume struct {
	WeekStart    string           `json:"week_start"`
	WeekEnd      string           `json:"week_end"`
	MuscleGroups []VolumeSnapshot `json:"muscle_groups"`
}

// WeeklyMuscleGroupVolume is one history row.
type WeeklyMuscleGroupVolume struct {
	MuscleGroup   MuscleGroup `json:"muscle_group"`
	CompletedSets int         `json:"completed_sets"`
	MEV           int         `json:"mev"`
	MAV           int         `json:"mav"`
	MRV           int         `json:"mrv"`
}

// WeekVolume groups history rows by ISO week.
type WeekVolume struct {
	WeekStart    string                    `json:"week_start"`
	MuscleGroups []WeeklyMuscleGroupVolume `json:"muscle_groups"`
}

// VolumeHistory is the trailing-window history view.
type VolumeHistory struct {
	Weeks []WeekVolume `json:"weeks"`
}

// PlannedMuscleGroupVolume is one row of a program volume analysis.
type PlannedMuscleGroupVolume struct {
	MuscleGroup MuscleGroup `json:"muscle_group"`
	PlannedSets int         `json:"planned_sets"`
	MEV         int         `json:"mev"`
	MAV         int         `json:"mav"`
	MRV         int         `json:"mrv"`
	Zone        Zone        `json:"zone"`
	Warning     *string     `json:"warning"`
}

// ProgramVolumeAnalysis is planned volume per muscle group for a program.
type ProgramVolumeAnalysis struct {
	ProgramID      int64                      `json:"program_id"`
	MesocyclePhase Phase                      `json:"mesocycle_phase"`
	MuscleGroups   []PlannedMuscleGroupVolume `json:"muscle_groups"`
}
