package volume

import (
	"testing"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	chest := Landmark{MEV: 8, MAV: 14, MRV: 22}
	tests := []struct {
		completed int
		want      models.Zone
	}{
		{0, models.ZoneBelowMEV},
		{7, models.ZoneBelowMEV},
		{8, models.ZoneAdequate},
		{13, models.ZoneAdequate},
		{14, models.ZoneOptimal},
		{22, models.ZoneOptimal},
		{23, models.ZoneAboveMRV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.completed, chest), "completed=%d", tt.completed)
	}
}

func TestClassifyZeroMEV(t *testing.T) {
	delts := Landmark{MEV: 0, MAV: 6, MRV: 12}
	assert.Equal(t, models.ZoneAdequate, Classify(0, delts))
	assert.Equal(t, models.ZoneOptimal, Classify(6, delts))
}

func TestClassifyWithTarget(t *testing.T) {
	chest := Landmark{MEV: 8, MAV: 14, MRV: 22}
	wed := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	week := WeekOf(wed, time.UTC)
	nextMonday := week.End

	tests := []struct {
		name      string
		completed int
		planned   int
		now       time.Time
		want      models.Zone
	}{
		{"half done", 5, 10, wed, models.ZoneOnTrack},
		{"under half", 4, 10, wed, models.ZoneBelowMEV},
		{"all done", 10, 10, wed, models.ZoneAdequate},
		{"plan below mev", 3, 6, wed, models.ZoneBelowMEV},
		{"plan above mrv", 12, 24, wed, models.ZoneAdequate},
		{"plan at mrv", 11, 22, wed, models.ZoneOnTrack},
		{"week over", 5, 10, nextMonday, models.ZoneBelowMEV},
		{"nothing planned", 0, 0, wed, models.ZoneBelowMEV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWithTarget(tt.completed, tt.planned, chest, week, tt.now))
		})
	}
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0.0, CompletionPercentage(5, 0))
	assert.Equal(t, 100.0, CompletionPercentage(10, 10))
	assert.Equal(t, 33.3, CompletionPercentage(1, 3))
	assert.Equal(t, 66.7, CompletionPercentage(2, 3))
	assert.Equal(t, 150.0, CompletionPercentage(15, 10))
}

func TestWeekOf(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 23, 30, 0, 0, time.UTC)
	w := WeekOf(sunday, time.UTC)
	assert.Equal(t, "2026-03-02", w.StartLabel())
	assert.Equal(t, "2026-03-08", w.LastDayLabel())

	// Sunday 23:30 UTC is already Monday in Berlin.
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", WeekOf(sunday, berlin).StartLabel())

	assert.Equal(t, "2026-02-23", w.Shift(-1).StartLabel())
}

func TestRegistryOverrides(t *testing.T) {
	reg, err := NewRegistry(map[string]Landmark{"Chest": {MEV: 10, MAV: 16, MRV: 24}})
	require.NoError(t, err)
	assert.Equal(t, Landmark{MEV: 10, MAV: 16, MRV: 24}, reg.For(models.Chest))
	assert.Equal(t, Landmark{MEV: 6, MAV: 10, MRV: 18}, reg.For(models.Triceps))

	_, err = NewRegistry(map[string]Landmark{"pecs": {MEV: 1, MAV: 2, MRV: 3}})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = NewRegistry(map[string]Landmark{"chest": {MEV: 10, MAV: 8, MRV: 20}})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestRegistryCoversEveryGroup(t *testing.T) {
	reg := DefaultRegistry()
	all := reg.All()
	assert.Len(t, all, len(models.AllMuscleGroups))
	for _, g := range models.AllMuscleGroups {
		l := reg.For(g)
		assert.True(t, l.MEV <= l.MAV && l.MAV <= l.MRV, "%s landmarks out of order", g)
	}
}

func TestRegistryWarning(t *testing.T) {
	reg := DefaultRegistry()
	assert.Contains(t, reg.Warning(models.ZoneBelowMEV, models.Chest), "below MEV (8")
	assert.Contains(t, reg.Warning(models.ZoneAboveMRV, models.Chest), "exceeds MRV (22")
	assert.Empty(t, reg.Warning(models.ZoneOptimal, models.Chest))
	assert.Empty(t, reg.Warning(models.ZoneOnTrack, models.Chest))
}
