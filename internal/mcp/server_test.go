package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/program"
	"github.com/meltforce/periodix/internal/store/memstore"
	"github.com/meltforce/periodix/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2026-03-04.
var testNow = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

func newTestHandlers(t *testing.T) (*handlers, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := volume.NewAggregator(s, volume.DefaultRegistry(), volume.Options{}, log)
	local := NewLocal(agg, program.NewService(s, agg, nil, log))
	local.now = func() time.Time { return testNow }
	require.NotNil(t, New(local, "test", log))
	return &handlers{ds: local, log: log}, s
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestCurrentWeekVolumeTool(t *testing.T) {
	h, s := newTestHandlers(t)
	bench := s.SeedExercise("Bench Press", models.Chest)
	s.SeedWorkout(7, testNow.AddDate(0, 0, -1), models.WorkoutCompleted, map[int64]int{bench.ID: 4})

	ctx := WithUserID(context.Background(), 7)
	res, err := h.getCurrentWeekVolume(ctx, toolRequest(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var v models.CurrentWeekVolume
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	assert.Equal(t, "2026-03-02", v.WeekStart)
	for _, g := range v.MuscleGroups {
		if g.MuscleGroup == models.Chest {
			assert.Equal(t, 4, g.CompletedSets)
		}
	}

	// The default user sees nothing of user 7.
	res, err = h.getCurrentWeekVolume(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	var other models.CurrentWeekVolume
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &other))
	for _, g := range other.MuscleGroups {
		assert.Zero(t, g.CompletedSets, g.MuscleGroup)
	}
}

func TestVolumeHistoryTool(t *testing.T) {
	h, s := newTestHandlers(t)
	bench := s.SeedExercise("Bench Press", models.Chest)
	s.SeedWorkout(1, testNow.AddDate(0, 0, -14), models.WorkoutCompleted, map[int64]int{bench.ID: 6})

	res, err := h.getVolumeHistory(context.Background(), toolRequest(map[string]any{
		"weeks":        4,
		"muscle_group": "chest",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var hist models.VolumeHistory
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &hist))
	require.Len(t, hist.Weeks, 1)
	assert.Equal(t, "2026-02-16", hist.Weeks[0].WeekStart)
	require.Len(t, hist.Weeks[0].MuscleGroups, 1)
	assert.Equal(t, 6, hist.Weeks[0].MuscleGroups[0].CompletedSets)

	res, err = h.getVolumeHistory(context.Background(), toolRequest(map[string]any{"weeks": 99}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.getVolumeHistory(context.Background(), toolRequest(map[string]any{"muscle_group": "pecs"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestProgramTools(t *testing.T) {
	h, s := newTestHandlers(t)
	ctx := context.Background()

	res, err := h.getActiveProgram(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No active program.", resultText(t, res))
	res, err = h.getProgramVolumeAnalysis(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No active program.", resultText(t, res))

	bench := s.SeedExercise("Bench Press", models.Chest)
	p := s.SeedProgram(1, "Upper", models.PhaseMEV, testNow)
	day := s.SeedDay(p.ID, 0)
	s.SeedProgramExercise(day.ID, bench.ID, 4)

	res, err = h.getActiveProgram(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"Upper"`)

	res, err = h.getProgramVolumeAnalysis(ctx, toolRequest(nil))
	require.NoError(t, err)
	var a models.ProgramVolumeAnalysis
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &a))
	assert.Equal(t, p.ID, a.ProgramID)
	var chest *models.PlannedMuscleGroupVolume
	for i := range a.MuscleGroups {
		if a.MuscleGroups[i].MuscleGroup == models.Chest {
			chest = &a.MuscleGroups[i]
		}
	}
	require.NotNil(t, chest)
	assert.Equal(t, 4, chest.PlannedSets)
	assert.Equal(t, models.ZoneBelowMEV, chest.Zone)
	assert.NotNil(t, chest.Warning)
}

func TestVolumeLandmarksResource(t *testing.T) {
	h, _ := newTestHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "periodix://volume_landmarks"

	contents, err := h.volumeLandmarks(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var got map[models.MuscleGroup]volume.Landmark
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, volume.DefaultRegistry().All(), got)
}
