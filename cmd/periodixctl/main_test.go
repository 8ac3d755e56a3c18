package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/phase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "periodixctl dev\n", out)
}

func TestVolumeCurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/volume/current", r.URL.Path)
		json.NewEncoder(w).Encode(models.CurrentWeekVolume{
			WeekStart: "2026-03-02",
			WeekEnd:   "2026-03-08",
			MuscleGroups: []models.VolumeSnapshot{{
				MuscleGroup: models.Chest, CompletedSets: 6, PlannedSets: 12, RemainingSets: 6,
				MEV: 10, MAV: 16, MRV: 22, Zone: models.ZoneOnTrack,
			}},
		})
	}))
	defer ts.Close()

	out, err := execute(t, "--server", ts.URL, "volume", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 2026-03-02 to 2026-03-08")
	assert.Regexp(t, `chest\s+6\s+12\s+6\s+10/16/22\s+on_track`, out)
}

func TestPhaseAdvance(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/programs/3/phase", r.URL.Path)
		json.NewEncoder(w).Encode(phase.Transition{
			PreviousPhase: models.PhaseMEV, NewPhase: models.PhaseMAV, VolumeMultiplier: 1.2, ExercisesUpdated: 4,
		})
	}))
	defer ts.Close()

	out, err := execute(t, "--server", ts.URL, "phase", "advance", "3")
	require.NoError(t, err)
	assert.Equal(t, "mev -> mav (x1.20, 4 exercises updated)\n", out)

	_, err = execute(t, "--server", ts.URL, "phase", "advance", "abc")
	assert.Error(t, err)
}

func TestVolumeReportsServerErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "weeks must be between 1 and 52, got 99"})
	}))
	defer ts.Close()

	_, err := execute(t, "--server", ts.URL, "volume", "history", "--weeks", "99")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestUploadNeedsAPIKey(t *testing.T) {
	t.Setenv("PERIODIX_API_KEY", "")
	_, err := execute(t, "upload", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api-key")
}
