package volume

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// ProgramAnalysis classifies the planned volume of the user's active program.
// It returns nil, nil when the user has no program.
func (a *Aggregator) ProgramAnalysis(ctx context.Context, userID int64) (*models.ProgramVolumeAnalysis, error) {
	p, err := a.store.ActiveProgram(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active program: %w", err)
	}
	return a.AnalyzeProgram(ctx, a.store, p)
}

// AnalyzeProgram sums target_sets per muscle group across every day of p,
// reading through r so callers inside a unit of work see their own writes.
// Planned volume has no completed axis, so the plain classifier applies.
func (a *Aggregator) AnalyzeProgram(ctx context.Context, r store.Reader, p *models.Program) (*models.ProgramVolumeAnalysis, error) {
	rows, err := r.ProgramExercises(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reading program exercises: %w", err)
	}
	planned := fanOutPlanned(rows)

	out := &models.ProgramVolumeAnalysis{
		ProgramID:      p.ID,
		MesocyclePhase: p.MesocyclePhase,
		MuscleGroups:   make([]models.PlannedMuscleGroupVolume, 0, len(planned)),
	}
	for mg, n := range planned {
		out.MuscleGroups = append(out.MuscleGroups, a.plannedRow(mg, n))
	}
	sort.Slice(out.MuscleGroups, func(i, j int) bool { return out.MuscleGroups[i].MuscleGroup < out.MuscleGroups[j].MuscleGroup })
	return out, nil
}

// GroupWarnings analyzes p and returns the warnings of the given groups, in
// order, skipping groups whose planned volume is within range. A group with no
// planned sets left counts as zero.
func (a *Aggregator) GroupWarnings(ctx context.Context, r store.Reader, p *models.Program, groups []models.MuscleGroup) ([]string, error) {
	analysis, err := a.AnalyzeProgram(ctx, r, p)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[models.MuscleGroup]models.PlannedMuscleGroupVolume, len(analysis.MuscleGroups))
	for _, row := range analysis.MuscleGroups {
		byGroup[row.MuscleGroup] = row
	}

	var warnings []string
	seen := map[models.MuscleGroup]bool{}
	for _, mg := range groups {
		if seen[mg] {
			continue
		}
		seen[mg] = true
		row, ok := byGroup[mg]
		if !ok {
			row = a.plannedRow(mg, 0)
		}
		if row.Warning != nil {
			warnings = append(warnings, *row.Warning)
		}
	}
	return warnings, nil
}

func (a *Aggregator) plannedRow(mg models.MuscleGroup, planned int) models.PlannedMuscleGroupVolume {
	l := a.reg.For(mg)
	zone := Classify(planned, l)
	return models.PlannedMuscleGroupVolume{
		MuscleGroup: mg,
		PlannedSets: planned,
		MEV:         l.MEV,
		MAV:         l.MAV,
		MRV:         l.MRV,
		Zone:        zone,
		Warning:     optional(a.reg.Warning(zone, mg)),
	}
}
