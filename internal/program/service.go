// Package program creates training programs and guards every change to their
// exercises with a volume check of the affected muscle groups.
package program

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/volume"
)

// Observer is told about every committed mutation.
type Observer interface {
	ProgramMutation(op string, warned bool)
}

// Service owns program writes.
type Service struct {
	store    store.Store
	volume   *volume.Aggregator
	observer Observer
	log      *slog.Logger
}

// NewService creates a Service. observer and log may be nil.
func NewService(s store.Store, agg *volume.Aggregator, observer Observer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: s, volume: agg, observer: observer, log: log}
}

// MutationResult is returned by every guarded mutation. VolumeWarning is nil
// when all affected muscle groups stay within [MEV, MRV].
type MutationResult struct {
	ProgramExercise *models.ProgramExerciseDetail  `json:"program_exercise,omitempty"`
	DeletedID       int64                          `json:"deleted_id,omitempty"`
	Exercises       []models.ProgramExerciseDetail `json:"exercises,omitempty"`
	VolumeWarning   *string                        `json:"volume_warning"`
}

// warnFor recomputes planned volume of the program owning dayID and returns
// the joined warnings of groups, or nil.
func (s *Service) warnFor(ctx context.Context, tx store.Tx, dayID int64, groups []models.MuscleGroup) (*string, error) {
	day, err := tx.ProgramDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	p, err := tx.Program(ctx, day.ProgramID)
	if err != nil {
		return nil, err
	}
	warnings, err := s.volume.GroupWarnings(ctx, tx, p, groups)
	if err != nil {
		return nil, fmt.Errorf("recomputing volume: %w", err)
	}
	if len(warnings) == 0 {
		return nil, nil
	}
	w := strings.Join(warnings, "; ")
	return &w, nil
}

func (s *Service) committed(op string, res *MutationResult) {
	warned := res.VolumeWarning != nil
	if warned {
		s.log.Info("program mutation left volume out of range", "op", op, "warning", *res.VolumeWarning)
	}
	if s.observer != nil {
		s.observer.ProgramMutation(op, warned)
	}
}

func primaries(groups ...models.MuscleGroups) []models.MuscleGroup {
	var out []models.MuscleGroup
	for _, g := range groups {
		if p, ok := g.Primary(); ok {
			out = append(out, p)
		}
	}
	return out
}
