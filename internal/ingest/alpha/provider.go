package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/ingest"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/workout"
)

// sessionNamespace derives stable workout ids so re-importing an export is a
// no-op for sessions already stored.
var sessionNamespace = uuid.MustParse("6f1d3c2e-8a4b-4f5e-9c7d-2b1a0e9f8d7c")

// Provider imports Alpha Progression CSV exports as completed workouts.
type Provider struct {
	store store.Store
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider.
func NewProvider(s store.Store, log *slog.Logger) *Provider {
	return &Provider{store: s, log: log}
}

// SessionID is the workout id an exported session is stored under.
func SessionID(userID int64, s Session) uuid.UUID {
	key := strconv.FormatInt(userID, 10) + "|" + s.Date.Format(time.RFC3339) + "|" + s.Name
	return uuid.NewSHA1(sessionNamespace, []byte(key))
}

// Ingest parses an export and stores each new session as one completed workout.
// Warmups are dropped; exercises are matched to the catalog by name and
// unknown names are reported, not fatal.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int64) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing CSV: %v", models.ErrInvalidArgument, err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	unknown := map[string]bool{}

	err = p.store.WithTx(ctx, func(tx store.Tx) error {
		for _, s := range sessions {
			id := SessionID(userID, s)
			if _, err := tx.Workout(ctx, id); err == nil {
				result.SessionsSkipped++
				continue
			} else if !errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("checking session %s: %w", id, err)
			}

			w := models.Workout{
				ID:        id,
				UserID:    userID,
				Date:      time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC),
				Status:    models.WorkoutCompleted,
				CreatedAt: s.Date,
			}
			if err := tx.CreateWorkout(ctx, &w); err != nil {
				return fmt.Errorf("creating workout for %q: %w", s.Name, err)
			}

			var stored []models.Set
			for _, ex := range s.Exercises {
				working := ex.WorkingSets()
				result.SetsReceived += len(working)
				catalog, err := tx.ExerciseByName(ctx, ex.Name)
				if errors.Is(err, models.ErrNotFound) {
					unknown[ex.Name] = true
					continue
				}
				if err != nil {
					return fmt.Errorf("matching exercise %q: %w", ex.Name, err)
				}
				for i, set := range working {
					row := models.Set{
						WorkoutID:  id,
						ExerciseID: catalog.ID,
						SetNumber:  i + 1,
						WeightKg:   set.WeightKg,
						Reps:       set.Reps,
						RIR:        set.RIR,
						Timestamp:  s.Date,
					}
					if err := tx.AddSet(ctx, &row); err != nil {
						return fmt.Errorf("inserting set: %w", err)
					}
					stored = append(stored, row)
				}
			}

			w.TotalVolumeKg, w.AverageRIR = workout.Summarize(stored)
			if err := tx.UpdateWorkout(ctx, w); err != nil {
				return fmt.Errorf("updating workout totals: %w", err)
			}
			result.WorkoutsInserted++
			result.SetsInserted += len(stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for name := range unknown {
		result.UnknownExercises = append(result.UnknownExercises, name)
	}
	sort.Strings(result.UnknownExercises)
	if len(unknown) > 0 {
		p.log.Warn("alpha import skipped unknown exercises", "user_id", userID, "names", result.UnknownExercises)
	}
	p.log.Info("alpha import complete",
		"user_id", userID,
		"sessions", result.SessionsReceived,
		"inserted", result.WorkoutsInserted,
		"skipped", result.SessionsSkipped,
		"sets", result.SetsInserted,
	)
	return result, nil
}
