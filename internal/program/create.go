package program

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
)

// DayInput describes one day of a new program.
type DayInput struct {
	DayOfWeek int        `json:"day_of_week"`
	DayName   string     `json:"day_name"`
	DayType   string     `json:"day_type"`
	Exercises []AddInput `json:"exercises"`
}

// CreateInput describes a new program.
type CreateInput struct {
	Name string     `json:"name"`
	Days []DayInput `json:"days"`
}

// Day is a program day with its exercises.
type Day struct {
	models.ProgramDay
	Exercises []models.ProgramExerciseDetail `json:"exercises"`
}

// View is a program with its full structure.
type View struct {
	models.Program
	Days []Day `json:"days"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: program name is required", models.ErrInvalidArgument)
	}
	if len(in.Days) == 0 {
		return fmt.Errorf("%w: program needs at least one day", models.ErrInvalidArgument)
	}
	seen := map[int]bool{}
	for _, d := range in.Days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return fmt.Errorf("%w: day_of_week %d outside [0,6]", models.ErrInvalidArgument, d.DayOfWeek)
		}
		if seen[d.DayOfWeek] {
			return fmt.Errorf("%w: day_of_week %d used twice", models.ErrInvalidArgument, d.DayOfWeek)
		}
		seen[d.DayOfWeek] = true
		if !models.DayType(d.DayType).Valid() {
			return fmt.Errorf("%w: day_type %q", models.ErrInvalidArgument, d.DayType)
		}
		for _, ex := range d.Exercises {
			if err := models.ValidateTargets(ex.TargetSets, ex.TargetRepRange, ex.TargetRIR); err != nil {
				return err
			}
		}
	}
	return nil
}

// Create stores a new program in the MEV phase, week 1. It becomes the user's
// active program.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput, now time.Time) (*View, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var programID int64
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		p := models.Program{
			UserID:         userID,
			Name:           strings.TrimSpace(in.Name),
			MesocycleWeek:  1,
			MesocyclePhase: models.PhaseMEV,
			CreatedAt:      now.UTC(),
		}
		if err := tx.CreateProgram(ctx, &p); err != nil {
			return fmt.Errorf("creating program: %w", err)
		}
		programID = p.ID

		for _, din := range in.Days {
			d := models.ProgramDay{
				ProgramID: p.ID,
				DayOfWeek: din.DayOfWeek,
				DayName:   din.DayName,
				DayType:   models.DayType(din.DayType),
			}
			if err := tx.CreateProgramDay(ctx, &d); err != nil {
				return fmt.Errorf("creating program day: %w", err)
			}
			for i, ex := range din.Exercises {
				if _, err := tx.Exercise(ctx, ex.ExerciseID); err != nil {
					return err
				}
				pe := models.ProgramExercise{
					ProgramDayID:   d.ID,
					ExerciseID:     ex.ExerciseID,
					OrderIndex:     i,
					TargetSets:     ex.TargetSets,
					TargetRepRange: ex.TargetRepRange,
					TargetRIR:      ex.TargetRIR,
				}
				if err := tx.CreateProgramExercise(ctx, &pe); err != nil {
					return fmt.Errorf("creating program exercise: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("program created", "program_id", programID, "user_id", userID, "days", len(in.Days))
	return s.Get(ctx, programID)
}

// Active returns the user's active program with its structure.
func (s *Service) Active(ctx context.Context, userID int64) (*View, error) {
	p, err := s.store.ActiveProgram(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.store, p)
}

// Get returns a program with its structure.
func (s *Service) Get(ctx context.Context, programID int64) (*View, error) {
	p, err := s.store.Program(ctx, programID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.store, p)
}

func (s *Service) view(ctx context.Context, r store.Reader, p *models.Program) (*View, error) {
	days, err := r.ProgramDays(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reading program days: %w", err)
	}
	rows, err := r.ProgramExercises(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reading program exercises: %w", err)
	}
	byDay := map[int64][]models.ProgramExerciseDetail{}
	for _, row := range rows {
		byDay[row.ProgramDayID] = append(byDay[row.ProgramDayID], row)
	}
	v := &View{Program: *p, Days: make([]Day, 0, len(days))}
	for _, d := range days {
		ex := byDay[d.ID]
		if ex == nil {
			ex = []models.ProgramExerciseDetail{}
		}
		v.Days = append(v.Days, Day{ProgramDay: d, Exercises: ex})
	}
	return v, nil
}
