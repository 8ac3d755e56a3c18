// Package catalog loads the built-in exercise reference data. Muscle group
// labels are validated here, where exercise data enters the system.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var builtin []byte

type entry struct {
	Name            string   `yaml:"name"`
	MuscleGroups    []string `yaml:"muscle_groups"`
	Equipment       string   `yaml:"equipment"`
	MovementPattern string   `yaml:"movement_pattern"`
}

type document struct {
	Exercises []entry `yaml:"exercises"`
}

// Builtin parses the embedded catalog.
func Builtin() ([]models.Exercise, error) {
	return Parse(builtin)
}

// Parse reads a catalog document. Every exercise needs a unique name and at
// least one known muscle group.
func Parse(data []byte) ([]models.Exercise, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing exercise catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Exercises))
	out := make([]models.Exercise, 0, len(doc.Exercises))
	for i, e := range doc.Exercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("exercise #%d: name is required", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("exercise %q: duplicate name", name)
		}
		seen[key] = true

		groups, err := models.ParseMuscleGroups(e.MuscleGroups)
		if err != nil {
			return nil, fmt.Errorf("exercise %q: %w", name, err)
		}
		out = append(out, models.Exercise{
			Name:            name,
			MuscleGroups:    groups,
			Equipment:       e.Equipment,
			MovementPattern: e.MovementPattern,
		})
	}
	return out, nil
}

// Sync upserts exercises by name in one unit of work and returns how many
// were written.
func Sync(ctx context.Context, s store.Store, exercises []models.Exercise) (int, error) {
	err := s.WithTx(ctx, func(tx store.Tx) error {
		for i := range exercises {
			if err := tx.UpsertExercise(ctx, &exercises[i]); err != nil {
				return fmt.Errorf("upserting %q: %w", exercises[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(exercises), nil
}
