// Package volume classifies weekly per-muscle-group training volume against
// MEV/MAV/MRV landmarks and aggregates completed and planned sets.
package volume

import (
	"fmt"

	"github.com/meltforce/periodix/internal/models"
)

// Landmark holds the weekly set thresholds of one muscle group.
// MEV <= MAV <= MRV.
type Landmark struct {
	MEV int `json:"mev" yaml:"mev"`
	MAV int `json:"mav" yaml:"mav"`
	MRV int `json:"mrv" yaml:"mrv"`
}

func (l Landmark) validate() error {
	if l.MEV < 0 || l.MEV > l.MAV || l.MAV > l.MRV {
		return fmt.Errorf("%w: landmarks must satisfy 0 <= mev <= mav <= mrv, got %d/%d/%d",
			models.ErrInvalidArgument, l.MEV, l.MAV, l.MRV)
	}
	return nil
}

var defaultLandmarks = map[models.MuscleGroup]Landmark{
	models.Chest:      {MEV: 8, MAV: 14, MRV: 22},
	models.BackLats:   {MEV: 10, MAV: 16, MRV: 25},
	models.BackTraps:  {MEV: 4, MAV: 12, MRV: 26},
	models.FrontDelts: {MEV: 0, MAV: 6, MRV: 12},
	models.SideDelts:  {MEV: 8, MAV: 16, MRV: 26},
	models.RearDelts:  {MEV: 6, MAV: 12, MRV: 22},
	models.Biceps:     {MEV: 8, MAV: 14, MRV: 26},
	models.Triceps:    {MEV: 6, MAV: 10, MRV: 18},
	models.Forearms:   {MEV: 2, MAV: 10, MRV: 25},
	models.Quads:      {MEV: 8, MAV: 14, MRV: 20},
	models.Hamstrings: {MEV: 6, MAV: 10, MRV: 20},
	models.Glutes:     {MEV: 0, MAV: 8, MRV: 16},
	models.Calves:     {MEV: 8, MAV: 12, MRV: 20},
	models.Abs:        {MEV: 0, MAV: 16, MRV: 25},
}

// Registry is an immutable muscle group -> Landmark mapping. Build it once and
// hand it to the components that classify.
type Registry struct {
	landmarks map[models.MuscleGroup]Landmark
}

// DefaultRegistry returns the built-in landmark table.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(nil)
	return r
}

// NewRegistry starts from the built-in table and applies overrides. Override
// keys must be known muscle groups and values must be ordered.
func NewRegistry(overrides map[string]Landmark) (*Registry, error) {
	m := make(map[models.MuscleGroup]Landmark, len(defaultLandmarks))
	for g, l := range defaultLandmarks {
		m[g] = l
	}
	for name, l := range overrides {
		g, err := models.ParseMuscleGroup(name)
		if err != nil {
			return nil, err
		}
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("landmarks for %s: %w", g, err)
		}
		m[g] = l
	}
	return &Registry{landmarks: m}, nil
}

// For returns the landmarks of g. Unknown groups resolve to the zero Landmark.
func (r *Registry) For(g models.MuscleGroup) Landmark {
	return r.landmarks[g]
}

// All returns a copy of the table keyed by group name.
func (r *Registry) All() map[models.MuscleGroup]Landmark {
	out := make(map[models.MuscleGroup]Landmark, len(r.landmarks))
	for g, l := range r.landmarks {
		out[g] = l
	}
	return out
}

// Warning returns the advisory text for zone, or "" when the zone needs none.
func (r *Registry) Warning(zone models.Zone, g models.MuscleGroup) string {
	l := r.For(g)
	switch zone {
	case models.ZoneBelowMEV:
		return fmt.Sprintf("%s volume is below MEV (%d sets/week); add sets to keep progressing", g, l.MEV)
	case models.ZoneAboveMRV:
		return fmt.Sprintf("%s volume exceeds MRV (%d sets/week); reduce sets to stay recoverable", g, l.MRV)
	}
	return ""
}
