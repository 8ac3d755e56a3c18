package models

import (
	"fmt"
	"strings"
)

// MuscleGroup is a training classification axis. Exercises carry one or more.
type MuscleGroup string

const (
	Chest      MuscleGroup = "chest"
	BackLats   MuscleGroup = "back_lats"
	BackTraps  MuscleGroup = "back_traps"
	FrontDelts MuscleGroup = "front_delts"
	SideDelts  MuscleGroup = "side_delts"
	RearDelts  MuscleGroup = "rear_delts"
	Biceps     MuscleGroup = "biceps"
	Triceps    MuscleGroup = "triceps"
	Forearms   MuscleGroup = "forearms"
	Quads      MuscleGroup = "quads"
	Hamstrings MuscleGroup = "hamstrings"
	Glutes     MuscleGroup = "glutes"
	Calves     MuscleGroup = "calves"
	Abs        MuscleGroup = "abs"
)

// AllMuscleGroups lists every known group in a stable order.
var AllMuscleGroups = []MuscleGroup{
	Chest, BackLats, BackTraps, FrontDelts, SideDelts, RearDelts,
	Biceps, Triceps, Forearms, Quads, Hamstrings, Glutes, Calves, Abs,
}

var knownMuscleGroups = func() map[MuscleGroup]bool {
	m := make(map[MuscleGroup]bool, len(AllMuscleGroups))
	for _, g := range AllMuscleGroups {
		m[g] = true
	}
	return m
}()

// Valid reports whether g is one of the enumerated muscle groups.
func (g MuscleGroup) Valid() bool {
	return knownMuscleGroups[g]
}

// ParseMuscleGroup matches s exactly (after trimming and lowercasing) against
// the enumerated groups. Substring matches are never accepted.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	g := MuscleGroup(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: unknown muscle group %q", ErrInvalidArgument, s)
	}
	return g, nil
}

// MuscleGroups is the ordered membership set of an exercise. The first element
// is the primary muscle group; there are no duplicates.
type MuscleGroups []MuscleGroup

// ParseMuscleGroups validates raw labels into a MuscleGroups set, keeping the
// first occurrence order and dropping duplicates. An empty set is rejected.
func ParseMuscleGroups(raw []string) (MuscleGroups, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: exercise has no muscle groups", ErrInvalidArgument)
	}
	out := make(MuscleGroups, 0, len(raw))
	seen := make(map[MuscleGroup]bool, len(raw))
	for _, r := range raw {
		g, err := ParseMuscleGroup(r)
		if err != nil {
			return nil, err
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out, nil
}

// Primary returns the first (primary) muscle group.
func (m MuscleGroups) Primary() (MuscleGroup, bool) {
	if len(m) == 0 {
		return "", false
	}
	return m[0], true
}

// Contains reports exact membership.
func (m MuscleGroups) Contains(g MuscleGroup) bool {
	for _, x := range m {
		if x == g {
			return true
		}
	}
	return false
}

// Strings returns the labels, e.g. for a text[] column.
func (m MuscleGroups) Strings() []string {
	out := make([]string, len(m))
	for i, g := range m {
		out[i] = string(g)
	}
	return out
}
