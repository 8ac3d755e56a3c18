// Package phase advances a program through the MEV -> MAV -> MRV -> deload
// cycle and rescales every prescribed set count by the transition multiplier.
package phase

import (
	"fmt"
	"math"

	"github.com/meltforce/periodix/internal/models"
)

type edge struct {
	next       models.Phase
	multiplier float64
}

// cycle is the canonical transition table.
var cycle = map[models.Phase]edge{
	models.PhaseMEV:    {next: models.PhaseMAV, multiplier: 1.20},
	models.PhaseMAV:    {next: models.PhaseMRV, multiplier: 1.15},
	models.PhaseMRV:    {next: models.PhaseDeload, multiplier: 0.50},
	models.PhaseDeload: {next: models.PhaseMEV, multiplier: 2.00},
}

// relativeVolume approximates each phase's volume relative to MEV. Used only
// for manual jumps that are not a canonical edge.
var relativeVolume = map[models.Phase]float64{
	models.PhaseMEV:    1.00,
	models.PhaseMAV:    1.20,
	models.PhaseMRV:    1.38,
	models.PhaseDeload: 0.69,
}

// Next returns the canonical successor of current and its multiplier. A phase
// outside the cycle can only come from corrupted data.
func Next(current models.Phase) (models.Phase, float64, error) {
	e, ok := cycle[current]
	if !ok {
		return "", 0, fmt.Errorf("%w: stored phase %q is not part of the cycle", models.ErrInvariantViolation, current)
	}
	return e.next, e.multiplier, nil
}

// Multiplier resolves the volume multiplier of a manual jump from previous to
// target: the canonical edge multiplier when there is one, 1.0 for staying put,
// otherwise the ratio of relative volumes.
func Multiplier(previous, target models.Phase) (float64, error) {
	if !target.Valid() {
		return 0, fmt.Errorf("%w: target phase %q", models.ErrInvalidArgument, target)
	}
	if e, ok := cycle[previous]; ok && e.next == target {
		return e.multiplier, nil
	}
	if previous == target {
		return 1.0, nil
	}
	from, ok := relativeVolume[previous]
	if !ok {
		return 0, fmt.Errorf("%w: no multiplier from stored phase %q to %q", models.ErrInvariantViolation, previous, target)
	}
	return relativeVolume[target] / from, nil
}

// Rescale applies multiplier to sets, rounding half away from zero and
// clamping into the target set bounds.
func Rescale(sets int, multiplier float64) int {
	return models.ClampTargetSets(int(math.Round(float64(sets) * multiplier)))
}
