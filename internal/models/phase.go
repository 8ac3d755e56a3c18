package models

import "fmt"

// Phase is a mesocycle phase.
type Phase string

const (
	PhaseMEV    Phase = "mev"
	PhaseMAV    Phase = "mav"
	PhaseMRV    Phase = "mrv"
	PhaseDeload Phase = "deload"
)

// Phases in cycle order.
var Phases = []Phase{PhaseMEV, PhaseMAV, PhaseMRV, PhaseDeload}

// Valid reports whether p is one of the four phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseMEV, PhaseMAV, PhaseMRV, PhaseDeload:
		return true
	}
	return false
}

// ParsePhase rejects anything outside the four phases.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown phase %q", ErrInvalidArgument, s)
	}
	return p, nil
}
