package volume

import (
	"time"

	"github.com/meltforce/periodix/internal/models"
)

// Classify buckets completed sets into exactly one zone:
//
//	completed < mev         below_mev
//	mev <= completed < mav  adequate
//	mav <= completed <= mrv optimal
//	completed > mrv         above_mrv
func Classify(completed int, l Landmark) models.Zone {
	switch {
	case completed < l.MEV:
		return models.ZoneBelowMEV
	case completed < l.MAV:
		return models.ZoneAdequate
	case completed <= l.MRV:
		return models.ZoneOptimal
	default:
		return models.ZoneAboveMRV
	}
}

// ClassifyWithTarget is Classify with a progress relaxation: while the week is
// still running at now, a user whose plan sits in [mev, mrv] and who has done
// at least half of it but not all of it is on_track.
func ClassifyWithTarget(completed, planned int, l Landmark, week Week, now time.Time) models.Zone {
	if week.InProgress(now) &&
		planned >= l.MEV && planned <= l.MRV &&
		completed < planned && 2*completed >= planned {
		return models.ZoneOnTrack
	}
	return Classify(completed, l)
}

// CompletionPercentage is completed/planned*100 rounded to one decimal, or 0
// when nothing is planned.
func CompletionPercentage(completed, planned int) float64 {
	if planned <= 0 {
		return 0
	}
	return roundTenth(float64(completed) / float64(planned) * 100)
}
