package mcp

import (
	"context"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/program"
	"github.com/meltforce/periodix/internal/volume"
)

// DataSource abstracts the read side the MCP tools need. Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	CurrentWeekVolume(ctx context.Context, userID int64) (*models.CurrentWeekVolume, error)
	VolumeHistory(ctx context.Context, userID int64, weeks int, muscleGroup string) (*models.VolumeHistory, error)
	// ProgramVolume returns nil, nil when the user has no program.
	ProgramVolume(ctx context.Context, userID int64) (*models.ProgramVolumeAnalysis, error)
	ActiveProgram(ctx context.Context, userID int64) (*program.View, error)
	Landmarks(ctx context.Context) (map[models.MuscleGroup]volume.Landmark, error)
}

// Local serves tools from the in-process services.
type Local struct {
	volume   *volume.Aggregator
	programs *program.Service
	now      func() time.Time
}

var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource over the server's own services.
func NewLocal(agg *volume.Aggregator, programs *program.Service) *Local {
	return &Local{volume: agg, programs: programs, now: time.Now}
}

func (l *Local) CurrentWeekVolume(ctx context.Context, userID int64) (*models.CurrentWeekVolume, error) {
	return l.volume.CurrentWeek(ctx, userID, l.now())
}

func (l *Local) VolumeHistory(ctx context.Context, userID int64, weeks int, muscleGroup string) (*models.VolumeHistory, error) {
	return l.volume.History(ctx, userID, l.now(), weeks, muscleGroup)
}

func (l *Local) ProgramVolume(ctx context.Context, userID int64) (*models.ProgramVolumeAnalysis, error) {
	return l.volume.ProgramAnalysis(ctx, userID)
}

func (l *Local) ActiveProgram(ctx context.Context, userID int64) (*program.View, error) {
	return l.programs.Active(ctx, userID)
}

func (l *Local) Landmarks(context.Context) (map[models.MuscleGroup]volume.Landmark, error) {
	return l.volume.Registry().All(), nil
}
