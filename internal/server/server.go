package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meltforce/periodix/internal/ingest/alpha"
	"github.com/meltforce/periodix/internal/metrics"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/phase"
	"github.com/meltforce/periodix/internal/program"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/volume"
	"github.com/meltforce/periodix/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Store    store.Store
	Volume   *volume.Aggregator
	Programs *program.Service
	Phases   *phase.Engine
	Workouts *workout.Service
	Alpha    *alpha.Provider
	// Metrics and Gatherer are optional; /metrics is served when Gatherer is set.
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
	APIKey   string
	Log      *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	volume   *volume.Aggregator
	programs *program.Service
	phases   *phase.Engine
	workouts *workout.Service
	alpha    *alpha.Provider
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	whois    WhoIser
	now      func() time.Time
}

// New creates a new Server with all routes configured.
func New(d Deps) *Server {
	s := &Server{
		store:    d.Store,
		volume:   d.Volume,
		programs: d.Programs,
		phases:   d.Phases,
		workouts: d.Workouts,
		alpha:    d.Alpha,
		metrics:  d.Metrics,
		gatherer: d.Gatherer,
		log:      d.Log,
		apiKey:   d.APIKey,
		router:   chi.NewRouter(),
		now:      time.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev user to Tailscale
// WhoIs lookups.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identity).Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(Instrument(s.metrics))
	}
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		// Import endpoints (API key required)
		r.With(APIKeyAuth(s.apiKey)).Post("/import/alpha", s.handleAlphaImport)

		r.Get("/me", s.handleMe)
		r.Get("/exercises", s.handleExercises)

		r.Get("/volume/current", s.handleCurrentVolume)
		r.Get("/volume/history", s.handleVolumeHistory)
		r.Get("/volume/landmarks", s.handleLandmarks)

		r.Get("/programs/active", s.handleActiveProgram)
		r.Get("/programs/active/volume", s.handleProgramVolume)
		r.Post("/programs", s.handleCreateProgram)
		r.Post("/programs/{id}/phase", s.handleAdvancePhase)

		r.Post("/program-days/{id}/exercises", s.handleAddExercise)
		r.Put("/program-days/{id}/order", s.handleReorder)
		r.Patch("/program-exercises/{id}", s.handleUpdateExercise)
		r.Delete("/program-exercises/{id}", s.handleDeleteExercise)
		r.Post("/program-exercises/{id}/swap", s.handleSwapExercise)

		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/sets", s.handleLogSet)
		r.Post("/workouts/{id}/start", s.handleWorkoutTransition(models.WorkoutInProgress))
		r.Post("/workouts/{id}/complete", s.handleWorkoutTransition(models.WorkoutCompleted))
		r.Post("/workouts/{id}/cancel", s.handleWorkoutTransition(models.WorkoutCancelled))
	})
}
