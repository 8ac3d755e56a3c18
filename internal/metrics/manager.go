// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"strconv"

	"github.com/meltforce/periodix/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests         *prometheus.CounterVec
	CounterPhaseTransitions *prometheus.CounterVec
	CounterMutations        *prometheus.CounterVec

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("periodix", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("periodix", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"route", "method", "status"})
	counterPhaseTransitions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "phase_transitions_total",
		Help:      "Committed mesocycle phase transitions",
	}, []string{"from", "to", "mode"})
	counterMutations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "program_mutations_total",
		Help:      "Committed program mutations and whether they returned a volume warning",
	}, []string{"op", "warned"})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
		},
		[]string{"route"},
	)

	return &Manager{
		CounterRequests:         counterRequests,
		CounterPhaseTransitions: counterPhaseTransitions,
		CounterMutations:        counterMutations,
		HistRequestDuration:     histReqDuration,
	}
}

// PhaseTransition records a committed phase advance.
func (m *Manager) PhaseTransition(from, to models.Phase, manual bool) {
	mode := "auto"
	if manual {
		mode = "manual"
	}
	m.CounterPhaseTransitions.WithLabelValues(string(from), string(to), mode).Inc()
}

// ProgramMutation records a committed program mutation.
func (m *Manager) ProgramMutation(op string, warned bool) {
	m.CounterMutations.WithLabelValues(op, strconv.FormatBool(warned)).Inc()
}
