package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/workout"
)

func workoutID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid workout ID", models.ErrInvalidArgument)
	}
	return id, nil
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var in workout.CreateInput
	if err := decodeJSON(r, &in, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	wo, err := s.workouts.Create(r.Context(), userIDFromContext(r), in, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := workoutID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.workouts.Get(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	id, err := workoutID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in workout.SetInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.workouts.LogSet(r.Context(), userIDFromContext(r), id, in, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleWorkoutTransition(next models.WorkoutStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := workoutID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		wo, err := s.workouts.Transition(r.Context(), userIDFromContext(r), id, next)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wo)
	}
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.alpha.Ingest(r.Context(), r.Body, userIDFromContext(r))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
