package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/program"
)

func (s *Server) handleActiveProgram(w http.ResponseWriter, r *http.Request) {
	v, err := s.programs.Active(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleProgramVolume answers null when the user has no program.
func (s *Server) handleProgramVolume(w http.ResponseWriter, r *http.Request) {
	a, err := s.volume.ProgramAnalysis(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var in program.CreateInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.programs.Create(r.Context(), userIDFromContext(r), in, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

type advanceRequest struct {
	Manual      bool   `json:"manual"`
	TargetPhase string `json:"target_phase"`
}

func (s *Server) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req advanceRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownProgram(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.phases.Advance(r.Context(), id, req.Manual, req.TargetPhase)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	dayID, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in program.AddInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownDay(r.Context(), userIDFromContext(r), dayID); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.programs.AddExercise(r.Context(), dayID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type reorderRequest struct {
	Items []models.OrderUpdate `json:"items"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	dayID, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownDay(r.Context(), userIDFromContext(r), dayID); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.programs.Reorder(r.Context(), dayID, req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in program.UpdateInput
	if err := decodeJSON(r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownProgramExercise(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.programs.UpdateExercise(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownProgramExercise(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.programs.DeleteExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type swapRequest struct {
	ExerciseID int64 `json:"exercise_id"`
}

func (s *Server) handleSwapExercise(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req swapRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ExerciseID <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: exercise_id is required", models.ErrInvalidArgument))
		return
	}
	if err := s.ownProgramExercise(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.programs.SwapExercise(r.Context(), id, req.ExerciseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ownProgram reports another user's program as missing.
func (s *Server) ownProgram(ctx context.Context, userID, programID int64) error {
	p, err := s.store.Program(ctx, programID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return fmt.Errorf("program %d: %w", programID, models.ErrNotFound)
	}
	return nil
}

func (s *Server) ownDay(ctx context.Context, userID, dayID int64) error {
	d, err := s.store.ProgramDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := s.ownProgram(ctx, userID, d.ProgramID); err != nil {
		return fmt.Errorf("program day %d: %w", dayID, models.ErrNotFound)
	}
	return nil
}

func (s *Server) ownProgramExercise(ctx context.Context, userID, id int64) error {
	pe, err := s.store.ProgramExercise(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ownProgram(ctx, userID, pe.ProgramID); err != nil {
		return fmt.Errorf("program exercise %d: %w", id, models.ErrNotFound)
	}
	return nil
}
