package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store/memstore"
)

// TestHandleMe verifies /api/v1/me echoes the identity resolved by the
// middleware, dev user or Tailscale login.
func TestHandleMe(t *testing.T) {
	tests := []struct {
		name string
		info UserInfo
	}{
		{"dev user", UserInfo{Login: "local", DisplayName: "Local Dev User"}},
		{"tailscale user", UserInfo{Login: "alice@example.com", DisplayName: "Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			req = req.WithContext(withIdentity(req.Context(), 1, tt.info))
			rec := httptest.NewRecorder()

			s.handleMe(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var info UserInfo
			if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if info != tt.info {
				t.Errorf("info = %+v, want %+v", info, tt.info)
			}
		})
	}
}

// TestHandleMeWithoutIdentity falls back to the dev user.
func TestHandleMeWithoutIdentity(t *testing.T) {
	s := &Server{}
	rec := httptest.NewRecorder()
	s.handleMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil).WithContext(context.Background()))

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info != devUser {
		t.Errorf("info = %+v, want %+v", info, devUser)
	}
}

// TestHandleExercisesEmpty verifies an empty catalog encodes as [] not null.
func TestHandleExercisesEmpty(t *testing.T) {
	s := &Server{store: memstore.New()}
	rec := httptest.NewRecorder()
	s.handleExercises(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: program 3", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: weeks", models.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: swap", models.ErrIncompatibleMutation), http.StatusConflict},
		{fmt.Errorf("%w: phase", models.ErrInvariantViolation), http.StatusInternalServerError},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
