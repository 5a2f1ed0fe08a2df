package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sorso/internal/core"
	"sorso/internal/storage"
)

// handleProgress publishes the tracker's state: running total, target,
// and today's entries. Reading it also runs the rollover check, matching
// the app-becomes-active behavior of the mobile client.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.tracker.ResetIfNeeded(r.Context())
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

type addDrinkRequest struct {
	Amount int `json:"amount"`
}

// handleAddDrink is both the UI's add button and the externally invocable
// quick-add trigger: body {"amount": N} in milliliters.
func (s *Server) handleAddDrink(w http.ResponseWriter, r *http.Request) {
	var req addDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.tracker.AddDrink(r.Context(), req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleDeleteDrink removes an entry. Unknown ids are a silent no-op, so
// the response is 204 either way; only a malformed id is an error.
func (s *Server) handleDeleteDrink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	s.tracker.DeleteDrink(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

type updateDrinkRequest struct {
	Timestamp time.Time `json:"timestamp"`
}

// handleUpdateDrink corrects an entry's timestamp in place.
func (s *Server) handleUpdateDrink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req updateDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Timestamp.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return
	}

	s.tracker.UpdateDrinkEntry(r.Context(), id, req.Timestamp)
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory returns the archived days plus a live entry for today,
// newest first. Backs the history list and the share card.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.tracker.ResetIfNeeded(r.Context())
	snap := s.tracker.Snapshot()

	list, err := s.history.FullListWithToday(r.Context(), snap.CurrentAmount)
	if err != nil {
		slog.ErrorContext(r.Context(), "History read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleHistoryWeek returns the dense seven-day window the chart renders:
// oldest first, missing days as zero, today live.
func (s *Server) handleHistoryWeek(w http.ResponseWriter, r *http.Request) {
	s.tracker.ResetIfNeeded(r.Context())
	snap := s.tracker.Snapshot()

	window, err := s.history.Last7Days(r.Context(), snap.CurrentAmount)
	if err != nil {
		slog.ErrorContext(r.Context(), "History window read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, window)
}

type settings struct {
	TargetAmount         int  `json:"targetAmount"`
	HealthSyncEnabled    bool `json:"healthSyncEnabled"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := s.tracker.Snapshot()

	healthSync, err := s.store.GetBool(ctx, storage.KeyHealthSyncEnabled, false)
	if err != nil {
		slog.WarnContext(ctx, "Read healthKitSyncEnabled failed", "error", err)
	}
	notifications, err := s.store.GetBool(ctx, storage.KeyNotifications, false)
	if err != nil {
		slog.WarnContext(ctx, "Read notificationPermissions failed", "error", err)
	}

	writeJSON(w, http.StatusOK, settings{
		TargetAmount:         snap.TargetAmount,
		HealthSyncEnabled:    healthSync,
		NotificationsEnabled: notifications,
	})
}

type putSettingsRequest struct {
	TargetAmount         *int  `json:"targetAmount"`
	HealthSyncEnabled    *bool `json:"healthSyncEnabled"`
	NotificationsEnabled *bool `json:"notificationsEnabled"`
}

// handlePutSettings applies partial settings updates. Absent fields are
// left unchanged.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req putSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if req.TargetAmount != nil {
		if err := s.tracker.SetTarget(ctx, *req.TargetAmount); err != nil {
			if err == core.ErrInvalidTarget {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "settings update failed")
			return
		}
	}
	if req.HealthSyncEnabled != nil {
		s.tracker.SetHealthSyncEnabled(ctx, *req.HealthSyncEnabled)
	}
	if req.NotificationsEnabled != nil {
		s.tracker.SetNotificationsEnabled(ctx, *req.NotificationsEnabled)
	}

	s.handleGetSettings(w, r)
}

// handleReminders exposes the currently installed reminder set for the
// UI layer that mirrors it into the platform notification center.
func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	pending, err := s.scheduler.Pending(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reminder read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reminders unavailable")
		return
	}
	writeJSON(w, http.StatusOK, pending)
}
