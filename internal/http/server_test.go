package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"sorso/internal/core"
	"sorso/internal/history"
	"sorso/internal/reminder"
	"sorso/internal/storage"
	"sorso/internal/tracker"
)

func newTestServer(t *testing.T) (*Server, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	sched := reminder.NewMemoryScheduler()
	hist := history.NewLog(store)
	trk := tracker.New(store, hist, reminder.NewNotifier(store, sched), nil, nil)
	srv := NewServer(":0", trk, hist, sched, store)
	t.Cleanup(srv.rateLimiter.stop)
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestAddDrinkAndProgress(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/drinks", map[string]int{"amount": 330})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /drinks = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	entry := decode[core.DrinkEntry](t, rec)
	if entry.Amount != 330 || entry.ID == uuid.Nil {
		t.Fatalf("entry = %+v", entry)
	}

	rec = doJSON(t, srv, http.MethodGet, "/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /progress = %d, want 200", rec.Code)
	}
	snap := decode[core.TrackerState](t, rec)
	if snap.CurrentAmount != 330 || len(snap.Entries) != 1 {
		t.Fatalf("progress = %+v", snap)
	}
	if snap.TargetAmount != core.DefaultTargetAmount {
		t.Fatalf("targetAmount = %d, want default %d", snap.TargetAmount, core.DefaultTargetAmount)
	}
}

func TestAddDrinkRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/drinks", map[string]int{"amount": 0})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("amount 0 = %d, want 422", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/drinks", bytes.NewBufferString("not json"))
	out := httptest.NewRecorder()
	srv.Handler.ServeHTTP(out, req)
	if out.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", out.Code)
	}
}

func TestDeleteDrink(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/drinks", map[string]int{"amount": 200})
	entry := decode[core.DrinkEntry](t, rec)

	rec = doJSON(t, srv, http.MethodDelete, "/drinks/"+entry.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d, want 204", rec.Code)
	}

	// Unknown id: still 204, deletion is a silent no-op.
	rec = doJSON(t, srv, http.MethodDelete, "/drinks/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE unknown = %d, want 204", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/drinks/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("DELETE malformed id = %d, want 400", rec.Code)
	}

	snap := decode[core.TrackerState](t, doJSON(t, srv, http.MethodGet, "/progress", nil))
	if snap.CurrentAmount != 0 || len(snap.Entries) != 0 {
		t.Fatalf("progress after delete = %+v", snap)
	}
}

func TestUpdateDrinkTimestamp(t *testing.T) {
	srv, _ := newTestServer(t)

	entry := decode[core.DrinkEntry](t, doJSON(t, srv, http.MethodPost, "/drinks", map[string]int{"amount": 250}))

	moved := entry.Timestamp.Add(-2 * time.Hour)
	rec := doJSON(t, srv, http.MethodPatch, "/drinks/"+entry.ID.String(),
		updateDrinkRequest{Timestamp: moved})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("PATCH = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}

	snap := decode[core.TrackerState](t, doJSON(t, srv, http.MethodGet, "/progress", nil))
	if len(snap.Entries) != 1 || !snap.Entries[0].Timestamp.Equal(moved) {
		t.Fatalf("entry after update = %+v, want timestamp %v", snap.Entries, moved)
	}
	if snap.Entries[0].Amount != 250 {
		t.Fatalf("update changed amount: %+v", snap.Entries[0])
	}

	rec = doJSON(t, srv, http.MethodPatch, "/drinks/"+entry.ID.String(), map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PATCH without timestamp = %d, want 400", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodPost, "/drinks", map[string]int{"amount": 650}); rec.Code != http.StatusCreated {
		t.Fatalf("POST /drinks = %d", rec.Code)
	}

	list := decode[[]core.DailyTotal](t, doJSON(t, srv, http.MethodGet, "/history", nil))
	if len(list) != 1 || list[0].Amount != 650 {
		t.Fatalf("history = %+v, want single live today with 650", list)
	}

	week := decode[[]core.DailyTotal](t, doJSON(t, srv, http.MethodGet, "/history/week", nil))
	if len(week) != 7 {
		t.Fatalf("week = %d days, want 7", len(week))
	}
	if week[6].Amount != 650 {
		t.Fatalf("week[6] = %+v, want today's 650 last", week[6])
	}
	for i := 0; i < 6; i++ {
		if week[i].Amount != 0 {
			t.Fatalf("week[%d] = %+v, want zero for missing day", i, week[i])
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	got := decode[settings](t, doJSON(t, srv, http.MethodGet, "/settings", nil))
	if got.TargetAmount != core.DefaultTargetAmount || got.HealthSyncEnabled || got.NotificationsEnabled {
		t.Fatalf("default settings = %+v", got)
	}

	target := 2500
	sync := true
	rec := doJSON(t, srv, http.MethodPut, "/settings", putSettingsRequest{
		TargetAmount:      &target,
		HealthSyncEnabled: &sync,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /settings = %d (body %s)", rec.Code, rec.Body.String())
	}
	got = decode[settings](t, rec)
	if got.TargetAmount != 2500 || !got.HealthSyncEnabled || got.NotificationsEnabled {
		t.Fatalf("settings after update = %+v", got)
	}

	bad := 0
	rec = doJSON(t, srv, http.MethodPut, "/settings", putSettingsRequest{TargetAmount: &bad})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("PUT invalid target = %d, want 422", rec.Code)
	}
}

func TestRateLimiterEvictsStaleEntries(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	// Per-IP entries for arbitrary client addresses must not accumulate
	// forever; the cleanup pass drops everything idle past the window.
	for i := 0; i < 1000; i++ {
		if !rl.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256)) {
			t.Fatalf("first request from fresh IP %d denied", i)
		}
	}

	rl.mu.Lock()
	if len(rl.clients) != 1000 {
		rl.mu.Unlock()
		t.Fatalf("clients = %d, want 1000 before cleanup", len(rl.clients))
	}
	for _, client := range rl.clients {
		client.lastRequest = time.Now().Add(-11 * time.Minute)
	}
	// One recent client stays.
	rl.clients["10.1.0.1"] = &clientInfo{lastRequest: time.Now(), requests: 1}
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.clients) != 1 {
		t.Fatalf("clients = %d after cleanup, want 1", len(rl.clients))
	}
	if _, ok := rl.clients["10.1.0.1"]; !ok {
		t.Fatal("recent client evicted")
	}
}

func TestServerShutdownStopsRateLimiter(t *testing.T) {
	srv, _ := newTestServer(t)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	// Second shutdown is a no-op, and stop() tolerates repeat calls.
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("repeat Shutdown: %v", err)
	}
	srv.rateLimiter.stop()

	select {
	case <-srv.rateLimiter.stopCleanup:
	default:
		t.Fatal("cleanup goroutine not signalled to stop")
	}
}

func TestRemindersFollowSettings(t *testing.T) {
	srv, _ := newTestServer(t)

	pending := decode[[]reminder.Request](t, doJSON(t, srv, http.MethodGet, "/reminders", nil))
	if len(pending) != 0 {
		t.Fatalf("reminders before permission = %+v, want none", pending)
	}

	granted := true
	if rec := doJSON(t, srv, http.MethodPut, "/settings", putSettingsRequest{NotificationsEnabled: &granted}); rec.Code != http.StatusOK {
		t.Fatalf("PUT /settings = %d", rec.Code)
	}

	pending = decode[[]reminder.Request](t, doJSON(t, srv, http.MethodGet, "/reminders", nil))
	if len(pending) != 3 {
		t.Fatalf("reminders at zero progress = %d, want 3", len(pending))
	}
	for i, hour := range []int{12, 16, 20} {
		if pending[i].Identifier != fmt.Sprintf("water-%d", hour) {
			t.Fatalf("pending[%d].Identifier = %q", i, pending[i].Identifier)
		}
	}
}
