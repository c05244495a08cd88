package activity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestPublishAndRecent(t *testing.T) {
	h := NewHub(zap.NewNop())

	h.Publish(Record{UserID: "u1", Intent: "show_help", Outcome: OutcomeOK})
	h.Publish(Record{UserID: "u2", Intent: "freeform_chat", Outcome: OutcomeCapability})

	recent := h.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	// Newest first.
	if recent[0].UserID != "u2" {
		t.Errorf("expected newest record first, got %s", recent[0].UserID)
	}
	if recent[0].ID == "" {
		t.Error("expected generated id")
	}
	if recent[0].Time.IsZero() {
		t.Error("expected generated timestamp")
	}
}

func TestRingBounded(t *testing.T) {
	h := NewHub(zap.NewNop())

	for i := 0; i < ringSize+25; i++ {
		h.Publish(Record{UserID: "u", Intent: "show_help", Outcome: OutcomeOK, Time: time.Now()})
	}
	if got := len(h.Recent()); got != ringSize {
		t.Errorf("expected feed capped at %d, got %d", ringSize, got)
	}
}

func TestStats(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Publish(Record{Outcome: OutcomeOK})
	h.Publish(Record{Outcome: OutcomeOK})
	h.Publish(Record{Outcome: OutcomeGated})

	stats := h.Stats()
	if stats[OutcomeOK] != 2 || stats[OutcomeGated] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestRecentEndpoint(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Publish(Record{UserID: "u1", Intent: "show_menu", Outcome: OutcomeOK})

	r := chi.NewRouter()
	RegisterRoutes(r, h)

	req := httptest.NewRequest(http.MethodGet, "/api/activity/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var records []Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].UserID != "u1" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Publish(Record{Outcome: OutcomeDelivery})

	r := chi.NewRouter()
	RegisterRoutes(r, h)

	req := httptest.NewRequest(http.MethodGet, "/api/activity/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats map[Outcome]int
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats[OutcomeDelivery] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
