package register

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/session"
)

type recordingNotifier struct {
	notified []session.User
}

func (n *recordingNotifier) NotifyRegistrationComplete(ctx context.Context, user session.User) error {
	n.notified = append(n.notified, user)
	return nil
}

func newTestHandler(t *testing.T) (*chi.Mux, *session.Store, *recordingNotifier) {
	t.Helper()
	store := session.NewStore()
	notifier := &recordingNotifier{}
	r := chi.NewRouter()
	NewHandler(store, notifier, "", zap.NewNop()).RegisterRoutes(r)
	return r, store, notifier
}

func complete(t *testing.T, r *chi.Mux, code string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(completeRequest{ReferenceCode: code})
	req := httptest.NewRequest(http.MethodPost, "/api/register/complete", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTermsPage(t *testing.T) {
	r, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected HTML, got %s", ct)
	}
	// Built-in terms render as markdown headings.
	if !strings.Contains(w.Body.String(), "Terms of Use") {
		t.Errorf("expected terms content in page")
	}
	if !strings.Contains(w.Body.String(), "reference_code") {
		t.Errorf("expected completion form in page")
	}
}

func TestCompleteHappyPath(t *testing.T) {
	r, store, notifier := newTestHandler(t)

	user, _ := store.GetOrCreate("u1")
	if _, err := store.AcceptTerms("u1"); err != nil {
		t.Fatal(err)
	}

	w := complete(t, r, user.ReferenceCode)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp completeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "completed" {
		t.Errorf("expected status completed, got %q", resp.Status)
	}
	if len(notifier.notified) != 1 || notifier.notified[0].ID != "u1" {
		t.Errorf("expected one notification for u1, got %+v", notifier.notified)
	}
}

func TestCompleteIsOneShot(t *testing.T) {
	r, store, _ := newTestHandler(t)

	user, _ := store.GetOrCreate("u1")
	if _, err := store.AcceptTerms("u1"); err != nil {
		t.Fatal(err)
	}

	if w := complete(t, r, user.ReferenceCode); w.Code != http.StatusOK {
		t.Fatalf("first completion failed: %d", w.Code)
	}
	if w := complete(t, r, user.ReferenceCode); w.Code != http.StatusNotFound {
		t.Errorf("expected consumed code to 404, got %d", w.Code)
	}
}

func TestCompleteUnknownCode(t *testing.T) {
	r, _, _ := newTestHandler(t)

	if w := complete(t, r, "#nobody-00000"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCompleteBeforeAcceptingTerms(t *testing.T) {
	r, store, notifier := newTestHandler(t)

	user, _ := store.GetOrCreate("u1")

	w := complete(t, r, user.ReferenceCode)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if len(notifier.notified) != 0 {
		t.Errorf("expected no notification, got %d", len(notifier.notified))
	}

	// The code survives the failed attempt.
	if _, err := store.AcceptTerms("u1"); err != nil {
		t.Fatal(err)
	}
	if w := complete(t, r, user.ReferenceCode); w.Code != http.StatusOK {
		t.Errorf("expected completion after acceptance, got %d", w.Code)
	}
}

func TestCompleteEmptyCode(t *testing.T) {
	r, _, _ := newTestHandler(t)

	if w := complete(t, r, "  "); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCompleteInvalidJSON(t *testing.T) {
	r, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register/complete", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
