package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/intent"
)

type recordingDispatcher struct {
	events []intent.Event
	err    error
}

func (d *recordingDispatcher) HandleEvent(ctx context.Context, ev intent.Event) error {
	d.events = append(d.events, ev)
	return d.err
}

func newTestRouter(d Dispatcher, verifyToken, appSecret string) *chi.Mux {
	r := chi.NewRouter()
	h := NewHandler(d, verifyToken, appSecret, zap.NewNop())
	h.RegisterRoutes(r)
	return r
}

func TestVerifyHandshake(t *testing.T) {
	r := newTestRouter(&recordingDispatcher{}, "secret-token", "")

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "12345" {
		t.Errorf("expected challenge echoed, got %q", w.Body.String())
	}
}

func TestVerifyHandshakeWrongToken(t *testing.T) {
	r := newTestRouter(&recordingDispatcher{}, "secret-token", "")

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestTextMessageDispatched(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"mid":"m1","text":"hello"}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "EVENT_RECEIVED" {
		t.Errorf("expected EVENT_RECEIVED, got %q", w.Body.String())
	}
	if len(d.events) != 1 {
		t.Fatalf("expected one event, got %d", len(d.events))
	}
	ev := d.events[0]
	if ev.SenderID != "u1" || ev.Kind != intent.KindText || ev.Text != "hello" || ev.MessageID != "m1" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestPostbackDispatched(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"postback":{"payload":"ACCEPT_TERMS"}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(d.events) != 1 {
		t.Fatalf("expected one event, got %d", len(d.events))
	}
	if d.events[0].Kind != intent.KindPostback || d.events[0].Payload != "ACCEPT_TERMS" {
		t.Errorf("unexpected event: %+v", d.events[0])
	}
}

func TestQuickReplyPreferredOverText(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"text":"Help","quick_reply":{"payload":"help"}}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(d.events) != 1 {
		t.Fatalf("expected one event, got %d", len(d.events))
	}
	if d.events[0].Kind != intent.KindQuickReply || d.events[0].Payload != "help" {
		t.Errorf("unexpected event: %+v", d.events[0])
	}
}

func TestAttachmentsDispatched(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"attachments":[{"type":"image","payload":{"url":"https://example.com/a.jpg"}},{"type":"audio","payload":{"url":"https://example.com/b.mp3"}}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(d.events) != 1 {
		t.Fatalf("expected one event, got %d", len(d.events))
	}
	ev := d.events[0]
	if ev.Kind != intent.KindAttachments || len(ev.Attachments) != 2 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Attachments[0].Type != "image" || ev.Attachments[0].URL != "https://example.com/a.jpg" {
		t.Errorf("unexpected attachment: %+v", ev.Attachments[0])
	}
}

func TestEchoSkipped(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"page"},"message":{"text":"echo","is_echo":true}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(d.events) != 0 {
		t.Errorf("echo must not be dispatched, got %d events", len(d.events))
	}
}

func TestNonPageObjectRejected(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "")

	body := `{"object":"instagram","entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDispatchErrorStillAcknowledged(t *testing.T) {
	d := &recordingDispatcher{err: context.DeadlineExceeded}
	r := newTestRouter(d, "t", "")

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"text":"hi"}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("delivery failures must not fail the webhook, got %d", w.Code)
	}
}

func TestSignatureVerification(t *testing.T) {
	d := &recordingDispatcher{}
	secret := "app-secret"
	r := newTestRouter(d, "t", secret)

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"u1"},"message":{"text":"hi"}}]}]}`

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected valid signature accepted, got %d", w.Code)
	}
	if len(d.events) != 1 {
		t.Errorf("expected event dispatched, got %d", len(d.events))
	}
}

func TestBadSignatureRejected(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(d, "t", "app-secret")

	body := `{"object":"page","entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if len(d.events) != 0 {
		t.Errorf("expected no dispatch, got %d events", len(d.events))
	}
}

func TestMissingSignatureRejectedWhenSecretSet(t *testing.T) {
	r := newTestRouter(&recordingDispatcher{}, "t", "app-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"page"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
