package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/intent"
)

// Dispatcher processes one normalized inbound event. Implemented by
// dispatch.Engine.
type Dispatcher interface {
	HandleEvent(ctx context.Context, ev intent.Event) error
}

// Handler terminates the Messenger webhook: the GET verification handshake
// and the POST event feed.
type Handler struct {
	dispatcher  Dispatcher
	verifyToken string
	appSecret   string
	log         *zap.Logger
}

// NewHandler creates the webhook handler. appSecret may be empty, in which
// case payload signatures are not checked.
func NewHandler(dispatcher Dispatcher, verifyToken, appSecret string, log *zap.Logger) *Handler {
	return &Handler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
		appSecret:   appSecret,
		log:         log,
	}
}

// RegisterRoutes mounts the webhook endpoints on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/webhook", h.handleVerify)
	r.Post("/webhook", h.handleEvents)
}

// handleVerify answers the platform's subscription handshake: echo the
// challenge when the mode and token match, refuse otherwise.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	h.log.Warn("webhook verification refused", zap.String("mode", mode))
	w.WriteHeader(http.StatusForbidden)
}

// pageEvent is the platform's top-level webhook payload.
type pageEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

// messagingEvent is one sender interaction inside an entry.
type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message *struct {
		MID        string `json:"mid"`
		Text       string `json:"text"`
		IsEcho     bool   `json:"is_echo"`
		QuickReply *struct {
			Payload string `json:"payload"`
		} `json:"quick_reply"`
		Attachments []struct {
			Type    string `json:"type"`
			Payload struct {
				URL string `json:"url"`
			} `json:"payload"`
		} `json:"attachments"`
	} `json:"message"`
	Postback *struct {
		Payload string `json:"payload"`
	} `json:"postback"`
}

// handleEvents receives the event feed. The platform retries on non-200, so
// the response is 200 EVENT_RECEIVED for anything that parsed as a page
// event; per-event failures are logged, never surfaced.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if h.appSecret != "" {
		if !h.verifySignature(r, body) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var event pageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if event.Object != "page" {
		http.NotFound(w, r)
		return
	}

	for _, entry := range event.Entry {
		for _, me := range entry.Messaging {
			ev, ok := normalize(me)
			if !ok {
				continue
			}
			if err := h.dispatcher.HandleEvent(r.Context(), ev); err != nil {
				h.log.Error("event dispatch failed",
					zap.String("sender", ev.SenderID),
					zap.Error(err))
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}

// normalize maps one raw messaging event to the internal event shape.
// Echoes of the bot's own sends and shapes with no actionable content are
// skipped.
func normalize(me messagingEvent) (intent.Event, bool) {
	ev := intent.Event{SenderID: me.Sender.ID}
	if ev.SenderID == "" {
		return intent.Event{}, false
	}

	switch {
	case me.Postback != nil:
		ev.Kind = intent.KindPostback
		ev.Payload = me.Postback.Payload
	case me.Message != nil:
		if me.Message.IsEcho {
			return intent.Event{}, false
		}
		ev.MessageID = me.Message.MID
		switch {
		case me.Message.QuickReply != nil:
			ev.Kind = intent.KindQuickReply
			ev.Payload = me.Message.QuickReply.Payload
		case len(me.Message.Attachments) > 0:
			ev.Kind = intent.KindAttachments
			for _, a := range me.Message.Attachments {
				ev.Attachments = append(ev.Attachments, intent.Attachment{
					Type: a.Type,
					URL:  a.Payload.URL,
				})
			}
		case me.Message.Text != "":
			ev.Kind = intent.KindText
			ev.Text = me.Message.Text
		default:
			return intent.Event{}, false
		}
	default:
		return intent.Event{}, false
	}

	return ev, true
}

// verifySignature checks the X-Hub-Signature-256 header: HMAC-SHA256 of the
// raw body keyed with the app secret.
func (h *Handler) verifySignature(r *http.Request, body []byte) bool {
	signature := r.Header.Get("X-Hub-Signature-256")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
