package activity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the activity feed endpoints on the given router.
func RegisterRoutes(r chi.Router, hub *Hub) {
	r.Get("/api/activity/recent", hub.handleRecent)
	r.Get("/api/activity/stats", hub.handleStats)
	r.Get("/ws/activity", hub.handleWebSocket)
}

func (h *Hub) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Recent())
}

func (h *Hub) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Stats())
}

// handleWebSocket streams each published record to the client until the
// connection closes. The read loop exists only to detect disconnects.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("activity websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.subscribe(conn)
	defer h.unsubscribe(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("activity websocket read", zap.Error(err))
			}
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
