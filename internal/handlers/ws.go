package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mmynk/splitchat/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated; origins are not restricted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscribe upgrades the request to a websocket and streams the group's
// ledger events until the client disconnects. Auth runs in middleware
// (token query parameter); membership is checked before the upgrade.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	groupID := chi.URLParam(r, "groupID")

	member, err := h.chat.IsMember(r.Context(), groupID, uid)
	if err != nil {
		serviceError(w, err)
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, service.ErrNotGroupMember)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "group_id", groupID, "error", err)
		return
	}

	sub := h.hub.Subscribe(groupID, conn)
	defer sub.Close()

	conn.SetPongHandler(func(string) error {
		sub.Touch()
		return nil
	})

	// Clients only listen; the read loop exists to notice pongs and
	// disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		sub.Touch()
	}
}
