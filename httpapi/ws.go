package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection and echoes back every text frame it
// receives, ignoring binary frames, until the client closes the
// connection. There is no hub or broadcast: /ws is a utility channel for a
// single caller at a time, not a fan-out notification bus.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "httpapi: websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn(r.Context(), "httpapi: websocket closed unexpectedly", "error", err.Error())
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
