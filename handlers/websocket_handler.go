package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/courtside/league-engine/standings"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is delegated to the CORS configuration of the
		// deployment; the engine itself accepts any origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *standings.Hub
}

func NewWebSocketHandler(hub *standings.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeStageWs subscribes the caller to live invalidation pushes for one
// stage. Clients connect to /ws/stages/{stageID}.
func (h *WebSocketHandler) ServeStageWs(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("websocket upgrade failed for stage %d: %v", stageID, err)
		return
	}

	client := &standings.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: standings.StageRoom(stageID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
