package server

import (
	"net/http"
	"time"

	"crypto-tracker/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main hub loop. It is the single owner of the clients map.
func (s *APIServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int32(len(s.clients)))
			// Send initial state on connect
			client.send <- s.snapshot("INITIAL")

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.clientCount.Store(int32(len(s.clients)))
				close(client.send)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent hub blocking
					delete(s.clients, client)
					s.clientCount.Store(int32(len(s.clients)))
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// BroadcastAlert pushes one delivered alert to every connected client.
func (s *APIServer) BroadcastAlert(alert models.MAlert) {
	state := &models.MLatestData{
		Type:      "UPDATE",
		Online:    s.Network.IsConnected(),
		Alerts:    []models.MAlert{alert},
		Timestamp: time.Now().Unix(),
	}

	select {
	case s.broadcast <- state:
	default:
		// Queue full; clients resync from /api/alerts/recent.
		s.Logger.Warning("Broadcast queue full, dropping alert push")
	}
}

// -----------------------------------------------------------------------------

// snapshot builds the full current state sent to a freshly connected client.
func (s *APIServer) snapshot(msgType string) *models.MLatestData {
	return &models.MLatestData{
		Type:      msgType,
		Online:    s.Network.IsConnected(),
		Alerts:    s.History.Latest(20),
		Timestamp: time.Now().Unix(),
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the hub loop
		send: make(chan *models.MLatestData, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
