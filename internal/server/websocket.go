package server

import (
	"context"
	"log"
	"time"

	"go-keyword-radar/internal/messaging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// client is one open popup.
type client struct {
	id   string
	conn *websocket.Conn
	send chan messaging.Message
	done chan struct{}
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Websocket upgrade failed: %v", err)
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan messaging.Message, sendBuffer),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[cl.id] = cl
	s.mu.Unlock()
	log.Printf("🔌 Popup %s connected", cl.id)

	go s.writeLoop(cl)
	s.readLoop(cl)
}

// readLoop only watches for the peer going away.
func (s *Server) readLoop(cl *client) {
	defer s.drop(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(cl *client) {
	for {
		select {
		case <-cl.done:
			return
		case msg := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(msg); err != nil {
				log.Printf("⚠️ Failed to write to popup %s: %v", cl.id, err)
				s.drop(cl)
				return
			}
		}
	}
}

func (s *Server) drop(cl *client) {
	s.mu.Lock()
	_, ok := s.clients[cl.id]
	delete(s.clients, cl.id)
	s.mu.Unlock()
	if !ok {
		return
	}
	close(cl.done)
	cl.conn.Close()
	log.Printf("🔌 Popup %s disconnected", cl.id)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.Unlock()

	for _, cl := range clients {
		cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		s.drop(cl)
	}
}

// Clients returns the number of connected popups.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast forwards runtime notifications to every popup until ctx ends or
// events closes. Slow popups miss messages rather than stall the feed.
func (s *Server) Broadcast(ctx context.Context, events <-chan messaging.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			s.mu.Lock()
			for _, cl := range s.clients {
				select {
				case cl.send <- msg:
				default:
				}
			}
			s.mu.Unlock()
		}
	}
}
