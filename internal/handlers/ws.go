package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prakritea/decomposr/internal/types"
	"github.com/prakritea/decomposr/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// session wraps a connection with a write lock. gorilla/websocket supports
// at most one concurrent writer per connection, and both Publish and the
// ping loop write to the same session.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) writeJSON(event interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

func (s *session) writeControl(messageType int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, nil)
}

// Hub tracks live websocket sessions per user. A user may have several
// open sessions (multiple tabs); an event is written to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*session]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*session]bool)}
}

func (h *Hub) register(userID uint, sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*session]bool)
	}
	h.clients[userID][sess] = true
}

func (h *Hub) unregister(userID uint, sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[userID]; exists {
		delete(clients, sess)

		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Publish writes the event to every session of the user. Delivery is
// best-effort and at-most-once: a failed write drops the connection and
// the event is not re-sent.
func (h *Hub) Publish(userID uint, event interface{}) {
	h.mu.RLock()
	clients, exists := h.clients[userID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy so the lock is not held during writes
	sessions := make([]*session, 0, len(clients))
	for sess := range clients {
		sessions = append(sessions, sess)
	}
	h.mu.RUnlock()

	for _, sess := range sessions {
		if err := sess.writeJSON(event); err != nil {
			log.Printf("Failed to push event to user %d: %v", userID, err)
			h.unregister(userID, sess)
			sess.conn.Close()
		}
	}
}

// Handle upgrades the request and keeps the connection registered under
// the authenticated user's id until it closes.
func (h *Hub) Handle(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	userID := currentUser.ID

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	sess := &session{conn: conn}
	h.register(userID, sess)

	done := make(chan struct{})

	defer func() {
		close(done)
		h.unregister(userID, sess)
		conn.Close()

		log.Printf("WebSocket connection closed for user %d", userID)
	}()

	err = sess.writeJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	go func() {
		// Send pings periodically until the read loop ends
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := sess.writeControl(websocket.PingMessage); err != nil {
					log.Printf("Ping failed for user %d: %v", userID, err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", userID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", userID, err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			log.Printf("Received message from user %d: %s", userID, string(message))
		}
	}
}
