package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/huggnote/api/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	Owner string
	Conn  *websocket.Conn
	Send  chan []byte

	// closed is set under Hub.mu once Send has been closed
	closed bool
}

// Hub fans dashboard updates out to the sockets of each owner
type Hub struct {
	// Clients grouped by owner
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	Owner   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Owner] == nil {
				h.clients[client.Owner] = make(map[*Client]bool)
			}
			h.clients[client.Owner][client] = true
			h.mu.Unlock()
			log.Printf("Dashboard client registered for %s", client.Owner)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Printf("Dashboard client unregistered for %s", client.Owner)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.Owner] {
				select {
				case client.Send <- msg.Message:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.Owner]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		client.closed = true
		close(client.Send)
		if len(clients) == 0 {
			delete(h.clients, client.Owner)
		}
	}
}

// reply queues data for one client. It reports false once the hub has
// dropped the client, so the caller can stop reading.
func (h *Hub) reply(client *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.closed {
		return false
	}
	select {
	case client.Send <- data:
	default:
	}
	return true
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Connected returns the number of sockets open for owner.
func (h *Hub) Connected(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}

// StateChanged pushes a re-derived dashboard to the owner's sockets.
func (h *Hub) StateChanged(owner string, view model.DashboardView) {
	h.publish(owner, model.WSDashboardMessage{
		Type: model.WSMessageTypeDashboard,
		View: view,
	})
}

// SongFinished announces a terminal song transition. Failures are also
// sent as an error message for the dashboard to surface.
func (h *Hub) SongFinished(owner string, song model.Song) {
	h.publish(owner, model.WSSongMessage{
		Type: model.WSMessageTypeSong,
		Song: song,
	})
	if song.Status.IsFailure() {
		h.BroadcastError(owner, "GENERATION_FAILED", fmt.Sprintf("%s: %s", song.Title, song.Status))
	}
}

// BroadcastError sends an error message to the owner's sockets
func (h *Hub) BroadcastError(owner string, code, message string) {
	h.publish(owner, model.WSErrorMessage{
		Type: model.WSMessageTypeError,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

// publish never blocks: it is called while the store holds its lock.
func (h *Hub) publish(owner string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal websocket message: %v", err)
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{Owner: owner, Message: data}:
	default:
		log.Printf("Websocket broadcast queue full, dropping update for %s", owner)
	}
}

// HandleConnection serves one dashboard socket. initial, if set, is sent
// before any broadcast.
func (h *Hub) HandleConnection(c *websocket.Conn, owner string, initial []byte) {
	client := &Client{
		Owner: owner,
		Conn:  c,
		Send:  make(chan []byte, 256),
	}
	if initial != nil {
		client.Send <- initial
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			data, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			if !h.reply(client, data) {
				return
			}
		}
	}
}
