package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"chat.znkr.io/editdiff/store"
	"github.com/gorilla/websocket"
)

// Event is sent to all websocket clients whenever a message is posted or edited.
type Event struct {
	Type    string        `json:"type"` // "post" or "edit"
	Message store.Message `json:"message"`
}

const (
	writeWait  = 10 * time.Second // Time allowed to write an event to a client
	sendBuffer = 16               // Events queued per client before it's dropped
)

var upgrader = websocket.Upgrader{}

// hub keeps track of all connected websocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	closed  bool
}

// client is a websocket connection. Events are queued in send and written by the client's own
// goroutine, so a slow client never blocks a broadcast.
type client struct {
	conn *websocket.Conn
	send chan Event
}

func newHub() *hub {
	return &hub{clients: make(map[*client]bool)}
}

func (h *hub) serve(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("upgrading connection to websocket: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	h.mu.Unlock()

	go c.writeEvents()

	// Clients only listen, reading is necessary to notice when they go away.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.remove(c)
}

// remove unregisters c. Its writer closes the connection once all queued events are written.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			log.Printf("dropping websocket client: too many pending events")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writeEvents() {
	defer c.conn.Close()
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Printf("sending event to client: %v", err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}
