package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is the wire shape pushed to websocket clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans booking and availability events out to websocket subscribers.
// Clients subscribe either to a single slot or to the firehose.
type Hub struct {
	mu       sync.Mutex
	bySlot   map[string][]*websocket.Conn
	firehose []*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{bySlot: make(map[string][]*websocket.Conn)}
}

// HandleSlotWS subscribes the connection to one slot's events.
func (h *Hub) HandleSlotWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.bySlot[slotID] = append(h.bySlot[slotID], conn)
	h.mu.Unlock()

	// Keep the connection alive until the client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.bySlot[slotID] = removeConn(h.bySlot[slotID], conn)
	h.mu.Unlock()

	conn.Close()
}

// HandleWS subscribes the connection to all events.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.firehose = append(h.firehose, conn)
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.firehose = removeConn(h.firehose, conn)
	h.mu.Unlock()

	conn.Close()
}

// Broadcast sends the event to the slot's subscribers and the firehose.
// Dead connections are dropped on write failure.
func (h *Hub) Broadcast(slotID string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal ws event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if slotID != "" {
		h.bySlot[slotID] = writeAll(h.bySlot[slotID], payload)
	}
	h.firehose = writeAll(h.firehose, payload)
}

// SubscriberCount reports live connections for a slot.
func (h *Hub) SubscriberCount(slotID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.bySlot[slotID])
}

func writeAll(conns []*websocket.Conn, payload []byte) []*websocket.Conn {
	alive := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err == nil {
			alive = append(alive, conn)
		} else {
			conn.Close()
		}
	}
	return alive
}

func removeConn(conns []*websocket.Conn, target *websocket.Conn) []*websocket.Conn {
	out := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
