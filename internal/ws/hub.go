package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub routes notification payloads to the websocket clients of a single
// user. A user may hold several connections (multiple tabs, devices).
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan targeted
	mutex      sync.RWMutex
	logger     *zap.Logger
}

type targeted struct {
	userID  string
	payload []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		deliver:    make(chan targeted, 1024),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mutex.Unlock()
			h.logger.Debug("ws client connected", zap.String("user_id", client.userID))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mutex.Unlock()
			h.logger.Debug("ws client disconnected", zap.String("user_id", client.userID))

		case msg := <-h.deliver:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.clients[msg.userID]))
			for c := range h.clients[msg.userID] {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- msg.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser is best-effort: payloads for offline users are dropped, and a
// full delivery buffer drops rather than blocks the caller.
func (h *Hub) SendToUser(userID string, payload []byte) {
	if h == nil || userID == "" {
		return
	}
	select {
	case h.deliver <- targeted{userID: userID, payload: payload}:
	default:
		h.logger.Warn("ws delivery dropped", zap.String("user_id", userID))
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
