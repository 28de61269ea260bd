package gateway

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/flemzord/junction/internal/intersection"
)

// Envelope is the JSON frame sent to event stream clients.
type Envelope struct {
	Type string `json:"type"` // "rotation" or "passage"
	Data any    `json:"data"`
}

// Hub fans intersection events out to websocket clients. Publishing never
// blocks: a client whose queue is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	buffer  int
	closed  bool
	done    chan struct{}
	metrics *Metrics
}

// Compile-time interface check.
var _ intersection.Observer = (*Hub)(nil)

// NewHub creates a hub whose clients each queue up to buffer events.
func NewHub(buffer int, metrics *Metrics) *Hub {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Hub{
		clients: make(map[chan []byte]struct{}),
		buffer:  buffer,
		done:    make(chan struct{}),
		metrics: metrics,
	}
}

// OnRotation implements intersection.Observer.
func (h *Hub) OnRotation(ev intersection.RotationEvent) {
	h.metrics.RecordRotation()
	h.publish(Envelope{Type: "rotation", Data: ev})
}

// OnPassage implements intersection.Observer.
func (h *Hub) OnPassage(ev intersection.PassageEvent) {
	h.metrics.RecordPassage()
	h.publish(Envelope{Type: "passage", Data: ev})
}

func (h *Hub) publish(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- data:
			h.metrics.RecordDelivery()
		default:
			h.metrics.RecordDrop()
		}
	}
}

// subscribe registers a client queue. It reports false once the hub is closed.
func (h *Hub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, h.buffer)
	h.clients[ch] = struct{}{}
	h.metrics.ClientConnected()
	return ch, true
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		h.metrics.ClientDisconnected()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Later events are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

// handleEvents upgrades the request to a websocket and streams events until
// the client goes away or the hub closes.
func (g *Gateway) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Error("websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		ch, ok := g.hub.subscribe()
		if !ok {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
		defer g.hub.unsubscribe(ch)

		// Clients only listen; CloseRead handles their close frames.
		ctx := conn.CloseRead(r.Context())

		for {
			select {
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					g.logger.Debug("event stream write failed", "error", err)
					return
				}
			case <-g.hub.done:
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			case <-ctx.Done():
				return
			}
		}
	}
}
