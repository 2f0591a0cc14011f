// internal/dashboard/hub.go
package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/render"
	"github.com/tamzrod/vision-dashboard/internal/status"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	broadcastQueue = 16
)

// FrameMessage is what a viewer receives on every render.
type FrameMessage struct {
	Type    string       `json:"type"`
	Version uint64       `json:"version"`
	Frame   render.Frame `json:"frame"`
}

func frameMessage(s render.Snapshot) ([]byte, error) {
	return json.Marshal(FrameMessage{Type: "frame", Version: s.Version, Frame: s.Frame})
}

type viewer struct {
	id   string
	conn *websocket.Conn
}

// Hub pushes surface frames to connected browsers.
//
// The Run goroutine is the only writer to viewer connections.
type Hub struct {
	surface *render.Surface
	log     *logger.Logger

	viewers    map[string]*viewer
	register   chan *viewer
	unregister chan string
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex

	runOnce  sync.Once
	stopOnce sync.Once
}

func NewHub(surface *render.Surface, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewWriter(io.Discard)
	}
	return &Hub{
		surface:    surface,
		log:        log,
		viewers:    make(map[string]*viewer),
		register:   make(chan *viewer),
		unregister: make(chan string),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is cancelled.
// Every viewer connection is closed on return.
//
// A hub runs once. Later calls return immediately.
func (h *Hub) Run(ctx context.Context) {
	first := false
	h.runOnce.Do(func() { first = true })
	if !first {
		h.log.Warning("viewer hub already ran")
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case v := <-h.register:
			h.mutex.Lock()
			h.viewers[v.id] = v
			n := len(h.viewers)
			h.mutex.Unlock()
			h.log.Info("viewer %s connected. Total: %d", v.id, n)

			// current frame first, so a fresh page never waits for the next tick
			msg, err := frameMessage(h.surface.Snapshot())
			if err == nil {
				err = h.write(v, websocket.TextMessage, msg)
			}
			if err != nil {
				h.drop(v.id, err)
			}

		case id := <-h.unregister:
			h.mutex.Lock()
			v, ok := h.viewers[id]
			if ok {
				delete(h.viewers, id)
				v.conn.Close()
			}
			n := len(h.viewers)
			h.mutex.Unlock()
			if ok {
				h.log.Info("viewer %s disconnected. Total: %d", id, n)
			}

		case msg := <-h.broadcast:
			h.sendAll(websocket.TextMessage, msg)

		case <-ping.C:
			h.sendAll(websocket.PingMessage, nil)
		}
	}
}

// Render queues the surface's current frame for every viewer.
// It never blocks the telemetry loop: when the queue is full the frame is dropped.
func (h *Hub) Render(status.DisplayState) {
	msg, err := frameMessage(h.surface.Snapshot())
	if err != nil {
		h.log.Error("frame encode failed: %v", err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warning("viewer queue full, frame dropped")
	}
}

// Register hands a connection to the hub and returns its viewer id.
// It returns false when the hub has stopped; the connection is closed then.
func (h *Hub) Register(conn *websocket.Conn) (string, bool) {
	v := &viewer{id: uuid.NewString(), conn: conn}

	select {
	case h.register <- v:
		return v.id, true
	case <-h.done:
		conn.Close()
		return "", false
	}
}

func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.viewers)
}

// ---- internals (Run goroutine only) ----

func (h *Hub) write(v *viewer, kind int, msg []byte) error {
	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.conn.WriteMessage(kind, msg)
}

func (h *Hub) sendAll(kind int, msg []byte) {
	h.mutex.RLock()
	targets := make([]*viewer, 0, len(h.viewers))
	for _, v := range h.viewers {
		targets = append(targets, v)
	}
	h.mutex.RUnlock()

	for _, v := range targets {
		if err := h.write(v, kind, msg); err != nil {
			h.drop(v.id, err)
		}
	}
}

func (h *Hub) drop(id string, err error) {
	h.mutex.Lock()
	v, ok := h.viewers[id]
	if ok {
		delete(h.viewers, id)
		v.conn.Close()
	}
	h.mutex.Unlock()

	if ok {
		h.log.Warning("viewer %s dropped: %v", id, err)
	}
}

func (h *Hub) closeAll() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, v := range h.viewers {
		v.conn.Close()
		delete(h.viewers, id)
	}
}
