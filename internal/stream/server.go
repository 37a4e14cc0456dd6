// Package stream broadcasts decoded pointer events to websocket clients as
// JSON, one message per event. It exists for the monitor command so gesture
// output can be watched from a browser or piped into other tooling.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openpointing/glidepoint/gesture"
)

const (
	writeWait  = 5 * time.Second
	pingEvery  = 15 * time.Second
	sendBuffer = 64
)

// Message is the wire form of one event.
type Message struct {
	Type    string `json:"type"`
	DX      int    `json:"dx,omitempty"`
	DY      int    `json:"dy,omitempty"`
	DV      int    `json:"dv,omitempty"`
	DH      int    `json:"dh,omitempty"`
	Buttons uint32 `json:"buttons,omitempty"`
	Fingers int    `json:"fingers,omitempty"`
	Dir     string `json:"dir,omitempty"`
	Time    int64  `json:"time"`
}

// Server is an http.Handler upgrading connections to websockets and a
// gesture.Sink fanning events out to every connected client. Slow clients
// are dropped rather than allowed to stall the pipeline.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// New builds an event broadcast server.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		log: logger.With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client connected", "remote", conn.RemoteAddr().String(), "clients", n)

	go s.writeLoop(c)
	go s.readLoop(c)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

// readLoop exists to process control frames; inbound data is discarded.
func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(1 << 16)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.drop(c)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

func (s *Server) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client is not keeping up.
			go s.drop(c)
		}
	}
	s.mu.Unlock()
}

// PointerMove implements gesture.Sink.
func (s *Server) PointerMove(dx, dy int, buttons uint32, t time.Time) {
	s.broadcast(Message{Type: "pointer", DX: dx, DY: dy, Buttons: buttons, Time: t.UnixNano()})
}

// Scroll implements gesture.Sink.
func (s *Server) Scroll(dv, dh int, t time.Time) {
	s.broadcast(Message{Type: "scroll", DV: dv, DH: dh, Time: t.UnixNano()})
}

// Swipe implements gesture.Sink.
func (s *Server) Swipe(fingers int, dir gesture.SwipeDirection, t time.Time) {
	s.broadcast(Message{Type: "swipe", Fingers: fingers, Dir: dir.String(), Time: t.UnixNano()})
}
