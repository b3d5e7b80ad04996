package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// Event is a server-pushed row-change notification.
type Event struct {
	Event  string          `json:"event"` // upper-cased operation name
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// Socket is the process-wide shared realtime connection. It dials lazily
// on the first listener registration and is never torn down by channels;
// a dropped connection is re-dialed with exponential backoff and existing
// listeners keep receiving events after the reconnect.
type Socket struct {
	url    string
	dialer *websocket.Dialer
	log    logging.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	started   bool
	closed    bool
	listeners map[uuid.UUID]func(Event)
}

func NewSocket(url string, log logging.Logger) *Socket {
	return &Socket{
		url:       url,
		dialer:    websocket.DefaultDialer,
		log:       log,
		listeners: make(map[uuid.UUID]func(Event)),
	}
}

// AddListener registers fn for every incoming event and returns the
// handle to remove it with. The connection is established on first use.
func (s *Socket) AddListener(fn func(Event)) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.listeners[id] = fn
	shouldStart := !s.started && !s.closed
	if shouldStart {
		s.started = true
	}
	s.mu.Unlock()

	if shouldStart {
		go s.run()
	}
	return id
}

// RemoveListener detaches exactly the listener behind id, leaving the
// connection and all other listeners untouched.
func (s *Socket) RemoveListener(id uuid.UUID) {
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
}

// ListenerCount reports how many listeners are currently attached.
func (s *Socket) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Close shuts the connection down for good. Channels never call this; it
// exists for tests and process teardown.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Socket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// run owns the connection: dial, read until failure, reconnect, repeat.
func (s *Socket) run() {
	ctx := context.Background()
	for {
		if s.isClosed() {
			return
		}
		conn, err := s.dial()
		if err != nil {
			s.log.Error(ctx, "realtime connection failed permanently", "error", err)
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conn = conn
		s.mu.Unlock()

		s.readLoop(conn)

		if s.isClosed() {
			return
		}
		s.log.Warn(ctx, "realtime connection lost, reconnecting")
	}
}

func (s *Socket) dial() (*websocket.Conn, error) {
	var conn *websocket.Conn
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // keep trying until Close

	err := backoff.Retry(func() error {
		if s.isClosed() {
			return backoff.Permanent(errClosed)
		}
		c, _, err := s.dialer.Dial(s.url, nil)
		if err != nil {
			s.log.Debug(context.Background(), "realtime dial failed", "url", s.url, "error", err)
			return err
		}
		conn = c
		return nil
	}, bo)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Debug(context.Background(), "ignoring unreadable realtime frame", "error", err)
			continue
		}
		s.dispatch(ev)
	}
}

func (s *Socket) dispatch(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
