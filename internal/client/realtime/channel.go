package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

var errClosed = errors.New("realtime socket closed")

// RowChanges is the only event family channels understand: server-pushed
// insert/update/delete notifications.
const RowChanges = "postgres_changes"

// AnyEvent matches every operation type in a ChannelFilter.
const AnyEvent = "*"

// ChannelFilter restricts which row-change events reach a callback.
// An empty or "*" field matches everything; Event is case-normalized to
// the server's uppercase convention.
type ChannelFilter struct {
	Table string
	Event string
}

// Channel is a handle over the shared socket. Each On call registers one
// client-side-filtered listener; Unsubscribe removes exactly the
// listeners this handle registered.
type Channel struct {
	name string
	sock *Socket
	log  logging.Logger

	mu  sync.Mutex
	ids []uuid.UUID
}

func NewChannel(name string, sock *Socket, log logging.Logger) *Channel {
	return &Channel{name: name, sock: sock, log: log}
}

// Name returns the caller-chosen channel name.
func (c *Channel) Name() string { return c.name }

// On wires callback for the row-change event family, filtered client-side
// by table and operation. Unrecognized families register nothing.
func (c *Channel) On(family string, filter ChannelFilter, callback func(Event)) *Channel {
	if family != RowChanges {
		c.log.Warn(context.Background(), "ignoring listener for unrecognized event family",
			"channel", c.name, "family", family)
		return c
	}

	wantEvent := strings.ToUpper(filter.Event)
	if wantEvent == "" {
		wantEvent = AnyEvent
	}
	wantTable := filter.Table

	id := c.sock.AddListener(func(ev Event) {
		if wantTable != "" && wantTable != "*" && ev.Table != wantTable {
			return
		}
		if wantEvent != AnyEvent && strings.ToUpper(ev.Event) != wantEvent {
			return
		}
		callback(ev)
	})

	c.mu.Lock()
	c.ids = append(c.ids, id)
	c.mu.Unlock()
	return c
}

// Subscribe is a no-op returning the handle: the underlying connection is
// shared and already established by the first listener.
func (c *Channel) Subscribe() *Channel { return c }

// Unsubscribe detaches this handle's listeners. The shared socket and
// other channels' listeners stay untouched.
func (c *Channel) Unsubscribe() {
	c.mu.Lock()
	ids := c.ids
	c.ids = nil
	c.mu.Unlock()

	for _, id := range ids {
		c.sock.RemoveListener(id)
	}
}
