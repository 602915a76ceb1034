package server

import (
	"math"
	"net"
	"slices"

	"github.com/QYUbit/Tickline/pkg/protocol"
)

// Client is a connected player as the server sees it.
type Client struct {
	ID            uint32
	Addr          net.Addr
	State         protocol.ClientState
	ConnectedTick uint64
	LastHeardTick uint64
}

// ConnectionTable indexes clients by address and by id. Ids come from a
// monotonic counter and are never handed out twice; once the counter is
// spent every further connect is refused.
type ConnectionTable struct {
	byAddr map[string]*Client
	byID   map[uint32]*Client
	order  []*Client

	max    int
	nextID uint64
}

func NewConnectionTable(max int, firstID uint32) *ConnectionTable {
	return &ConnectionTable{
		byAddr: make(map[string]*Client),
		byID:   make(map[uint32]*Client),
		max:    max,
		nextID: uint64(firstID),
	}
}

// Add registers a new client for addr. The caller must have checked that
// addr is not already present.
func (t *ConnectionTable) Add(addr net.Addr, tick uint64) (*Client, error) {
	if len(t.order) >= t.max {
		return nil, ErrServerFull
	}
	if t.nextID > math.MaxUint32 {
		return nil, ErrClientIDsExhausted
	}

	c := &Client{
		ID:            uint32(t.nextID),
		Addr:          addr,
		ConnectedTick: tick,
		LastHeardTick: tick,
	}
	t.nextID++

	t.byAddr[addr.String()] = c
	t.byID[c.ID] = c
	t.order = append(t.order, c)
	return c, nil
}

func (t *ConnectionTable) ByAddr(addr net.Addr) (*Client, bool) {
	c, ok := t.byAddr[addr.String()]
	return c, ok
}

func (t *ConnectionTable) ByID(id uint32) (*Client, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Remove drops c. Removing an absent client is a no-op.
func (t *ConnectionTable) Remove(c *Client) {
	if t.byID[c.ID] != c {
		return
	}
	delete(t.byAddr, c.Addr.String())
	delete(t.byID, c.ID)
	t.order = slices.DeleteFunc(t.order, func(o *Client) bool { return o == c })
}

func (t *ConnectionTable) Len() int {
	return len(t.order)
}

// Clients returns the clients in connect order. The slice is shared with the
// table and must not be modified or held across Add or Remove.
func (t *ConnectionTable) Clients() []*Client {
	return t.order
}

// Expired returns every client not heard from for more than timeout ticks.
func (t *ConnectionTable) Expired(now, timeout uint64) []*Client {
	var out []*Client
	for _, c := range t.order {
		if now-c.LastHeardTick > timeout {
			out = append(out, c)
		}
	}
	return out
}
