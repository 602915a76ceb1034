// Package memconn is an in-memory datagram network for tests. Delivery is
// synchronous: a WriteTo is visible to the destination's next Poll.
package memconn

import (
	"fmt"
	"net"
	"slices"
	"sync"

	"github.com/QYUbit/Tickline/pkg/transport"
)

// Addr names an endpoint on a Network.
type Addr string

func (a Addr) Network() string { return "mem" }
func (a Addr) String() string  { return string(a) }

type Network struct {
	mu      sync.Mutex
	conns   map[Addr]*Conn
	dialed  int
	inboxSz int
}

func NewNetwork() *Network {
	return &Network{
		conns:   make(map[Addr]*Conn),
		inboxSz: 1024,
	}
}

// Listen registers a conn at addr.
func (n *Network) Listen(addr string) (*Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	a := Addr(addr)
	if _, ok := n.conns[a]; ok {
		return nil, fmt.Errorf("memconn: address %s in use", addr)
	}

	c := n.newConn(a, nil)
	return c, nil
}

// Dial registers a conn at a fresh address whose default peer is server.
func (n *Network) Dial(server string) *Conn {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dialed++
	return n.newConn(Addr(fmt.Sprintf("client-%d", n.dialed)), Addr(server))
}

func (n *Network) newConn(addr Addr, peer net.Addr) *Conn {
	c := &Conn{
		network: n,
		addr:    addr,
		peer:    peer,
		inbox:   transport.NewInbox(n.inboxSz),
	}
	n.conns[addr] = c
	return c
}

func (n *Network) deliver(to Addr, p transport.Packet) {
	n.mu.Lock()
	dst, ok := n.conns[to]
	n.mu.Unlock()

	if ok {
		dst.inbox.Push(p)
	}
}

func (n *Network) remove(addr Addr) {
	n.mu.Lock()
	delete(n.conns, addr)
	n.mu.Unlock()
}

// Conn is one endpoint. Datagrams to unknown addresses vanish.
type Conn struct {
	network *Network
	addr    Addr
	peer    net.Addr
	inbox   *transport.Inbox

	mu     sync.Mutex
	closed bool
}

func (c *Conn) Poll(buf []byte) (int, net.Addr, error) {
	return c.inbox.Poll(buf)
}

func (c *Conn) WriteTo(p []byte, to net.Addr) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}

	if to == nil {
		if c.peer == nil {
			return transport.ErrNoPeer
		}
		to = c.peer
	}

	c.network.deliver(Addr(to.String()), transport.Packet{Data: slices.Clone(p), From: c.addr})
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return c.addr
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.network.remove(c.addr)
	c.inbox.Close()
	return nil
}
