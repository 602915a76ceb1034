// Package udp implements transport.PacketConn over a plain UDP socket.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
)

// InboxSize bounds the datagrams queued between the reader goroutine and
// Poll.
const InboxSize = 1024

var bufferPool = &sync.Pool{
	New: func() any {
		buf := make([]byte, protocol.MaxDatagramSize)
		return &buf
	},
}

// Conn is a UDP endpoint. A goroutine reads the socket into an inbox so that
// Poll never waits on the network.
type Conn struct {
	conn   *net.UDPConn
	peer   *net.UDPAddr
	inbox  *transport.Inbox
	logger tlog.Logger

	closed atomic.Bool
	done   chan struct{}
}

// Listen binds addr, e.g. ":42042".
func Listen(addr string, logger tlog.Logger) (*Conn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}

	return newConn(conn, nil, logger), nil
}

// Dial binds an ephemeral port and targets addr for WriteTo(p, nil).
func Dial(addr string, logger tlog.Logger) (*Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}

	return newConn(conn, raddr, logger), nil
}

func newConn(conn *net.UDPConn, peer *net.UDPAddr, logger tlog.Logger) *Conn {
	c := &Conn{
		conn:   conn,
		peer:   peer,
		inbox:  transport.NewInbox(InboxSize),
		logger: tlog.OrNop(logger),
		done:   make(chan struct{}),
	}
	go c.readPump()
	return c
}

func (c *Conn) readPump() {
	defer close(c.done)
	defer c.inbox.Close()

	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)
	buf := *bufPtr

	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if c.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Debug("udp read failed", "error", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		if !c.inbox.Push(transport.Packet{Data: data, From: from}) {
			c.logger.Debug("udp inbox full, datagram dropped", "from", from)
		}
	}
}

func (c *Conn) Poll(buf []byte) (int, net.Addr, error) {
	return c.inbox.Poll(buf)
}

func (c *Conn) WriteTo(p []byte, to net.Addr) error {
	if c.closed.Load() {
		return transport.ErrClosed
	}

	dst, err := c.resolve(to)
	if err != nil {
		return err
	}

	_, err = c.conn.WriteToUDP(p, dst)
	return err
}

func (c *Conn) resolve(to net.Addr) (*net.UDPAddr, error) {
	if to == nil {
		if c.peer == nil {
			return nil, transport.ErrNoPeer
		}
		return c.peer, nil
	}
	if addr, ok := to.(*net.UDPAddr); ok {
		return addr, nil
	}
	return net.ResolveUDPAddr("udp", to.String())
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Dropped returns the number of datagrams lost to a full inbox.
func (c *Conn) Dropped() uint64 {
	return c.inbox.Dropped()
}

// Close stops the reader and releases the socket. It is safe to call more
// than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.conn.Close()
	<-c.done
	return err
}
