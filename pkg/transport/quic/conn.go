// Package quic implements transport.PacketConn on QUIC datagrams using
// quic-go. Messages too large for a datagram travel on a unidirectional
// stream of their own, so callers see the same one-message-per-Poll surface
// as with UDP.
package quic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
	"github.com/quic-go/quic-go"
)

const (
	InboxSize = 1024

	// maxDatagramPayload stays under the smallest datagram frame quic-go
	// will send on a 1280 byte path.
	maxDatagramPayload = 1100

	closeCodeShutdown quic.ApplicationErrorCode = 0
)

func defaultConfig() *quic.Config {
	return &quic.Config{
		EnableDatagrams: true,
		KeepAlivePeriod: 5 * time.Second,
		MaxIdleTimeout:  30 * time.Second,
	}
}

// Conn is either a listener with one quic.Connection per remote address or a
// dialed conn with a single peer.
type Conn struct {
	listener *quic.Listener
	local    net.Addr

	peersMu sync.RWMutex
	peers   map[string]quic.Connection
	server  quic.Connection

	inbox  *transport.Inbox
	logger tlog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// Listen accepts QUIC connections on addr until ctx ends or Close is called.
func Listen(ctx context.Context, addr string, tlsConf *tls.Config, logger tlog.Logger) (*Conn, error) {
	listener, err := quic.ListenAddr(addr, tlsConf, defaultConfig())
	if err != nil {
		return nil, err
	}

	c := newConn(ctx, logger)
	c.listener = listener
	c.local = listener.Addr()

	c.wg.Add(1)
	go c.acceptConnections()

	return c, nil
}

// Dial connects to a listening Conn. WriteTo(p, nil) sends to it.
func Dial(ctx context.Context, addr string, tlsConf *tls.Config, logger tlog.Logger) (*Conn, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, defaultConfig())
	if err != nil {
		return nil, err
	}

	c := newConn(context.Background(), logger)
	c.server = conn
	c.local = conn.LocalAddr()
	c.track(conn)

	return c, nil
}

func newConn(ctx context.Context, logger tlog.Logger) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	return &Conn{
		peers:  make(map[string]quic.Connection),
		inbox:  transport.NewInbox(InboxSize),
		logger: tlog.OrNop(logger),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Conn) acceptConnections() {
	defer c.wg.Done()

	for {
		conn, err := c.listener.Accept(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("quic listener stopped", "error", err)
			}
			return
		}

		c.logger.Debug("quic connection opened", "remote", conn.RemoteAddr())
		c.track(conn)
	}
}

func (c *Conn) track(conn quic.Connection) {
	key := conn.RemoteAddr().String()

	c.peersMu.Lock()
	c.peers[key] = conn
	c.peersMu.Unlock()

	var pumps sync.WaitGroup
	pumps.Add(2)
	c.wg.Add(1)

	go func() {
		defer pumps.Done()
		c.datagramPump(conn)
	}()
	go func() {
		defer pumps.Done()
		c.streamPump(conn)
	}()
	go func() {
		defer c.wg.Done()
		pumps.Wait()

		c.peersMu.Lock()
		if c.peers[key] == conn {
			delete(c.peers, key)
		}
		c.peersMu.Unlock()

		c.logger.Debug("quic connection closed", "remote", key)
	}()
}

func (c *Conn) datagramPump(conn quic.Connection) {
	for {
		data, err := conn.ReceiveDatagram(c.ctx)
		if err != nil {
			return
		}
		c.push(data, conn.RemoteAddr())
	}
}

func (c *Conn) streamPump(conn quic.Connection) {
	for {
		stream, err := conn.AcceptUniStream(c.ctx)
		if err != nil {
			return
		}

		data, err := io.ReadAll(io.LimitReader(stream, protocol.MaxDatagramSize))
		if err != nil {
			c.logger.Debug("quic stream read failed", "remote", conn.RemoteAddr(), "error", err)
			continue
		}
		c.push(data, conn.RemoteAddr())
	}
}

func (c *Conn) push(data []byte, from net.Addr) {
	if !c.inbox.Push(transport.Packet{Data: data, From: from}) {
		c.logger.Debug("quic inbox full, message dropped", "from", from)
	}
}

func (c *Conn) Poll(buf []byte) (int, net.Addr, error) {
	return c.inbox.Poll(buf)
}

func (c *Conn) WriteTo(p []byte, to net.Addr) error {
	if c.closed.Load() {
		return transport.ErrClosed
	}

	conn, err := c.peer(to)
	if err != nil {
		return err
	}

	if len(p) <= maxDatagramPayload {
		return conn.SendDatagram(p)
	}

	stream, err := conn.OpenUniStream()
	if err != nil {
		return fmt.Errorf("open stream to %s: %w", conn.RemoteAddr(), err)
	}
	if _, err := stream.Write(p); err != nil {
		return fmt.Errorf("write stream to %s: %w", conn.RemoteAddr(), err)
	}
	return stream.Close()
}

func (c *Conn) peer(to net.Addr) (quic.Connection, error) {
	if to == nil {
		if c.server == nil {
			return nil, transport.ErrNoPeer
		}
		return c.server, nil
	}

	c.peersMu.RLock()
	conn, ok := c.peers[to.String()]
	c.peersMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrNoPeer, to)
	}
	return conn, nil
}

func (c *Conn) LocalAddr() net.Addr {
	return c.local
}

// Close shuts every connection down and waits for the pumps to exit.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.cancel()

	var err error
	if c.listener != nil {
		err = c.listener.Close()
	}

	c.peersMu.RLock()
	conns := make([]quic.Connection, 0, len(c.peers))
	for _, conn := range c.peers {
		conns = append(conns, conn)
	}
	c.peersMu.RUnlock()

	for _, conn := range conns {
		conn.CloseWithError(closeCodeShutdown, "shutting down")
	}

	c.wg.Wait()
	c.inbox.Close()
	return err
}
