// Package netsim degrades a transport.PacketConn to reproduce lossy, slow or
// duplicating networks. It keeps no goroutines: delayed datagrams are flushed
// whenever the wrapped conn is polled or written to, so it must be driven
// from the same single goroutine as the tick loop.
package netsim

import (
	"cmp"
	"math/rand/v2"
	"net"
	"slices"
	"time"

	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
)

// Config describes the simulated link. Probabilities are in [0, 1].
type Config struct {
	PacketLoss        float64
	PacketDuplication float64
	Ping              time.Duration
	Jitter            time.Duration
}

// Enabled reports whether c changes anything.
func (c Config) Enabled() bool {
	return c.PacketLoss > 0 || c.PacketDuplication > 0 || c.Ping > 0 || c.Jitter > 0
}

type Option func(*Conn)

// WithRand replaces the random source.
func WithRand(r *rand.Rand) Option {
	return func(c *Conn) { c.rand = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Conn) { c.now = now }
}

func WithLogger(logger tlog.Logger) Option {
	return func(c *Conn) { c.logger = tlog.OrNop(logger) }
}

type pending struct {
	due  time.Time
	seq  uint64
	data []byte
	to   net.Addr
}

// Conn applies Config to outbound datagrams of the wrapped conn.
type Conn struct {
	inner  transport.PacketConn
	cfg    Config
	rand   *rand.Rand
	now    func() time.Time
	logger tlog.Logger

	queue []pending
	seq   uint64

	sent, lost, duplicated uint64
}

func Wrap(inner transport.PacketConn, cfg Config, opts ...Option) *Conn {
	c := &Conn{
		inner:  inner,
		cfg:    cfg,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		logger: tlog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conn) Poll(buf []byte) (int, net.Addr, error) {
	c.flush()
	return c.inner.Poll(buf)
}

// WriteTo may drop, duplicate or delay p. Dropped datagrams report no error,
// as on a real network.
func (c *Conn) WriteTo(p []byte, to net.Addr) error {
	c.flush()

	if c.cfg.PacketLoss > 0 && c.rand.Float64() < c.cfg.PacketLoss {
		c.lost++
		return nil
	}

	copies := 1
	if c.cfg.PacketDuplication > 0 && c.rand.Float64() < c.cfg.PacketDuplication {
		copies = 2
		c.duplicated++
	}

	var firstErr error
	for range copies {
		delay := c.delay()
		if delay <= 0 {
			if err := c.inner.WriteTo(p, to); err != nil && firstErr == nil {
				firstErr = err
			}
			c.sent++
			continue
		}

		c.seq++
		c.enqueue(pending{
			due:  c.now().Add(delay),
			seq:  c.seq,
			data: slices.Clone(p),
			to:   to,
		})
	}
	return firstErr
}

func (c *Conn) delay() time.Duration {
	d := c.cfg.Ping
	if c.cfg.Jitter > 0 {
		d += time.Duration((c.rand.Float64()*2 - 1) * float64(c.cfg.Jitter))
	}
	return d
}

func (c *Conn) enqueue(p pending) {
	i, _ := slices.BinarySearchFunc(c.queue, p, func(a, b pending) int {
		if d := a.due.Compare(b.due); d != 0 {
			return d
		}
		return cmp.Compare(a.seq, b.seq)
	})
	c.queue = slices.Insert(c.queue, i, p)
}

func (c *Conn) flush() {
	if len(c.queue) == 0 {
		return
	}

	now := c.now()
	n := 0
	for n < len(c.queue) && !c.queue[n].due.After(now) {
		p := c.queue[n]
		if err := c.inner.WriteTo(p.data, p.to); err != nil {
			c.logger.Debug("netsim delayed write failed", "to", p.to, "error", err)
		}
		c.sent++
		n++
	}

	clear(c.queue[:n])
	c.queue = c.queue[n:]
}

// Pending returns the number of delayed datagrams not yet sent.
func (c *Conn) Pending() int {
	return len(c.queue)
}

// Stats returns sent, lost and duplicated counts.
func (c *Conn) Stats() (sent, lost, duplicated uint64) {
	return c.sent, c.lost, c.duplicated
}

func (c *Conn) LocalAddr() net.Addr {
	return c.inner.LocalAddr()
}

// Close drops anything still delayed.
func (c *Conn) Close() error {
	c.queue = nil
	return c.inner.Close()
}
