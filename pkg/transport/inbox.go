package transport

import (
	"net"
	"sync"
	"sync/atomic"
)

// Packet is one received datagram.
type Packet struct {
	Data []byte
	From net.Addr
}

// Inbox is the bounded queue between a transport's reader goroutines and the
// tick loop. Producers never block: when the queue is full the packet is
// dropped, as the network would have.
type Inbox struct {
	packets   chan Packet
	closed    chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

func NewInbox(size int) *Inbox {
	return &Inbox{
		packets: make(chan Packet, size),
		closed:  make(chan struct{}),
	}
}

// Push enqueues p, reporting whether it was accepted.
func (i *Inbox) Push(p Packet) bool {
	select {
	case <-i.closed:
		return false
	default:
	}

	select {
	case i.packets <- p:
		return true
	default:
		i.dropped.Add(1)
		return false
	}
}

// Poll implements PacketConn.Poll on top of the queue.
func (i *Inbox) Poll(buf []byte) (int, net.Addr, error) {
	select {
	case p := <-i.packets:
		return copy(buf, p.Data), p.From, nil
	default:
	}

	select {
	case <-i.closed:
		return 0, nil, ErrClosed
	default:
		return 0, nil, nil
	}
}

// Close makes later Pushes fail and Polls return ErrClosed once drained.
func (i *Inbox) Close() {
	i.closeOnce.Do(func() {
		close(i.closed)
	})
}

// Dropped returns the number of packets discarded because the queue was full.
func (i *Inbox) Dropped() uint64 {
	return i.dropped.Load()
}
