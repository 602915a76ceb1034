// Package transport defines the datagram surface the tick loops poll. Every
// implementation delivers one logical message per datagram and never blocks
// in Poll.
package transport

//go:generate mockgen -destination=mock_transport/mock_transport.go -package=mock_transport . PacketConn

import (
	"errors"
	"net"
)

var (
	ErrClosed = errors.New("transport is closed")
	ErrNoPeer = errors.New("no peer for address")
)

// PacketConn is a polled datagram endpoint.
type PacketConn interface {
	// Poll copies the next pending datagram into buf. It returns 0, nil, nil
	// immediately when nothing is pending; an empty datagram has a non-nil
	// from. A datagram longer than buf is truncated.
	Poll(buf []byte) (n int, from net.Addr, err error)

	// WriteTo sends p as one datagram. A nil address targets the peer of a
	// dialed conn.
	WriteTo(p []byte, to net.Addr) error

	LocalAddr() net.Addr
	Close() error
}
