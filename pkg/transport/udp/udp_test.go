package udp

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/QYUbit/Tickline/pkg/transport"
)

func pollUntil(t *testing.T, c transport.PacketConn, buf []byte) (int, net.Addr) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, from, err := c.Poll(buf)
		if err != nil {
			t.Fatalf("poll: %v", err)
		}
		if n > 0 {
			return n, from
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no datagram before deadline")
	return 0, nil
}

// TestDialListenExchange tests a round trip over loopback.
func TestDialListenExchange(t *testing.T) {
	server, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()

	client, err := Dial(server.LocalAddr().String(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	if n, _, err := server.Poll(make([]byte, 8)); n != 0 || err != nil {
		t.Fatalf("expected empty poll, got %d %v", n, err)
	}

	if err := client.WriteTo([]byte("ping"), nil); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 64)
	n, from := pollUntil(t, server, buf)
	if string(buf[:n]) != "ping" {
		t.Fatalf("expected ping, got %q", buf[:n])
	}

	if err := server.WriteTo([]byte("pong"), from); err != nil {
		t.Fatal(err)
	}
	n, _ = pollUntil(t, client, buf)
	if string(buf[:n]) != "pong" {
		t.Errorf("expected pong, got %q", buf[:n])
	}
}

// TestWriteWithoutPeer tests that a listening conn needs a destination.
func TestWriteWithoutPeer(t *testing.T) {
	server, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()

	if err := server.WriteTo([]byte("x"), nil); !errors.Is(err, transport.ErrNoPeer) {
		t.Errorf("expected ErrNoPeer, got %v", err)
	}
}

// TestClose tests that a closed conn reports ErrClosed.
func TestClose(t *testing.T) {
	c, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	if _, _, err := c.Poll(make([]byte, 4)); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("expected ErrClosed from Poll, got %v", err)
	}
	if err := c.WriteTo([]byte("x"), c.LocalAddr()); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("expected ErrClosed from WriteTo, got %v", err)
	}
}
