// Package netplay streams a live session's events over UDP so other
// machines can play along. A datagram carries one event in the same
// line form the session log uses; listeners subscribe by sending any
// datagram to the broadcast port and are forgotten when the process
// exits. UDP loss just drops the odd note, which is acceptable for
// playing together and keeps the path stateless.
package netplay

import (
	"fmt"
	"net"
	"sync"

	"sfkeys/debug"
	"sfkeys/tracker"
)

// subscribe datagrams have no meaningful payload; the sender address
// is the subscription.
const maxDatagram = 48

// Broadcaster sends session events to every subscribed listener. It
// implements tracker.Writer, so it tees with the log file writer and
// the session code never special-cases network play.
type Broadcaster struct {
	conn *net.UDPConn

	mu        sync.Mutex
	listeners map[string]*net.UDPAddr
	closed    bool
}

// Serve opens a broadcast socket on addr and starts accepting
// subscriptions.
func Serve(addr string) (*Broadcaster, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("broadcast address: %w", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("open broadcast socket: %w", err)
	}
	b := &Broadcaster{
		conn:      conn,
		listeners: make(map[string]*net.UDPAddr),
	}
	go b.accept()
	return b, nil
}

func (b *Broadcaster) accept() {
	buf := make([]byte, maxDatagram)
	for {
		_, addr, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			return // socket closed
		}
		b.mu.Lock()
		if _, known := b.listeners[addr.String()]; !known {
			b.listeners[addr.String()] = addr
			debug.Log("netplay", "listener joined: %s", addr)
		}
		b.mu.Unlock()
	}
}

// Record sends one event to every listener. Events arrive as they
// happen, so the elapsed field is always zero; timing is carried by
// delivery itself.
func (b *Broadcaster) Record(kind tracker.Kind, payload string) {
	ev := tracker.Event{Kind: kind, Payload: payload}
	data := []byte(ev.Encode() + "\n")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, addr := range b.listeners {
		if _, err := b.conn.WriteToUDP(data, addr); err != nil {
			debug.Log("netplay", "send to %s failed: %v", addr, err)
		}
	}
}

// Addr returns the bound broadcast address, useful when Serve was
// given port 0.
func (b *Broadcaster) Addr() string {
	return b.conn.LocalAddr().String()
}

// Listeners reports how many listeners have subscribed.
func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Close stops accepting subscriptions and releases the socket.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.conn.Close()
}
