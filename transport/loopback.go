// Package transport provides concrete lower-transport drivers for
// link.Transport: an in-memory loopback pair for tests and the CLI demo,
// a real serial port driver, and a TCP/virtual-port driver for link
// emulators that expose the H5 byte stream over a socket.
package transport

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/h5link/h5"
	"github.com/rigado/h5link/link"
	"github.com/rigado/h5link/slip"
)

// Loopback is an in-process link.LowerTransport endpoint. Two endpoints
// created together with NewLoopbackPair exchange bytes as if connected by
// a looped serial line; it is grounded on original_source's
// test/virtual_uart.h, including its fault-injection hook.
type Loopback struct {
	name string
	peer *Loopback

	mu     sync.Mutex
	open   bool
	drop   func([]byte) bool
	dataCb link.LowerDataFunc

	inCh    chan []byte
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewLoopbackPair returns two endpoints wired to each other.
func NewLoopbackPair(nameA, nameB string) (*Loopback, *Loopback) {
	a := &Loopback{name: nameA}
	b := &Loopback{name: nameB}
	a.peer = b
	b.peer = a
	return a, b
}

// DropWhen installs a predicate evaluated against every inbound raw frame
// (including SLIP delimiters) this endpoint receives; frames for which it
// returns true are silently discarded before reaching the data callback.
// Used to drive the missing-SYNC_RESPONSE / missing-SYNC_CONFIG_RESPONSE
// fault scenarios.
func (l *Loopback) DropWhen(pred func(frame []byte) bool) {
	l.mu.Lock()
	l.drop = pred
	l.mu.Unlock()
}

// Open implements link.LowerTransport.
func (l *Loopback) Open(_ link.StatusFunc, data link.LowerDataFunc, _ link.LogFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open {
		return errors.New("loopback: already open")
	}

	l.dataCb = data
	l.inCh = make(chan []byte, 256)
	l.closeCh = make(chan struct{})
	l.open = true

	l.wg.Add(1)
	go l.pump()

	return nil
}

// Close implements link.LowerTransport.
func (l *Loopback) Close() error {
	l.mu.Lock()
	if !l.open {
		l.mu.Unlock()
		return nil
	}
	l.open = false
	close(l.closeCh)
	l.mu.Unlock()

	l.wg.Wait()
	return nil
}

// Send implements link.LowerTransport by queueing b on the peer's inbound
// channel. Send never blocks on the peer's processing of b.
func (l *Loopback) Send(b []byte) error {
	l.mu.Lock()
	open := l.open
	peer := l.peer
	l.mu.Unlock()

	if !open {
		return errors.New("loopback: send on closed endpoint")
	}

	peer.mu.Lock()
	peerOpen := peer.open
	ch := peer.inCh
	peer.mu.Unlock()

	if !peerOpen {
		return nil
	}

	frame := append([]byte(nil), b...)
	select {
	case ch <- frame:
	default:
		// Peer's inbound queue is saturated; drop rather than block the
		// sender, same trade-off a real UART makes under backpressure.
	}
	return nil
}

func (l *Loopback) pump() {
	defer l.wg.Done()

	for {
		select {
		case b := <-l.inCh:
			l.mu.Lock()
			drop := l.drop
			cb := l.dataCb
			l.mu.Unlock()

			if drop != nil && drop(b) {
				continue
			}
			if cb != nil {
				cb(b)
			}

		case <-l.closeCh:
			return
		}
	}
}

// DropLinkControlPayload returns a DropWhen predicate that discards any
// LINK_CONTROL frame whose SLIP+H5-decoded payload begins with pattern.
// Used to simulate a peer that never answers SYNC or SYNC_CONFIG.
func DropLinkControlPayload(pattern []byte) func([]byte) bool {
	return func(frame []byte) bool {
		body, err := slip.Decode(frame)
		if err != nil {
			return false
		}
		hdr, payload, err := h5.Decode(body)
		if err != nil {
			return false
		}
		return hdr.Type == h5.PktLinkControl && h5.MatchPattern(payload, 0, pattern)
	}
}
