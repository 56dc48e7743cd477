package transport

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rigado/h5link/h5"
	"github.com/rigado/h5link/slip"
)

func TestLoopbackDeliversSentBytes(t *testing.T) {
	a, b := NewLoopbackPair("a", "b")

	var mu sync.Mutex
	var got []byte
	if err := b.Open(nil, func(p []byte) {
		mu.Lock()
		got = append(got, p...)
		mu.Unlock()
	}, nil); err != nil {
		t.Fatalf("b.Open() error = %v", err)
	}
	if err := a.Open(nil, nil, nil); err != nil {
		t.Fatalf("a.Open() error = %v", err)
	}

	if err := a.Send([]byte{1, 2, 3}); err != nil {
		t.Fatalf("a.Send() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		done := bytes.Equal(got, []byte{1, 2, 3})
		mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %X, want [1 2 3]", got)
		}
		time.Sleep(time.Millisecond)
	}

	a.Close()
	b.Close()
}

func TestLoopbackDropWhenDiscardsMatchedFrames(t *testing.T) {
	a, b := NewLoopbackPair("a", "b")
	b.DropWhen(func(frame []byte) bool { return bytes.Contains(frame, []byte{0xFF}) })

	var mu sync.Mutex
	var got []byte
	if err := b.Open(nil, func(p []byte) {
		mu.Lock()
		got = append(got, p...)
		mu.Unlock()
	}, nil); err != nil {
		t.Fatalf("b.Open() error = %v", err)
	}
	if err := a.Open(nil, nil, nil); err != nil {
		t.Fatalf("a.Open() error = %v", err)
	}

	if err := a.Send([]byte{0xFF, 0xFF}); err != nil {
		t.Fatalf("a.Send() error = %v", err)
	}
	if err := a.Send([]byte{0x01, 0x02}); err != nil {
		t.Fatalf("a.Send() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if bytes.Contains(got, []byte{0xFF}) {
		t.Fatalf("got %X, want the 0xFF frame dropped", got)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Fatalf("got %X, want [1 2]", got)
	}
}

func TestLoopbackSendOnClosedEndpointErrors(t *testing.T) {
	a, b := NewLoopbackPair("a", "b")
	_ = b

	if err := a.Send([]byte{1}); err == nil {
		t.Fatal("Send() on unopened endpoint error = nil, want non-nil")
	}
}

func TestDropLinkControlPayloadMatchesDecodedFrame(t *testing.T) {
	drop := DropLinkControlPayload(h5.Sync)

	syncFrame, err := h5.Encode(h5.BuildSync(), 0, 0, false, h5.PktLinkControl)
	if err != nil {
		t.Fatalf("h5.Encode() error = %v", err)
	}
	if !drop(slip.Encode(syncFrame)) {
		t.Fatal("drop(sync frame) = false, want true")
	}

	resetFrame, err := h5.Encode(nil, 0, 0, false, h5.PktReset)
	if err != nil {
		t.Fatalf("h5.Encode() error = %v", err)
	}
	if drop(slip.Encode(resetFrame)) {
		t.Fatal("drop(reset frame) = true, want false")
	}

	if drop([]byte{0x00}) {
		t.Fatal("drop(garbage) = true, want false")
	}
}
