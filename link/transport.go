package link

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/h5link/h5"
	"github.com/rigado/h5link/reassemble"
)

// Stats holds cumulative packet counters and the most recent state
// transition, used by the diagnostics store to persist link health
// between runs.
type Stats struct {
	Outgoing      uint64
	Incoming      uint64
	ErrorPackets  uint64
	LastState     State
	LastStatus    StatusCode
	LastStatusMsg string
	ConfigByte    byte
}

// Transport is the façade over the state machine and ack engine: it presents Open/Send/Close/State to
// the upper stack, owns the state-machine worker and the ack engine, and
// dispatches inbound decoded frames between them.
type Transport struct {
	lower                  LowerTransport
	retransmissionInterval time.Duration
	cfgByte                byte
	log                    Logger

	statusCb StatusFunc
	dataCb   DataFunc
	logCb    LogFunc

	mu           sync.Mutex
	cond         *sync.Cond
	currentState State
	evt          event
	workerDone   chan struct{}

	sendMu  sync.Mutex
	ackMu   sync.Mutex
	ackCond *sync.Cond
	seq     uint8
	ack     uint8

	lastPacket []byte

	reasm *reassemble.Reassembler

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Transport at construction time.
type Option func(*Transport)

// WithRetransmissionInterval overrides the 250ms default wait for the ack
// of a reliable Send before retransmitting. Link-control retransmissions
// during negotiation always use NonActiveStateTimeout.
func WithRetransmissionInterval(d time.Duration) Option {
	return func(t *Transport) { t.retransmissionInterval = d }
}

// WithConfigByte sets the opaque configuration octet sent in CONFIG
// messages during STATE_INITIALIZED. Default 0.
func WithConfigByte(b byte) Option {
	return func(t *Transport) { t.cfgByte = b }
}

// WithLogger overrides the module's default logrus-backed Logger.
func WithLogger(l Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New constructs a Transport over lower, in STATE_START. The state
// machine does not start running until Open is called.
func New(lower LowerTransport, opts ...Option) *Transport {
	t := &Transport{
		lower:                  lower,
		retransmissionInterval: DefaultRetransmissionInterval,
		currentState:           StateStart,
		reasm:                  reassemble.New(),
	}
	t.cond = sync.NewCond(&t.mu)
	t.ackCond = sync.NewCond(&t.ackMu)

	for _, opt := range opts {
		opt(t)
	}

	if t.log == nil {
		t.log = linkLogger(GetLogger(), lower)
	}
	t.log = withState(t.log, t.currentState)

	return t
}

// State reports the current link state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentState
}

func (t *Transport) setState(s State) {
	t.mu.Lock()
	t.currentState = s
	t.log = withState(t.log, s)
	t.statsMu.Lock()
	t.stats.LastState = s
	t.statsMu.Unlock()
	t.cond.Broadcast()
	t.mu.Unlock()
}

func (t *Transport) waitForState(want State, timeout time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	waitTimeout(t.cond, &t.mu, timeout, func() bool { return t.currentState == want })
	return t.currentState == want
}

// Open starts the state-machine worker, opens the lower transport and
// blocks up to OpenWaitTimeout for STATE_ACTIVE. A timeout returns
// ErrTimeout but leaves the worker running in whichever state it reached.
func (t *Transport) Open(status StatusFunc, data DataFunc, logf LogFunc) error {
	t.mu.Lock()
	if t.currentState != StateStart {
		t.mu.Unlock()
		return errors.Wrap(ErrInvalidState, "Open called outside STATE_START")
	}
	t.mu.Unlock()

	t.statusCb = status
	t.dataCb = data
	t.logCb = logf

	t.workerDone = make(chan struct{})
	go t.run()

	lowerErr := t.lower.Open(t.onLowerStatus, t.onLowerData, t.onLowerLog)

	t.mu.Lock()
	if lowerErr != nil {
		t.evt.ioResourceError = true
	} else {
		t.evt.opened = true
	}
	t.cond.Broadcast()
	t.mu.Unlock()

	if t.waitForState(StateActive, OpenWaitTimeout) {
		return nil
	}
	return ErrTimeout
}

// Close requests a cooperative shutdown of whichever state the worker is
// currently in, waits for it to converge to STATE_CLOSED, and closes the
// lower transport. Close is always accepted, from any state, and is safe
// to call exactly once. Before Open, it moves the link straight to
// STATE_CLOSED; a worker that has already reached STATE_FAILED stays there.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.evt.closed = true
	t.cond.Broadcast()
	t.mu.Unlock()

	if t.workerDone != nil {
		<-t.workerDone
	} else {
		t.setState(StateClosed)
	}

	return t.lower.Close()
}

// Send transmits one payload as a reliable VENDOR_SPECIFIC frame and waits
// for its ack. Concurrent calls are serialized, so at most one frame is in
// flight. It rejects with ErrInvalidState unless the link is ACTIVE and
// returns ErrTimeout if PacketRetransmissions is exhausted without a
// matching ack. The link remains ACTIVE on timeout; a late ack for the
// timed-out frame is not dropped: it carries seq+1 and advances seq when
// it arrives.
func (t *Transport) Send(payload []byte) error {
	if t.State() != StateActive {
		return errors.Wrap(ErrInvalidState, "Send called outside STATE_ACTIVE")
	}

	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	t.ackMu.Lock()
	seq := t.seq
	ack := t.ack
	t.ackMu.Unlock()

	h5Frame, err := h5.Encode(payload, seq, ack, true, h5.PktVendorSpecific)
	if err != nil {
		return errors.Wrap(ErrInternal, err.Error())
	}
	encoded := encodeSlip(h5Frame)

	t.ackMu.Lock()
	t.lastPacket = encoded
	t.ackMu.Unlock()
	defer func() {
		t.ackMu.Lock()
		t.lastPacket = nil
		t.ackMu.Unlock()
	}()

	remaining := PacketRetransmissions

	for remaining > 0 {
		t.logOutbound(h5Frame)
		// lower.Send does blocking I/O; it must never run with ackMu held,
		// or handleAck can't advance seq on the lower transport's own
		// delivery goroutine until the write returns.
		if err := t.lower.Send(encoded); err != nil {
			return errors.Wrap(ErrInternal, err.Error())
		}

		t.ackMu.Lock()
		seqBefore := t.seq
		waitTimeout(t.ackCond, &t.ackMu, t.retransmissionInterval, func() bool { return t.seq != seqBefore })
		acked := t.seq != seqBefore
		t.ackMu.Unlock()

		if acked {
			return nil
		}

		remaining--
	}

	return ErrTimeout
}

// Snapshot returns a copy of the cumulative link statistics.
func (t *Transport) Snapshot() Stats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}
