package link

// event carries every condition that can wake the state-machine worker:
// a tagged record instead of per-state exit-criteria objects and the
// downcasts needed to read them. Every state except START clears the
// record on entry (see reset) and reads only the fields it cares about,
// guarded by Transport.mu.
//
// Priority of exit causes, preserved verbatim in every state: an I/O
// error outranks a close request, which outranks ordinary protocol
// progress.
type event struct {
	ioResourceError bool
	closed          bool

	opened bool // STATE_START

	resetSent bool // STATE_RESET
	resetWait bool

	syncSent        bool // STATE_UNINITIALIZED
	syncRspReceived bool

	syncConfigSent        bool // STATE_INITIALIZED
	syncConfigRspReceived bool

	syncReceived           bool // STATE_ACTIVE
	irrecoverableSyncError bool
}

// reset clears the per-state progress fields on entry to a state. A close
// request or I/O error is kept: every state that observes one moves to a
// terminal state, so a flag still set here was raised while the worker
// was between two states, and the state now current must act on it.
func (e *event) reset() {
	*e = event{ioResourceError: e.ioResourceError, closed: e.closed}
}
