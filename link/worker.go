package link

// run drives the state machine from STATE_START until it converges to a
// terminal state, on its own goroutine. Every transition picks the next
// state by a fixed priority: I/O error outranks close, which
// outranks protocol progress.
func (t *Transport) run() {
	state := StateStart

	for state != StateFailed && state != StateClosed {
		next := t.step(state)
		t.logTransition(state, next)
		state = next
		t.setState(state)
	}

	close(t.workerDone)
}

func (t *Transport) step(state State) State {
	switch state {
	case StateStart:
		return t.stepStart()
	case StateReset:
		return t.stepReset()
	case StateUninitialized:
		return t.stepUninitialized()
	case StateInitialized:
		return t.stepInitialized()
	case StateActive:
		return t.stepActive()
	default:
		return StateFailed
	}
}

func (t *Transport) stepStart() State {
	// No evt.reset() here: STATE_START is entered exactly once, by the
	// worker that Open starts, and Open may already have set evt.opened
	// by the time the worker goroutine is scheduled; resetting would wipe
	// out the only signal this state waits for.
	t.mu.Lock()
	waitTimeout(t.cond, &t.mu, 0, func() bool {
		return t.evt.ioResourceError || t.evt.closed || t.evt.opened
	})
	ioErr, closed, opened := t.evt.ioResourceError, t.evt.closed, t.evt.opened
	t.mu.Unlock()

	switch {
	case ioErr:
		return StateFailed
	case closed:
		return StateClosed
	case opened:
		return StateReset
	default:
		return StateFailed
	}
}

func (t *Transport) stepReset() State {
	t.mu.Lock()
	t.evt.reset()
	t.mu.Unlock()

	t.sendReset()
	t.notifyStatus(StatusResetPerformed, "target reset performed")

	t.mu.Lock()
	t.evt.resetSent = true
	waitTimeout(t.cond, &t.mu, ResetWait, func() bool {
		return t.evt.ioResourceError || t.evt.closed
	})
	t.evt.resetWait = true
	ioErr, closed := t.evt.ioResourceError, t.evt.closed
	t.mu.Unlock()

	switch {
	case ioErr:
		return StateFailed
	case closed:
		return StateClosed
	default:
		return StateUninitialized
	}
}

func (t *Transport) stepUninitialized() State {
	t.mu.Lock()
	t.evt.reset()
	t.mu.Unlock()

	remaining := PacketRetransmissions
	for remaining > 0 {
		t.mu.Lock()
		fulfilled := t.evt.ioResourceError || t.evt.closed || (t.evt.syncSent && t.evt.syncRspReceived)
		t.mu.Unlock()
		if fulfilled {
			break
		}

		t.sendSync()

		t.mu.Lock()
		t.evt.syncSent = true
		waitTimeout(t.cond, &t.mu, NonActiveStateTimeout, func() bool {
			return t.evt.ioResourceError || t.evt.closed || (t.evt.syncSent && t.evt.syncRspReceived)
		})
		t.mu.Unlock()

		remaining--
	}

	t.mu.Lock()
	ioErr, closed := t.evt.ioResourceError, t.evt.closed
	ok := t.evt.syncSent && t.evt.syncRspReceived
	t.mu.Unlock()

	switch {
	case ioErr:
		return StateFailed
	case closed:
		return StateClosed
	case ok:
		return StateInitialized
	}

	if remaining <= 0 {
		t.notifyStatus(StatusPktSendMaxRetriesReached, "max retries reached waiting for SYNC_RESPONSE")
	}
	return StateFailed
}

func (t *Transport) stepInitialized() State {
	t.mu.Lock()
	t.evt.reset()
	t.mu.Unlock()

	remaining := PacketRetransmissions
	for remaining > 0 {
		t.mu.Lock()
		fulfilled := t.evt.ioResourceError || t.evt.closed || (t.evt.syncConfigSent && t.evt.syncConfigRspReceived)
		t.mu.Unlock()
		if fulfilled {
			break
		}

		t.sendSyncConfig()

		t.mu.Lock()
		t.evt.syncConfigSent = true
		waitTimeout(t.cond, &t.mu, NonActiveStateTimeout, func() bool {
			return t.evt.ioResourceError || t.evt.closed || (t.evt.syncConfigSent && t.evt.syncConfigRspReceived)
		})
		t.mu.Unlock()

		remaining--
	}

	t.mu.Lock()
	ioErr, closed := t.evt.ioResourceError, t.evt.closed
	ok := t.evt.syncConfigSent && t.evt.syncConfigRspReceived
	t.mu.Unlock()

	switch {
	case ioErr:
		return StateFailed
	case closed:
		return StateClosed
	case ok:
		return StateActive
	}

	if remaining <= 0 {
		t.notifyStatus(StatusPktSendMaxRetriesReached, "max retries reached waiting for SYNC_CONFIG_RESPONSE")
	}
	return StateFailed
}

func (t *Transport) stepActive() State {
	t.mu.Lock()
	t.evt.reset()
	t.mu.Unlock()

	t.ackMu.Lock()
	t.seq = 0
	t.ack = 0
	t.ackMu.Unlock()

	t.notifyStatus(StatusConnectionActive, "connection active")

	t.mu.Lock()
	waitTimeout(t.cond, &t.mu, 0, func() bool {
		return t.evt.ioResourceError || t.evt.closed || t.evt.syncReceived || t.evt.irrecoverableSyncError
	})
	ioErr, closed := t.evt.ioResourceError, t.evt.closed
	syncReceived, syncErr := t.evt.syncReceived, t.evt.irrecoverableSyncError
	t.mu.Unlock()

	switch {
	case ioErr:
		return StateFailed
	case closed:
		return StateClosed
	case syncReceived || syncErr:
		return StateReset
	default:
		return StateFailed
	}
}

// notifyStatus records the status in the diagnostics snapshot and forwards
// it to the upper stack's StatusFunc, if any. Never called with the
// state-machine mutex held.
func (t *Transport) notifyStatus(code StatusCode, message string) {
	t.statsMu.Lock()
	t.stats.LastStatus = code
	t.stats.LastStatusMsg = message
	t.statsMu.Unlock()

	if t.statusCb != nil {
		t.statusCb(code, message)
	}
}

func (t *Transport) logTransition(from, to State) {
	t.log.Debugf("state change: %s -> %s", from, to)
	if t.logCb != nil {
		t.logCb(LogDebug, "state change: "+from.String()+" -> "+to.String())
	}
}
