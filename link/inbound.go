package link

import (
	"fmt"

	"github.com/rigado/h5link/h5"
	"github.com/rigado/h5link/slip"
)

// onLowerData is the lower transport's data callback. It runs on whatever
// goroutine the lower transport delivers on; the reassembler and
// everything downstream of it (SLIP decode, H5 decode, classifier) run
// synchronously on that same goroutine, single-threaded by contract.
func (t *Transport) onLowerData(chunk []byte) {
	for _, raw := range t.reasm.Feed(chunk) {
		t.processFrame(raw)
	}
}

func (t *Transport) onLowerStatus(code StatusCode, message string) {
	if code == StatusIOResourcesUnavailable {
		t.mu.Lock()
		t.evt.ioResourceError = true
		t.cond.Broadcast()
		t.mu.Unlock()
	}

	t.statsMu.Lock()
	t.stats.LastStatus = code
	t.stats.LastStatusMsg = message
	t.statsMu.Unlock()

	if t.statusCb != nil {
		t.statusCb(code, message)
	}
}

func (t *Transport) onLowerLog(level LogLevel, message string) {
	if t.logCb != nil {
		t.logCb(level, message)
	}
}

// processFrame decodes one SLIP-delimited frame and dispatches it per the
// classifier. Decode failures are counted as error packets and
// dropped, never propagated.
func (t *Transport) processFrame(raw []byte) {
	body, err := slip.Decode(raw)
	if err != nil {
		t.countError()
		t.log.Debugf("slip decode error: %v", err)
		return
	}

	hdr, payload, err := h5.Decode(body)
	if err != nil {
		t.countError()
		t.log.Debugf("h5 decode error: %v", err)
		return
	}

	t.countInbound()

	if t.State() == StateReset {
		// All packets arriving while in STATE_RESET are dropped.
		return
	}

	switch hdr.Type {
	case h5.PktLinkControl:
		t.handleLinkControl(payload)
	case h5.PktVendorSpecific:
		if hdr.Reliable && t.State() == StateActive {
			t.handleInboundReliable(hdr, payload)
		}
	case h5.PktAck:
		t.handleAck(hdr.Ack)
	}
}

func (t *Transport) handleLinkControl(payload []byte) {
	switch t.State() {
	case StateUninitialized:
		switch {
		case h5.IsSyncResponse(payload):
			t.mu.Lock()
			t.evt.syncRspReceived = true
			t.cond.Broadcast()
			t.mu.Unlock()
		case h5.IsSync(payload):
			t.sendSyncResponse()
		}

	case StateInitialized:
		switch {
		case h5.IsSyncConfigResponse(payload):
			t.mu.Lock()
			t.evt.syncConfigRspReceived = true
			t.cond.Broadcast()
			t.mu.Unlock()
		case h5.IsSyncConfig(payload):
			cfg, _ := h5.ConfigByte(payload)
			t.sendSyncConfigResponse(cfg)
		case h5.IsSync(payload):
			t.sendSyncResponse()
		}

	case StateActive:
		switch {
		case h5.IsSync(payload):
			t.mu.Lock()
			t.evt.syncReceived = true
			t.cond.Broadcast()
			t.mu.Unlock()
		case h5.IsSyncConfig(payload):
			cfg, _ := h5.ConfigByte(payload)
			t.sendSyncConfigResponse(cfg)
		}
	}

	switch h5.ClassifyLinkCtrl(payload) {
	case h5.LinkCtrlWakeup, h5.LinkCtrlWoken, h5.LinkCtrlSleep:
		t.log.Debugf("recognized %s link-control frame, not acted on", h5.ClassifyLinkCtrl(payload))
	}
}

// handleInboundReliable implements the inbound half of the ack engine: a reliable
// VENDOR_SPECIFIC frame in ACTIVE either advances ack and is delivered, or
// is dropped behind a cumulative ACK of the unchanged ack number.
func (t *Transport) handleInboundReliable(hdr h5.Header, payload []byte) {
	t.ackMu.Lock()
	if hdr.Seq == t.ack {
		t.ack = (t.ack + 1) & 0x07
		cur := t.ack
		t.ackMu.Unlock()

		t.sendAckWith(cur)
		if t.dataCb != nil {
			t.dataCb(payload)
		}
		return
	}

	cur := t.ack
	t.ackMu.Unlock()
	t.sendAckWith(cur)
}

// handleAck implements the inbound ack path of the ack engine.
func (t *Transport) handleAck(ackNum uint8) {
	t.ackMu.Lock()
	expected := (t.seq + 1) & 0x07

	switch {
	case ackNum == expected:
		t.seq = expected
		t.ackCond.Broadcast()
		t.ackMu.Unlock()

	case ackNum == t.seq:
		// Duplicate ack from a previous exchange; ignore.
		t.ackMu.Unlock()

	default:
		t.ackMu.Unlock()
		t.mu.Lock()
		t.evt.irrecoverableSyncError = true
		t.cond.Broadcast()
		t.mu.Unlock()
	}
}

func (t *Transport) countInbound() {
	t.statsMu.Lock()
	t.stats.Incoming++
	t.statsMu.Unlock()
}

func (t *Transport) countError() {
	t.statsMu.Lock()
	t.stats.ErrorPackets++
	t.statsMu.Unlock()
}

func (t *Transport) logOutbound(frame []byte) {
	t.statsMu.Lock()
	t.stats.Outgoing++
	t.statsMu.Unlock()
	t.log.Debugf("-> %s", describeFrame(frame))
}

func describeFrame(frame []byte) string {
	hdr, payload, err := h5.Decode(frame)
	if err != nil {
		return fmt.Sprintf("% X (undecodable: %v)", frame, err)
	}
	return fmt.Sprintf("type:%s reliable:%v seq:%d ack:%d len:%d", hdr.Type, hdr.Reliable, hdr.Seq, hdr.Ack, len(payload))
}
