package link

import (
	"github.com/rigado/h5link/h5"
	"github.com/rigado/h5link/slip"
)

func encodeSlip(h5Frame []byte) []byte {
	return slip.Encode(h5Frame)
}

// sendControl is the common tail of every control packet send: H5-encode,
// SLIP-wrap, trace, transmit. Control frames never hold the ack mutex
// across the lower-transport send.
func (t *Transport) sendControl(payload []byte, seq, ack uint8, reliable bool, pktType h5.PktType) error {
	frame, err := h5.Encode(payload, seq, ack, reliable, pktType)
	if err != nil {
		return err
	}

	t.logOutbound(frame)
	return t.lower.Send(encodeSlip(frame))
}

func (t *Transport) sendReset() error {
	return t.sendControl(nil, 0, 0, false, h5.PktReset)
}

func (t *Transport) sendSync() error {
	return t.sendControl(h5.BuildSync(), 0, 0, false, h5.PktLinkControl)
}

func (t *Transport) sendSyncResponse() error {
	return t.sendControl(h5.BuildSyncResponse(), 0, 0, false, h5.PktLinkControl)
}

func (t *Transport) sendSyncConfig() error {
	t.statsMu.Lock()
	t.stats.ConfigByte = t.cfgByte
	t.statsMu.Unlock()
	return t.sendControl(h5.BuildSyncConfig(t.cfgByte), 0, 0, false, h5.PktLinkControl)
}

func (t *Transport) sendSyncConfigResponse(cfg byte) error {
	return t.sendControl(h5.BuildSyncConfigResponse(cfg), 0, 0, false, h5.PktLinkControl)
}

// sendAckWith transmits an ACK frame carrying ackNum. It must be called
// without the ack mutex held.
func (t *Transport) sendAckWith(ackNum uint8) error {
	return t.sendControl(nil, 0, ackNum, false, h5.PktAck)
}
