// Package link implements the H5 link negotiation state machine, the
// reliable send/ack engine, and the transport façade that sits above
// them — the core of the Three-Wire UART transport. It is grounded on
// rigado/ble's linux/hci/h4 (byte-stream framing) and linux/hci/controller
// (command/response bookkeeping over a goroutine pump), generalized from
// HCI's framing to H5's negotiate-then-exchange protocol.
package link

// LowerDataFunc is invoked by a LowerTransport with arbitrary-size chunks
// of raw received bytes, exactly as they came off the wire.
type LowerDataFunc func(data []byte)

// StatusFunc reports upper-stack status notifications.
type StatusFunc func(code StatusCode, message string)

// DataFunc delivers one decoded, in-order reliable VENDOR_SPECIFIC payload.
type DataFunc func(payload []byte)

// LogFunc receives human-readable trace lines.
type LogFunc func(level LogLevel, message string)

// LowerTransport is the abstract byte-stream endpoint beneath the H5
// transport: a real UART/USB-CDC port, a TCP virtual-port bridge, or an
// in-memory loopback pair. Open must not return until the transport is
// ready to Send; Close must be safe to call exactly once.
type LowerTransport interface {
	Open(status StatusFunc, data LowerDataFunc, log LogFunc) error
	Close() error
	Send(b []byte) error
}

// StatusCode mirrors the upper-stack status codes this transport emits.
type StatusCode int

// Status codes emitted via StatusFunc.
const (
	StatusUnknown StatusCode = iota
	StatusIOResourcesUnavailable
	StatusResetPerformed
	StatusConnectionActive
	StatusPktSendMaxRetriesReached
)

func (c StatusCode) String() string {
	switch c {
	case StatusIOResourcesUnavailable:
		return "IO_RESOURCES_UNAVAILABLE"
	case StatusResetPerformed:
		return "RESET_PERFORMED"
	case StatusConnectionActive:
		return "CONNECTION_ACTIVE"
	case StatusPktSendMaxRetriesReached:
		return "PKT_SEND_MAX_RETRIES_REACHED"
	default:
		return "UNKNOWN"
	}
}

// LogLevel mirrors logrus' severity levels used for LogFunc trace lines.
type LogLevel int

// Trace severities.
const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)
