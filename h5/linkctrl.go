package h5

// Link-control payloads, transmitted inside LINK_CONTROL (type 15) frames.
// The config octet in Config/ConfigResponse is treated as opaque and
// echoed back verbatim by the responder; see DESIGN.md for why this
// profile does not parse its bitfields.
var (
	Sync            = []byte{0x01, 0x7E}
	SyncResponse    = []byte{0x02, 0x7D}
	configPrefix    = []byte{0x03, 0xFC}
	configRspPrefix = []byte{0x04, 0x7B}
	Wakeup          = []byte{0x05, 0xFA}
	Woken           = []byte{0x06, 0xF9}
	Sleep           = []byte{0x07, 0x78}
)

// LinkCtrlKind classifies a LINK_CONTROL payload.
type LinkCtrlKind int

const (
	LinkCtrlUnknown LinkCtrlKind = iota
	LinkCtrlSync
	LinkCtrlSyncResponse
	LinkCtrlConfig
	LinkCtrlConfigResponse
	LinkCtrlWakeup
	LinkCtrlWoken
	LinkCtrlSleep
)

func (k LinkCtrlKind) String() string {
	switch k {
	case LinkCtrlSync:
		return "SYNC"
	case LinkCtrlSyncResponse:
		return "SYNC_RESPONSE"
	case LinkCtrlConfig:
		return "CONFIG"
	case LinkCtrlConfigResponse:
		return "CONFIG_RESPONSE"
	case LinkCtrlWakeup:
		return "WAKEUP"
	case LinkCtrlWoken:
		return "WOKEN"
	case LinkCtrlSleep:
		return "SLEEP"
	default:
		return "UNKNOWN"
	}
}

// MatchPattern reports whether pattern occurs in data starting at offset,
// bounds-checked against data's length.
func MatchPattern(data []byte, offset int, pattern []byte) bool {
	if offset < 0 || offset >= len(data) {
		return false
	}
	if len(data)-offset < len(pattern) {
		return false
	}
	for i, p := range pattern {
		if data[offset+i] != p {
			return false
		}
	}
	return true
}

// FindPattern scans data for the first occurrence of pattern, returning its
// offset and whether it was found.
func FindPattern(data []byte, pattern []byte) (int, bool) {
	if len(pattern) == 0 || len(pattern) > len(data) {
		return 0, false
	}
	for offset := 0; offset <= len(data)-len(pattern); offset++ {
		if MatchPattern(data, offset, pattern) {
			return offset, true
		}
	}
	return 0, false
}

// IsSync reports whether payload is the SYNC link-control message.
func IsSync(payload []byte) bool { return MatchPattern(payload, 0, Sync) }

// IsSyncResponse reports whether payload is the SYNC_RESPONSE message.
func IsSyncResponse(payload []byte) bool { return MatchPattern(payload, 0, SyncResponse) }

// IsSyncConfig reports whether payload is a CONFIG message.
func IsSyncConfig(payload []byte) bool { return MatchPattern(payload, 0, configPrefix) }

// IsSyncConfigResponse reports whether payload is a CONFIG_RESPONSE message.
func IsSyncConfigResponse(payload []byte) bool { return MatchPattern(payload, 0, configRspPrefix) }

// ConfigByte extracts the opaque configuration octet from a CONFIG or
// CONFIG_RESPONSE payload. ok is false if payload is too short to carry one.
func ConfigByte(payload []byte) (byte, bool) {
	if len(payload) < 3 {
		return 0, false
	}
	return payload[2], true
}

// BuildSync returns the SYNC link-control payload.
func BuildSync() []byte { return append([]byte(nil), Sync...) }

// BuildSyncResponse returns the SYNC_RESPONSE link-control payload.
func BuildSyncResponse() []byte { return append([]byte(nil), SyncResponse...) }

// BuildSyncConfig returns the CONFIG link-control payload carrying cfg.
func BuildSyncConfig(cfg byte) []byte { return append(append([]byte(nil), configPrefix...), cfg) }

// BuildSyncConfigResponse returns the CONFIG_RESPONSE payload echoing cfg.
func BuildSyncConfigResponse(cfg byte) []byte {
	return append(append([]byte(nil), configRspPrefix...), cfg)
}

// ClassifyLinkCtrl identifies which link-control message payload carries.
// WAKEUP/WOKEN/SLEEP are recognized for logging only; nothing in this
// module acts on them.
func ClassifyLinkCtrl(payload []byte) LinkCtrlKind {
	switch {
	case IsSync(payload):
		return LinkCtrlSync
	case IsSyncResponse(payload):
		return LinkCtrlSyncResponse
	case IsSyncConfig(payload):
		return LinkCtrlConfig
	case IsSyncConfigResponse(payload):
		return LinkCtrlConfigResponse
	case MatchPattern(payload, 0, Wakeup):
		return LinkCtrlWakeup
	case MatchPattern(payload, 0, Woken):
		return LinkCtrlWoken
	case MatchPattern(payload, 0, Sleep):
		return LinkCtrlSleep
	default:
		return LinkCtrlUnknown
	}
}
