// Package h5 implements the Three-Wire (H5) framing header defined in
// Bluetooth Core v4.2 Vol. 4 Part D §8: the 4-byte header carrying
// sequence/acknowledgement numbers, packet type, payload length and header
// parity that sits inside every SLIP-delimited frame.
package h5

import "github.com/pkg/errors"

// HeaderLength is the fixed size of an H5 header in bytes.
const HeaderLength = 4

// MaxPayloadLength is the largest payload the 12-bit length field can carry.
const MaxPayloadLength = 1<<12 - 1

// PktType is the 4-bit packet type carried in header byte 1.
type PktType uint8

// Packet types defined by the Three-Wire profile.
const (
	PktAck            PktType = 0
	PktHCICommand     PktType = 1
	PktACLData        PktType = 2
	PktSyncData       PktType = 3
	PktHCIEvent       PktType = 4
	PktReset          PktType = 5
	PktVendorSpecific PktType = 14
	PktLinkControl    PktType = 15
)

func (t PktType) String() string {
	switch t {
	case PktAck:
		return "ACK"
	case PktHCICommand:
		return "HCI_COMMAND"
	case PktACLData:
		return "ACL_DATA"
	case PktSyncData:
		return "SYNC_DATA"
	case PktHCIEvent:
		return "HCI_EVENT"
	case PktReset:
		return "RESET"
	case PktVendorSpecific:
		return "VENDOR_SPECIFIC"
	case PktLinkControl:
		return "LINK_CONTROL"
	default:
		return "RESERVED"
	}
}

func (t PktType) valid() bool {
	switch t {
	case PktAck, PktHCICommand, PktACLData, PktSyncData, PktHCIEvent, PktReset, PktVendorSpecific, PktLinkControl:
		return true
	default:
		return false
	}
}

// Sentinel errors returned by Decode.
var (
	ErrHeaderChecksum    = errors.New("h5: header checksum mismatch")
	ErrMalformedHeader   = errors.New("h5: malformed header")
	ErrTruncated         = errors.New("h5: truncated frame")
	ErrUnsupportedOption = errors.New("h5: data-integrity option is not supported")
)

// Header is the decoded form of an H5 frame header. Encode never sets
// DataIntegrity, and Decode rejects a frame that sets it with
// ErrUnsupportedOption; the CRC16 payload check is a protocol option this
// profile leaves disabled.
type Header struct {
	Seq           uint8
	Ack           uint8
	DataIntegrity bool
	Reliable      bool
	Type          PktType
	PayloadLength uint16
}

const (
	ackMask          = 0x07
	dataIntegrityBit = 0x08
	reliableBit      = 0x10
	seqShift         = 5
	seqMask          = 0x07
	typeMask         = 0x0F
	lengthLowShift   = 4
	lengthLowMask    = 0x0F
)

func checksum(b0, b1, b2 byte) byte {
	sum := int(b0) + int(b1) + int(b2)
	return byte(0xFF - (sum % 256))
}

// Encode builds an H5 header followed by payload for a reliable or
// unreliable frame. The data-integrity bit is never set; this profile
// disables the CRC16 option entirely (see Decode).
func Encode(payload []byte, seq, ack uint8, reliable bool, pktType PktType) ([]byte, error) {
	if len(payload) > MaxPayloadLength {
		return nil, errors.Wrapf(ErrMalformedHeader, "payload length %d exceeds %d", len(payload), MaxPayloadLength)
	}

	length := uint16(len(payload))

	b0 := (ack & ackMask) | ((seq & seqMask) << seqShift)
	if reliable {
		b0 |= reliableBit
	}

	b1 := byte(pktType&typeMask) | byte((length&lengthLowMask)<<lengthLowShift)
	b2 := byte(length >> lengthLowShift)
	b3 := checksum(b0, b1, b2)

	out := make([]byte, 0, HeaderLength+len(payload))
	out = append(out, b0, b1, b2, b3)
	out = append(out, payload...)
	return out, nil
}

// Decode parses an H5 header and returns it together with the payload
// slice it declares. frame must be the SLIP-decoded body (no 0xC0
// delimiters, no escaping).
func Decode(frame []byte) (Header, []byte, error) {
	if len(frame) < HeaderLength {
		return Header{}, nil, errors.Wrapf(ErrTruncated, "frame of %d bytes shorter than header", len(frame))
	}

	b0, b1, b2, b3 := frame[0], frame[1], frame[2], frame[3]

	if checksum(b0, b1, b2) != b3 {
		return Header{}, nil, ErrHeaderChecksum
	}

	h := Header{
		Ack:           b0 & ackMask,
		DataIntegrity: b0&dataIntegrityBit != 0,
		Reliable:      b0&reliableBit != 0,
		Seq:           (b0 >> seqShift) & seqMask,
		Type:          PktType(b1 & typeMask),
		PayloadLength: (uint16(b2) << lengthLowShift) | uint16((b1>>lengthLowShift)&lengthLowMask),
	}

	if !h.Type.valid() {
		return Header{}, nil, errors.Wrapf(ErrMalformedHeader, "packet type %d out of range", b1&typeMask)
	}

	if h.DataIntegrity {
		return Header{}, nil, ErrUnsupportedOption
	}

	available := frame[HeaderLength:]
	if int(h.PayloadLength) > len(available) {
		return Header{}, nil, errors.Wrapf(ErrTruncated, "declared length %d exceeds available %d", h.PayloadLength, len(available))
	}

	return h, available[:h.PayloadLength], nil
}
