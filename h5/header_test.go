package h5

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	frame, err := Encode(payload, 3, 5, true, PktVendorSpecific)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	sum := int(frame[0]) + int(frame[1]) + int(frame[2]) + int(frame[3])
	if sum%256 != 0xFF {
		t.Fatalf("header checksum invariant violated: sum%%256 = %d", sum%256)
	}

	h, body, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if h.Seq != 3 || h.Ack != 5 || !h.Reliable || h.Type != PktVendorSpecific {
		t.Fatalf("unexpected header: %+v", h)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("payload mismatch: got % X want % X", body, payload)
	}
}

func TestEncodeDecodeEmptyPayload(t *testing.T) {
	frame, err := Encode(nil, 0, 0, false, PktReset)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	h, body, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty payload, got % X", body)
	}
	if h.Reliable {
		t.Fatalf("expected unreliable RESET frame")
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	frame, _ := Encode([]byte{1, 2, 3}, 1, 1, true, PktACLData)
	frame[3] ^= 0xFF

	if _, _, err := Decode(frame); err != ErrHeaderChecksum {
		t.Fatalf("expected ErrHeaderChecksum, got %v", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	frame, _ := Encode([]byte{1, 2, 3, 4}, 0, 0, false, PktACLData)

	if _, _, err := Decode(frame[:len(frame)-2]); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestDecodeRejectsOutOfRangeType(t *testing.T) {
	frame, _ := Encode(nil, 0, 0, false, PktACLData)
	// Packet type nibble 9 is unused by this profile.
	frame[1] = (frame[1] &^ typeMask) | 9
	frame[3] = checksum(frame[0], frame[1], frame[2])

	if _, _, err := Decode(frame); errors.Cause(err) != ErrMalformedHeader {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestDecodeRejectsDataIntegrity(t *testing.T) {
	frame, _ := Encode(nil, 0, 0, false, PktACLData)
	frame[0] |= dataIntegrityBit
	frame[3] = checksum(frame[0], frame[1], frame[2])

	if _, _, err := Decode(frame); err != ErrUnsupportedOption {
		t.Fatalf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestRoundTripAllPacketTypes(t *testing.T) {
	types := []PktType{PktAck, PktHCICommand, PktACLData, PktSyncData, PktHCIEvent, PktReset, PktVendorSpecific, PktLinkControl}
	for _, pt := range types {
		for seq := uint8(0); seq < 8; seq++ {
			frame, err := Encode([]byte{byte(seq)}, seq, (seq+1)%8, seq%2 == 0, pt)
			if err != nil {
				t.Fatalf("Encode(%v, seq=%d): %v", pt, seq, err)
			}
			h, body, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode(%v, seq=%d): %v", pt, seq, err)
			}
			if h.Seq != seq || h.Type != pt || len(body) != 1 || body[0] != byte(seq) {
				t.Fatalf("round trip mismatch for %v seq=%d: %+v %v", pt, seq, h, body)
			}
		}
	}
}
