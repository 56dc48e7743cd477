package slip

import (
	"bytes"
	"testing"
)

func TestEncodeEmptyData(t *testing.T) {
	result := Encode(nil)
	expected := []byte{End, End}
	if !bytes.Equal(result, expected) {
		t.Errorf("Encode(nil) = % X, want % X", result, expected)
	}
}

func TestEncodeEscapesEndAndEsc(t *testing.T) {
	input := []byte{0x01, End, Esc, 0x03}
	result := Encode(input)
	expected := []byte{End, 0x01, Esc, EscEnd, Esc, EscEsc, 0x03, End}
	if !bytes.Equal(result, expected) {
		t.Errorf("Encode(% X) = % X, want % X", input, result, expected)
	}
}

func TestDecodeValidFrame(t *testing.T) {
	frame := []byte{End, 0x01, Esc, EscEnd, 0x03, End}
	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{0x01, End, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("Decode(% X) = % X, want % X", frame, got, want)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	got, err := Decode([]byte{End, End})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Decode({End,End}) = %v, want non-nil empty slice", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode([]byte{End, 0x01, 0x02}); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodeInvalidEscape(t *testing.T) {
	frame := []byte{End, 0x01, Esc, 0xFF, End}
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for invalid escape sequence")
	}
}

// Testable property #2: SLIP idempotence on transparent data.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{End},
		{Esc},
		{End, Esc, End, Esc},
		{0xFF, 0xFE, 0xFD, 0x00, 0x01},
		bytes.Repeat([]byte{End, Esc, 0x42}, 64),
	}

	for i, tc := range cases {
		got, err := Decode(Encode(tc))
		if err != nil {
			t.Fatalf("case %d: Decode(Encode(...)): %v", i, err)
		}
		if !bytes.Equal(got, tc) {
			t.Errorf("case %d: round trip = % X, want % X", i, got, tc)
		}
	}
}
