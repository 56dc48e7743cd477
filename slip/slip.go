// Package slip implements SLIP byte-stuffing framing (RFC 1055 style,
// using the two escape codes the Bluetooth Three-Wire UART transport
// relies on) for delimiting H5 frames on a byte-oriented serial line.
package slip

import "github.com/pkg/errors"

// Special SLIP bytes.
const (
	End    = 0xC0
	Esc    = 0xDB
	EscEnd = 0xDC
	EscEsc = 0xDD
)

// Sentinel errors returned by Decode.
var (
	ErrInvalidEscape = errors.New("slip: invalid escape sequence")
	ErrTruncated     = errors.New("slip: truncated frame")
)

// Encode wraps data in SLIP framing: a leading End, each End/Esc byte in
// data escaped, and a trailing End.
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data)+2)
	out = append(out, End)

	for _, b := range data {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}

	out = append(out, End)
	return out
}

// Decode reverses Encode. frame must include both the leading and trailing
// End bytes, as produced by the frame reassembler. A zero-length body
// (frame == {End, End}) decodes to a non-nil empty slice.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < 2 || frame[0] != End || frame[len(frame)-1] != End {
		return nil, ErrTruncated
	}

	body := frame[1 : len(frame)-1]
	out := make([]byte, 0, len(body))

	for i := 0; i < len(body); i++ {
		b := body[i]
		if b != Esc {
			out = append(out, b)
			continue
		}

		if i+1 >= len(body) {
			return nil, errors.Wrap(ErrTruncated, "dangling escape byte")
		}

		switch body[i+1] {
		case EscEnd:
			out = append(out, End)
		case EscEsc:
			out = append(out, Esc)
		default:
			return nil, errors.Wrapf(ErrInvalidEscape, "0x%02x", body[i+1])
		}
		i++
	}

	return out, nil
}
