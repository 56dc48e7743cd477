// Package reassemble turns an arbitrary-size byte stream from the lower
// transport into discrete SLIP-delimited frames, grounded on the inbound
// accumulator in original_source's H5Transport::dataHandler.
package reassemble

import "github.com/rigado/h5link/slip"

// Reassembler is owned exclusively by the lower transport's inbound
// delivery path: it is not safe for concurrent use from multiple
// goroutines.
type Reassembler struct {
	acc     []byte
	inFrame bool
}

// New returns an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Feed consumes a chunk of raw bytes and returns the frames it completed,
// each including both enclosing 0xC0 delimiters (ready for slip.Decode).
// Bytes preceding the first 0xC0 ever seen are discarded. A partial frame
// at the end of chunk is carried over to the next call.
func (r *Reassembler) Feed(chunk []byte) [][]byte {
	var frames [][]byte

	for _, b := range chunk {
		if b != slip.End {
			if r.inFrame {
				r.acc = append(r.acc, b)
			}
			continue
		}

		if !r.inFrame {
			r.inFrame = true
			r.acc = append(r.acc[:0], slip.End)
			continue
		}

		r.acc = append(r.acc, slip.End)

		// Two adjacent 0xC0 bytes are the start of a new frame, not an
		// empty one: reset the accumulator instead of emitting it.
		if len(r.acc) == 2 {
			r.acc = append(r.acc[:0], slip.End)
			continue
		}

		frame := make([]byte, len(r.acc))
		copy(frame, r.acc)
		frames = append(frames, frame)

		r.acc = r.acc[:0]
		r.inFrame = false
	}

	return frames
}
