package fin

import (
	"strings"
	"unicode/utf8"
)

// readChunkSize is the per-read ceiling. FIN messages are small; one read
// usually delivers one whole frame.
const readChunkSize = 8192

// frameBuffer accumulates socket bytes and slices complete FIN frames off
// the front. Chunks are decoded as UTF-8 with invalid sequences replaced,
// so framing always operates on valid text.
//
// A frame is considered complete once the buffer holds "{1:", "{2:" and
// "{4:" in that order, followed by either the block-4 terminator "-}" or,
// for messages with a broken terminator, at least three closing braces.
// When a block-5 trailer follows the terminator the frame extends through
// it; a trailer that has started arriving but is not yet closed keeps the
// frame incomplete until the next read.
type frameBuffer struct {
	buf string
	max int
}

// newFrameBuffer creates a buffer capped at max bytes (0 selects the
// default cap).
func newFrameBuffer(max int) *frameBuffer {
	if max <= 0 {
		max = DefaultMaxBufferSize
	}
	return &frameBuffer{max: max}
}

// Append adds a chunk read from the socket. It reports whether the buffer
// is still within its cap; false means the peer is streaming bytes that
// never frame and the connection should be dropped.
func (f *frameBuffer) Append(p []byte) bool {
	f.buf += strings.ToValidUTF8(string(p), string(utf8.RuneError))
	return len(f.buf) <= f.max
}

// Len returns the number of buffered bytes not yet consumed by a frame.
func (f *frameBuffer) Len() int {
	return len(f.buf)
}

// Next extracts the next complete frame and advances past it. Bytes before
// the frame's "{1:" opener are discarded with it. ok is false while the
// buffer holds no complete frame.
func (f *frameBuffer) Next() (frame string, ok bool) {
	start, end, ok := f.frameBounds()
	if !ok {
		return "", false
	}
	frame = f.buf[start:end]
	f.buf = f.buf[end:]
	return frame, true
}

// frameBounds locates the next complete frame in the buffer.
func (f *frameBuffer) frameBounds() (start, end int, ok bool) {
	i1 := strings.Index(f.buf, "{1:")
	if i1 < 0 {
		return 0, 0, false
	}
	i2 := strings.Index(f.buf[i1:], "{2:")
	if i2 < 0 {
		return 0, 0, false
	}
	i4 := strings.Index(f.buf[i1+i2:], "{4:")
	if i4 < 0 {
		return 0, 0, false
	}
	body := i1 + i2 + i4

	if t := strings.Index(f.buf[body:], "-}"); t >= 0 {
		end, ok := f.extendPastTrailer(body + t + len("-}"))
		if !ok {
			return 0, 0, false
		}
		return i1, end, true
	}

	// No terminator. Once three closing braces have shown up after the
	// block-4 opener the peer is not going to produce one; hand the whole
	// brace-terminated prefix to the parser and let it NACK.
	if strings.Count(f.buf[body:], "}") < 3 {
		return 0, 0, false
	}
	return i1, strings.LastIndex(f.buf, "}") + 1, true
}

// extendPastTrailer pushes the frame end past a block-5 trailer when one
// follows the block-4 terminator at end. ok is false when a trailer has
// started but its closing braces have not arrived yet.
func (f *frameBuffer) extendPastTrailer(end int) (int, bool) {
	rest := f.buf[end:]
	ws := len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
	rest = rest[ws:]

	switch {
	case strings.HasPrefix(rest, "{5:"):
		idx := strings.Index(rest, "}}")
		if idx < 0 {
			return 0, false
		}
		return end + ws + idx + len("}}"), true
	case rest != "" && strings.HasPrefix("{5:", rest):
		// "{" or "{5" at the very end of the buffer: could be a trailer
		// still in flight, wait for the next read.
		return 0, false
	default:
		return end, true
	}
}
