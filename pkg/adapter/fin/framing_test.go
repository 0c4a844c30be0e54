package fin

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fin "github.com/finwire/finmock/pkg/fin"
)

// buildTrailered returns a complete five-block message the way a client
// would produce it: body first, trailer appended over the exact bytes.
func buildTrailered(ref string, seq int) string {
	base := "{1:F01TESTUS33XXXX0000000000}" +
		"{2:O1031234240107TESTDE33XXXX12345678}" +
		"{4:\n:20:" + ref + "\n:34:" + strconv.Itoa(seq) + "\n:32A:240107USD10000,00\n-}\n"
	return fin.AppendTrailer(base, "")
}

func TestFrameBufferSingleMessage(t *testing.T) {
	msg := buildTrailered("TEST-001", 1)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(msg)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame, "frame must include the trailer byte for byte")

	_, ok = f.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())
}

func TestFrameBufferSplitAcrossReads(t *testing.T) {
	msg := buildTrailered("TEST-002", 2)

	// Cut inside block 4, before the terminator.
	cut := strings.Index(msg, ":32A:")
	require.Greater(t, cut, 0)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(msg[:cut])))
	_, ok := f.Next()
	require.False(t, ok, "unterminated block 4 must not frame")

	require.True(t, f.Append([]byte(msg[cut:])))
	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame)
}

func TestFrameBufferTrailerlessMessage(t *testing.T) {
	msg := "{1:F01A}{2:O103B}{4:\n:20:NOTRAILER\n:34:5\n-}\n"

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(msg)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, strings.TrimSuffix(msg, "\n"), frame,
		"frame ends at the block-4 terminator when no trailer follows")
}

func TestFrameBufferPipelinedMessages(t *testing.T) {
	first := buildTrailered("PIPE-1", 1)
	second := buildTrailered("PIPE-2", 2)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(first+second)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, first, frame)

	frame, ok = f.Next()
	require.True(t, ok)
	assert.Equal(t, second, frame)

	_, ok = f.Next()
	assert.False(t, ok)
}

func TestFrameBufferDiscardsLeadingJunk(t *testing.T) {
	msg := buildTrailered("JUNK-1", 1)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte("\r\n\x00garbage"+msg)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame)
}

func TestFrameBufferBrokenTerminator(t *testing.T) {
	// No "-}" anywhere: the three-closing-brace fallback must still
	// produce a frame so the parser can reject it.
	msg := "{1:F01A}{2:O103B}{4:\n:20:BROKEN\n}\n{5:{MAC:00}{CHK:00}}"

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(msg)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame)
	assert.False(t, fin.Parse(frame).HasBlock4)
}

func TestFrameBufferWaitsForTrailerInFlight(t *testing.T) {
	msg := buildTrailered("SLOW-1", 1)

	// Cut inside the trailer: after "-}\n{5:{MAC:..." but before "}}".
	cut := strings.Index(msg, "{CHK:")
	require.Greater(t, cut, 0)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte(msg[:cut])))
	_, ok := f.Next()
	require.False(t, ok, "half a trailer must not complete the frame")

	require.True(t, f.Append([]byte(msg[cut:])))
	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame)
}

func TestFrameBufferCap(t *testing.T) {
	f := newFrameBuffer(16)
	assert.True(t, f.Append([]byte("0123456789")))
	assert.False(t, f.Append([]byte("0123456789")))
}

func TestFrameBufferReplacesInvalidUTF8(t *testing.T) {
	msg := buildTrailered("UTF-1", 1)

	f := newFrameBuffer(0)
	require.True(t, f.Append([]byte{0xff, 0xfe}))
	require.True(t, f.Append([]byte(msg)))

	frame, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, msg, frame)
}
