package net

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte(`{"username":"alice","password":"secret"}`)
	frame := EncodeFrame(0x0002, payload)

	id, got, err := ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0002), id)
	assert.Equal(t, payload, got)
}

func TestFrameHeaderLayout(t *testing.T) {
	frame := EncodeFrame(0x1F00, []byte("ab"))

	require.Len(t, frame, HeaderSize+2)
	// Big-endian: u16 message id, then u32 payload length.
	assert.Equal(t, []byte{0x1F, 0x00, 0x00, 0x00, 0x00, 0x02}, frame[:HeaderSize])
	assert.Equal(t, []byte("ab"), frame[HeaderSize:])
}

func TestFrameEmptyPayload(t *testing.T) {
	frame := EncodeFrame(0x0021, nil)

	id, payload, err := ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0021), id)
	assert.Empty(t, payload)
}

func TestReadFrameOversizedPayload(t *testing.T) {
	header := []byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}

	_, _, err := ReadFrame(bytes.NewReader(header))
	require.Error(t, err)
}

func TestReadFrameTruncated(t *testing.T) {
	frame := EncodeFrame(0x0001, []byte("hello"))

	// Cut the stream mid-payload: a clean EOF must surface as an error.
	_, _, err := ReadFrame(bytes.NewReader(frame[:HeaderSize+2]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 0x0010, []byte("{}")))

	id, payload, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0010), id)
	assert.Equal(t, []byte("{}"), payload)
}
