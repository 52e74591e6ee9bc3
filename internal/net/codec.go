package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire format: a 6-byte big-endian header followed by a UTF-8 JSON payload.
// Header layout: [2 bytes: message id][4 bytes: payload length].
const (
	HeaderSize = 6
	MaxPayload = 64*1024 - HeaderSize
)

// ReadFrame reads one frame from r. It blocks until a full frame is
// available; a partial frame stays buffered in the connection. Oversized
// frames are a fatal protocol error for the session.
func ReadFrame(r io.Reader) (uint16, []byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}

	id := binary.BigEndian.Uint16(header[0:2])
	payloadLen := binary.BigEndian.Uint32(header[2:6])
	if payloadLen > MaxPayload {
		return 0, nil, fmt.Errorf("frame payload %d exceeds limit %d", payloadLen, MaxPayload)
	}
	if payloadLen == 0 {
		return id, nil, nil
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return id, payload, nil
}

// EncodeFrame builds the on-wire bytes for one frame: header ‖ payload.
func EncodeFrame(id uint16, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], id)
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, id uint16, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("frame payload %d exceeds limit %d", len(payload), MaxPayload)
	}
	if _, err := w.Write(EncodeFrame(id, payload)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
