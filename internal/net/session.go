package net

import (
	"encoding/json"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gambitd/server/internal/net/packet"
	"go.uber.org/zap"
)

// Inbound is one decoded frame waiting for the coordinator.
type Inbound struct {
	ID      uint16
	Payload []byte
}

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; identity and game pointers are written only from
// the coordinator loop.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan Inbound // coordinator reads frames from here
	OutQueue chan []byte  // writer goroutine reads from here

	IP string

	// Identity, bound at login. Coordinator goroutine only.
	UserID   string
	Username string
	Rating   int

	// Current game id, empty unless InGame. Coordinator goroutine only.
	GameID string

	lastActive atomic.Int64 // unix nanos of last inbound frame

	outBuf [][]byte // buffered frames, flushed once per coordinator pass

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan Inbound, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	s.lastActive.Store(time.Now().UnixNano())
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// LastActive reports when the session last received a frame.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send marshals v and buffers the frame for sending. Nothing hits TCP until
// FlushOutput is called by the coordinator. Coordinator goroutine only.
func (s *Session) Send(id uint16, v any) {
	if s.closed.Load() {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal outbound message", zap.String("msg", packet.Name(id)), zap.Error(err))
		return
	}
	if len(payload) > MaxPayload {
		s.log.Error("outbound message too large", zap.String("msg", packet.Name(id)), zap.Int("size", len(payload)))
		return
	}
	s.outBuf = append(s.outBuf, EncodeFrame(id, payload))
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop
// goroutine. Non-blocking: if OutQueue is full the session is disconnected
// (backpressure: drop slow consumers).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("send queue full, dropping slow consumer")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session shuts down, whichever side initiated it.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop reads frames from the TCP connection and pushes them onto
// InQueue for the coordinator to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		id, payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		s.lastActive.Store(time.Now().UnixNano())

		// Block until InQueue has space or the session closes. The readLoop
		// goroutine is per-session, so this only stalls this client.
		select {
		case s.InQueue <- Inbound{ID: id, Payload: payload}:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop reads pre-framed bytes from OutQueue and writes them to TCP.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := s.conn.Write(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
