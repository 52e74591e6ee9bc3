package system

import (
	"errors"

	"github.com/gambitd/server/internal/handler"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem adopts new connections, pumps inbound frames through the
// registry, and tears down dead sessions. It runs only on the coordinator
// goroutine.
type InputSystem struct {
	server     *gonet.Server
	registry   *packet.Registry
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(server *gonet.Server, registry *packet.Registry, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		server:     server,
		registry:   registry,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

// Update runs one coordinator pass: adopt, reap, pump.
func (s *InputSystem) Update() {
	s.adoptNew()
	s.reapDead()
	s.pump()
}

func (s *InputSystem) adoptNew() {
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.deps.Sessions.Add(sess)
			// Watcher feeds the dead channel so the coordinator hears about
			// closed connections on the next pass.
			go func(sess *gonet.Session) {
				<-sess.Done()
				s.server.NotifyDead(sess.ID)
			}(sess)
		default:
			return
		}
	}
}

func (s *InputSystem) reapDead() {
	for {
		select {
		case id := <-s.server.DeadSessions():
			s.cleanup(id)
		default:
			return
		}
	}
}

// cleanup removes every trace of a session, in dependency order: queue and
// challenges first, then the live game, then presence, then the store.
func (s *InputSystem) cleanup(id uint64) {
	sess := s.deps.Sessions.Get(id)
	if sess == nil {
		return
	}

	for _, challengerID := range s.deps.Match.RemoveSession(sess.ID) {
		if ch := s.deps.Sessions.Get(challengerID); ch != nil {
			ch.Send(packet.S_CHALLENGE_DECLINED, packet.ChallengeDeclined{
				TargetUserID: sess.UserID,
				Reason:       "declined",
			})
		}
	}

	s.deps.Controller.HandleDisconnect(sess)

	if sess.UserID != "" {
		s.deps.Presence.Remove(sess.UserID)
	}
	s.deps.Sessions.Remove(sess.ID)

	s.log.Info("client disconnected",
		zap.Uint64("session", sess.ID),
		zap.String("user", sess.Username),
		zap.String("ip", sess.IP))
}

// pump dispatches up to maxPerTick frames per session.
func (s *InputSystem) pump() {
	s.deps.Sessions.ForEach(func(sess *gonet.Session) {
		if sess.IsClosed() {
			return
		}
		for i := 0; i < s.maxPerTick; i++ {
			var in gonet.Inbound
			select {
			case in = <-sess.InQueue:
			default:
				return
			}
			s.dispatch(sess, in)
			if sess.IsClosed() {
				return
			}
		}
	})
}

func (s *InputSystem) dispatch(sess *gonet.Session, in gonet.Inbound) {
	err := s.registry.Dispatch(sess, sess.State(), in.ID, in.Payload)
	if err == nil {
		return
	}
	if errors.Is(err, packet.ErrInvalidState) {
		sess.Send(packet.S_ERROR, packet.ErrorMessage{
			Code:    packet.ErrCodeInvalidState,
			Message: packet.Name(in.ID) + " not allowed in state " + sess.State().String(),
		})
		return
	}
	s.log.Error("handler failed",
		zap.String("msg", packet.Name(in.ID)),
		zap.Uint64("session", sess.ID),
		zap.Error(err))
	sess.Send(packet.S_ERROR, packet.ErrorMessage{
		Code:    packet.ErrCodeInternal,
		Message: "internal error",
	})
}

// FlushAll pushes every session's buffered frames to its writer. Runs last
// in the coordinator pass so replies from this tick go out together.
func (s *InputSystem) FlushAll() {
	s.deps.Sessions.ForEach(func(sess *gonet.Session) {
		sess.FlushOutput()
	})
}
