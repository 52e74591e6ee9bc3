package system

import (
	"time"

	"github.com/gambitd/server/internal/handler"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"go.uber.org/zap"
)

// SweepSystem handles the slow periodic work: idle disconnects, challenge
// expiry, and the debounced presence broadcast.
type SweepSystem struct {
	deps        *handler.Deps
	idleTimeout time.Duration
	log         *zap.Logger
}

func NewSweepSystem(deps *handler.Deps, idleTimeout time.Duration, log *zap.Logger) *SweepSystem {
	return &SweepSystem{deps: deps, idleTimeout: idleTimeout, log: log}
}

func (s *SweepSystem) Update(now time.Time) {
	s.closeIdle(now)
	s.expireChallenges(now)
	s.deps.Presence.Flush(now)
}

func (s *SweepSystem) closeIdle(now time.Time) {
	if s.idleTimeout <= 0 {
		return
	}
	s.deps.Sessions.ForEach(func(sess *gonet.Session) {
		if sess.IsClosed() {
			return
		}
		if now.Sub(sess.LastActive()) > s.idleTimeout {
			s.log.Info("closing idle session",
				zap.Uint64("session", sess.ID),
				zap.String("user", sess.Username))
			sess.Close()
		}
	})
}

func (s *SweepSystem) expireChallenges(now time.Time) {
	for _, ch := range s.deps.Match.ExpireChallenges(now) {
		challenger := s.deps.Sessions.Get(ch.ChallengerSessionID)
		if challenger == nil {
			continue
		}
		var targetUserID string
		if target := s.deps.Sessions.Get(ch.TargetSessionID); target != nil {
			targetUserID = target.UserID
		}
		challenger.Send(packet.S_CHALLENGE_DECLINED, packet.ChallengeDeclined{
			TargetUserID: targetUserID,
			Reason:       "expired",
		})
	}
}
