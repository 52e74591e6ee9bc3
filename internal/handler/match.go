package handler

import (
	"errors"

	"github.com/gambitd/server/internal/game"
	"github.com/gambitd/server/internal/match"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"go.uber.org/zap"
)

func snapshot(sess *gonet.Session) packet.UserInfo {
	return packet.UserInfo{UserID: sess.UserID, Username: sess.Username, Rating: sess.Rating}
}

// HandleFindMatch joins the matchmaking queue. When a compatible opponent is
// already waiting the pair is taken out and a game starts immediately.
func HandleFindMatch(sess *gonet.Session, _ []byte, deps *Deps) {
	for {
		opp, matched, err := deps.Match.Join(sess.ID, sess.UserID, sess.Rating)
		if errors.Is(err, match.ErrAlreadyQueued) {
			sendDomainError(sess, "already in matchmaking queue")
			return
		}
		if !matched {
			deps.Log.Debug("session queued for match",
				zap.Uint64("session", sess.ID),
				zap.Int("queue", deps.Match.QueueLen()))
			return
		}

		oppSess := deps.Sessions.Get(opp.SessionID)
		if oppSess == nil || oppSess.IsClosed() || oppSess.State() != packet.StateAuthenticated {
			// Stale queue entry; keep scanning.
			continue
		}

		sess.Send(packet.S_MATCH_FOUND, packet.MatchFound{Opponent: snapshot(oppSess)})
		oppSess.Send(packet.S_MATCH_FOUND, packet.MatchFound{Opponent: snapshot(sess)})
		if _, err := deps.Controller.StartPvP(sess, oppSess); err != nil {
			deps.Log.Error("failed to start matched game", zap.Error(err))
			sendInternalError(sess, "failed to start game")
			sendInternalError(oppSess, "failed to start game")
		}
		return
	}
}

func HandleCancelFindMatch(sess *gonet.Session, _ []byte, deps *Deps) {
	if deps.Match.Leave(sess.ID) {
		deps.Log.Debug("session left queue", zap.Uint64("session", sess.ID))
	}
}

// HandleFindAIMatch starts a game against the built-in engine.
func HandleFindAIMatch(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.FindAIMatchRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	if !game.ValidDifficulty(req.Difficulty) {
		sendDomainError(sess, "unknown difficulty")
		return
	}
	if deps.Match.Queued(sess.ID) {
		sendDomainError(sess, "already in matchmaking queue")
		return
	}
	if _, err := deps.Controller.StartAI(sess, req.Difficulty); err != nil {
		deps.Log.Error("failed to start ai game", zap.Error(err))
		sendInternalError(sess, "failed to start game")
	}
}

// HandleChallenge forwards a direct challenge to an online user.
func HandleChallenge(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.ChallengeRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	target := deps.Sessions.GetByUser(req.TargetUserID)
	if target == nil || target.IsClosed() {
		sendDomainError(sess, "user is not online")
		return
	}
	if target.State() != packet.StateAuthenticated {
		sendDomainError(sess, "user is busy")
		return
	}
	switch err := deps.Match.AddChallenge(sess.ID, target.ID); {
	case errors.Is(err, match.ErrSelfChallenge):
		sendDomainError(sess, "cannot challenge yourself")
		return
	case errors.Is(err, match.ErrDuplicateChallenge):
		sendDomainError(sess, "challenge already pending")
		return
	}
	target.Send(packet.S_CHALLENGE_RECEIVED, packet.ChallengeReceived{Sender: snapshot(sess)})
}

// HandleAcceptChallenge consumes a pending challenge and starts the game.
func HandleAcceptChallenge(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.ChallengeAnswer
	if !decodeInto(sess, payload, &req) {
		return
	}
	challenger := deps.Sessions.GetByUser(req.ChallengerUserID)
	if challenger == nil || challenger.IsClosed() {
		sendDomainError(sess, "challenger is no longer online")
		return
	}
	if err := deps.Match.TakeChallenge(challenger.ID, sess.ID); err != nil {
		sendDomainError(sess, "no pending challenge from that user")
		return
	}
	if challenger.State() != packet.StateAuthenticated {
		sendDomainError(sess, "challenger is busy")
		return
	}

	challenger.Send(packet.S_CHALLENGE_ACCEPTED, packet.ChallengeAccepted{Opponent: snapshot(sess)})
	if _, err := deps.Controller.StartPvP(challenger, sess); err != nil {
		deps.Log.Error("failed to start challenge game", zap.Error(err))
		sendInternalError(sess, "failed to start game")
		sendInternalError(challenger, "failed to start game")
	}
}

// HandleDeclineChallenge consumes the challenge and notifies the challenger.
// Declining a challenge that no longer exists is a no-op.
func HandleDeclineChallenge(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.ChallengeAnswer
	if !decodeInto(sess, payload, &req) {
		return
	}
	challenger := deps.Sessions.GetByUser(req.ChallengerUserID)
	if challenger == nil {
		return
	}
	if err := deps.Match.TakeChallenge(challenger.ID, sess.ID); err != nil {
		return
	}
	challenger.Send(packet.S_CHALLENGE_DECLINED, packet.ChallengeDeclined{
		TargetUserID: sess.UserID,
		Reason:       "declined",
	})
}
