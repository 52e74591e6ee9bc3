package handler

import (
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
)

// RegisterAll binds every client message to its handler with the session
// states it is legal in.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	connected := []packet.SessionState{packet.StateConnected}
	lobby := []packet.SessionState{packet.StateAuthenticated}
	inGame := []packet.SessionState{packet.StateInGame}
	loggedIn := []packet.SessionState{packet.StateAuthenticated, packet.StateInGame}

	bind := func(id uint16, states []packet.SessionState, fn func(*gonet.Session, []byte, *Deps)) {
		reg.Register(id, states, func(sess any, payload []byte) {
			fn(sess.(*gonet.Session), payload, deps)
		})
	}

	bind(packet.C_REGISTER, connected, HandleRegister)
	bind(packet.C_LOGIN, connected, HandleLogin)

	bind(packet.C_GET_ONLINE_USERS, loggedIn, HandleGetOnlineUsers)
	bind(packet.C_FIND_MATCH, lobby, HandleFindMatch)
	bind(packet.C_CANCEL_FIND_MATCH, lobby, HandleCancelFindMatch)
	bind(packet.C_FIND_AI_MATCH, lobby, HandleFindAIMatch)
	bind(packet.C_CHALLENGE, lobby, HandleChallenge)
	bind(packet.C_ACCEPT_CHALLENGE, lobby, HandleAcceptChallenge)
	bind(packet.C_DECLINE_CHALLENGE, lobby, HandleDeclineChallenge)

	bind(packet.C_MAKE_MOVE, inGame, HandleMakeMove)
	bind(packet.C_RESIGN, inGame, HandleResign)
	bind(packet.C_OFFER_DRAW, inGame, HandleOfferDraw)
	bind(packet.C_ACCEPT_DRAW, inGame, HandleAcceptDraw)
	bind(packet.C_DECLINE_DRAW, inGame, HandleDeclineDraw)

	bind(packet.C_GET_STATS, loggedIn, HandleGetStats)
	bind(packet.C_GET_HISTORY, loggedIn, HandleGetHistory)
	bind(packet.C_GET_REPLAY, loggedIn, HandleGetReplay)
}
