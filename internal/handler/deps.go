package handler

import (
	"encoding/json"

	"github.com/gambitd/server/internal/auth"
	"github.com/gambitd/server/internal/config"
	"github.com/gambitd/server/internal/game"
	"github.com/gambitd/server/internal/match"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/gambitd/server/internal/persist"
	"github.com/gambitd/server/internal/presence"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Users      persist.UserStore
	Games      persist.GameStore
	Sessions   *gonet.SessionStore
	Match      *match.Matchmaker
	Presence   *presence.Service
	Controller *game.Controller
	Passwords  *auth.Passwords
	Tokens     *auth.Tokens
	Config     *config.Config
	Log        *zap.Logger

	// Post schedules a closure onto the coordinator goroutine. Handlers use
	// it to re-enter after staging blocking work (bcrypt, repository reads)
	// off the loop.
	Post func(func())
}

// decodeInto unmarshals a payload into v. A malformed payload for a known
// message id gets a typed decode error; the session stays up.
func decodeInto(sess *gonet.Session, payload []byte, v any) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		sess.Send(packet.S_ERROR, packet.ErrorMessage{
			Code:    packet.ErrCodeDecode,
			Message: "malformed payload",
		})
		return false
	}
	return true
}

func sendDomainError(sess *gonet.Session, msg string) {
	sess.Send(packet.S_ERROR, packet.ErrorMessage{
		Code:    packet.ErrCodeDomain,
		Message: msg,
	})
}

func sendInternalError(sess *gonet.Session, msg string) {
	sess.Send(packet.S_ERROR, packet.ErrorMessage{
		Code:    packet.ErrCodeInternal,
		Message: msg,
	})
}
