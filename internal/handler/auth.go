package handler

import (
	"context"
	"errors"

	"github.com/gambitd/server/internal/auth"
	"github.com/gambitd/server/internal/elo"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/gambitd/server/internal/persist"
	"go.uber.org/zap"
)

// HandleRegister creates a new account. The bcrypt hash and the insert run
// off the coordinator; the result is posted back before replying.
func HandleRegister(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.RegisterRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	if err := auth.ValidateCredentials(req.Username, req.Password); err != nil {
		sess.Send(packet.S_REGISTER_RESULT, packet.RegisterResult{Error: err.Error()})
		return
	}

	go func() {
		hash, err := deps.Passwords.Hash(req.Password)
		if err != nil {
			deps.Post(func() {
				deps.Log.Error("password hash failed", zap.Error(err))
				sendInternalError(sess, "registration failed")
			})
			return
		}
		row, err := deps.Users.Create(context.Background(), req.Username, hash, elo.Default)
		deps.Post(func() {
			if sess.IsClosed() {
				return
			}
			switch {
			case errors.Is(err, persist.ErrDuplicateUsername):
				sess.Send(packet.S_REGISTER_RESULT, packet.RegisterResult{Error: "username already taken"})
			case err != nil:
				deps.Log.Error("user insert failed", zap.Error(err))
				sendInternalError(sess, "registration failed")
			default:
				deps.Log.Info("user registered",
					zap.String("user", req.Username),
					zap.String("userID", row.ID))
				sess.Send(packet.S_REGISTER_RESULT, packet.RegisterResult{
					Success: true,
					UserID:  row.ID,
				})
			}
		})
	}()
}

// HandleLogin authenticates a session. Lookup and bcrypt compare run off the
// coordinator; the generic failure message never reveals whether the account
// exists.
func HandleLogin(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.LoginRequest
	if !decodeInto(sess, payload, &req) {
		return
	}

	go func() {
		row, err := deps.Users.FindByUsername(context.Background(), req.Username)
		ok := err == nil && deps.Passwords.Compare(row.PasswordHash, req.Password)
		if err != nil && !errors.Is(err, persist.ErrNotFound) {
			deps.Post(func() {
				deps.Log.Error("user lookup failed", zap.Error(err))
				sendInternalError(sess, "login failed")
			})
			return
		}
		deps.Post(func() {
			if sess.IsClosed() {
				return
			}
			if !ok {
				sess.Send(packet.S_LOGIN_RESULT, packet.LoginResult{Error: "invalid username or password"})
				return
			}
			if sess.State() != packet.StateConnected {
				sess.Send(packet.S_LOGIN_RESULT, packet.LoginResult{Error: "already authenticated"})
				return
			}
			if deps.Sessions.GetByUser(row.ID) != nil {
				sess.Send(packet.S_LOGIN_RESULT, packet.LoginResult{Error: "account already logged in"})
				return
			}

			token, err := deps.Tokens.Issue(row.ID, row.Username)
			if err != nil {
				deps.Log.Error("token issue failed", zap.Error(err))
				sendInternalError(sess, "login failed")
				return
			}

			sess.UserID = row.ID
			sess.Username = row.Username
			sess.Rating = row.Rating
			sess.SetState(packet.StateAuthenticated)
			deps.Sessions.BindUser(sess)

			deps.Log.Info("user logged in",
				zap.String("user", row.Username),
				zap.Uint64("session", sess.ID),
				zap.Int("rating", row.Rating))

			sess.Send(packet.S_LOGIN_RESULT, packet.LoginResult{
				Success:  true,
				UserID:   row.ID,
				Username: row.Username,
				Rating:   row.Rating,
				Token:    token,
			})
			deps.Presence.Add(sess)
			deps.Presence.SendList(sess)
		})
	}()
}
