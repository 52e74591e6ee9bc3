package handler

import (
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
)

// The in-game messages are thin shells: decode, then hand the session and
// its game reference to the controller, which owns all game state.

func HandleMakeMove(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.MakeMoveRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	deps.Controller.HandleMove(sess, req.GameID, req.Move)
}

func HandleResign(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GameRef
	if !decodeInto(sess, payload, &req) {
		return
	}
	deps.Controller.Resign(sess, req.GameID)
}

func HandleOfferDraw(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GameRef
	if !decodeInto(sess, payload, &req) {
		return
	}
	deps.Controller.OfferDraw(sess, req.GameID)
}

func HandleAcceptDraw(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GameRef
	if !decodeInto(sess, payload, &req) {
		return
	}
	deps.Controller.AcceptDraw(sess, req.GameID)
}

func HandleDeclineDraw(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GameRef
	if !decodeInto(sess, payload, &req) {
		return
	}
	deps.Controller.DeclineDraw(sess, req.GameID)
}
