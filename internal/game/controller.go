package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/gambitd/server/internal/elo"
	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/gambitd/server/internal/persist"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotInGame    = errors.New("session is not a player of this game")
)

// StatusSink receives player status transitions for presence fan-out.
type StatusSink interface {
	SetInGame(userID string, inGame bool)
}

// QueueSink drops a session's matchmaking entry. An InGame session must
// never sit in the queue, whichever path started the game.
type QueueSink interface {
	Leave(sessionID uint64) bool
}

// Controller owns the map of active games. All methods run on the
// coordinator goroutine; AI searches are the only work it farms out, and
// their results re-enter through post.
type Controller struct {
	games map[string]*Game

	users    persist.UserStore
	store    persist.GameStore
	sessions *gonet.SessionStore
	presence StatusSink
	queue    QueueSink

	engine MoveProvider
	aiSem  *semaphore.Weighted

	// post schedules a closure back onto the coordinator goroutine.
	post func(func())

	log *zap.Logger
}

func NewController(
	users persist.UserStore,
	store persist.GameStore,
	sessions *gonet.SessionStore,
	engine MoveProvider,
	aiWorkers int,
	post func(func()),
	log *zap.Logger,
) *Controller {
	if aiWorkers < 1 {
		aiWorkers = 1
	}
	return &Controller{
		games:    make(map[string]*Game),
		users:    users,
		store:    store,
		sessions: sessions,
		engine:   engine,
		aiSem:    semaphore.NewWeighted(int64(aiWorkers)),
		post:     post,
		log:      log,
	}
}

// SetPresence wires the presence sink after construction.
func (c *Controller) SetPresence(p StatusSink) {
	c.presence = p
}

// SetQueue wires the matchmaking queue sink after construction.
func (c *Controller) SetQueue(q QueueSink) {
	c.queue = q
}

func (c *Controller) Get(id string) *Game {
	return c.games[id]
}

func (c *Controller) ActiveCount() int {
	return len(c.games)
}

// StartPvP creates a game between two sessions with randomly assigned
// colors, persists it, moves both sessions to InGame, and emits GAME_START
// to each. Any MATCH_FOUND / CHALLENGE_ACCEPTED preamble is the caller's
// business and must be sent before this call.
func (c *Controller) StartPvP(a, b *gonet.Session) (*Game, error) {
	whiteSess, blackSess := a, b
	if rand.Intn(2) == 1 {
		whiteSess, blackSess = b, a
	}

	white := Player{UserID: whiteSess.UserID, Username: whiteSess.Username, Rating: whiteSess.Rating, SessionID: whiteSess.ID}
	black := Player{UserID: blackSess.UserID, Username: blackSess.Username, Rating: blackSess.Rating, SessionID: blackSess.ID}

	id, err := c.store.Insert(context.Background(), &persist.GameRow{
		WhitePlayerID: white.UserID,
		BlackPlayerID: black.UserID,
		WhiteUsername: white.Username,
		BlackUsername: black.Username,
		FEN:           InitialFEN,
		Status:        StatusActive,
		Result:        ResultNone,
		StartTime:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	g := newLiveGame(id, white, black, false, "")
	c.games[id] = g

	c.enterGame(whiteSess, g)
	c.enterGame(blackSess, g)

	whiteSess.Send(packet.S_GAME_START, packet.GameStart{
		GameID:   id,
		Color:    White.String(),
		FEN:      InitialFEN,
		Opponent: userInfo(black),
	})
	blackSess.Send(packet.S_GAME_START, packet.GameStart{
		GameID:   id,
		Color:    Black.String(),
		FEN:      InitialFEN,
		Opponent: userInfo(white),
	})

	c.log.Info("game started",
		zap.String("game", id),
		zap.String("white", white.Username),
		zap.String("black", black.Username),
	)
	return g, nil
}

// StartAI creates a game against the synthetic opponent. The human always
// plays white; the black player id is empty in the games collection.
func (c *Controller) StartAI(sess *gonet.Session, difficulty string) (*Game, error) {
	white := Player{UserID: sess.UserID, Username: sess.Username, Rating: sess.Rating, SessionID: sess.ID}
	black := aiProfile(difficulty)

	id, err := c.store.Insert(context.Background(), &persist.GameRow{
		WhitePlayerID: white.UserID,
		WhiteUsername: white.Username,
		BlackUsername: black.Username,
		FEN:           InitialFEN,
		Status:        StatusActive,
		Result:        ResultNone,
		StartTime:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	g := newLiveGame(id, white, black, true, difficulty)
	c.games[id] = g
	c.enterGame(sess, g)

	sess.Send(packet.S_MATCH_FOUND, packet.MatchFound{Opponent: userInfo(black)})
	sess.Send(packet.S_GAME_START, packet.GameStart{
		GameID:   id,
		Color:    White.String(),
		FEN:      InitialFEN,
		Opponent: userInfo(black),
	})

	c.log.Info("ai game started",
		zap.String("game", id),
		zap.String("white", white.Username),
		zap.String("difficulty", difficulty),
	)
	return g, nil
}

func (c *Controller) enterGame(sess *gonet.Session, g *Game) {
	if c.queue != nil {
		c.queue.Leave(sess.ID)
	}
	sess.SetState(packet.StateInGame)
	sess.GameID = g.ID
	if c.presence != nil {
		c.presence.SetInGame(sess.UserID, true)
	}
}

// HandleMove arbitrates one move submission from a session.
func (c *Controller) HandleMove(sess *gonet.Session, gameID, uci string) {
	g, color, ok := c.resolve(sess, gameID)
	if !ok {
		return
	}
	if g.Board.Turn() != color || (g.AI && g.AIThinking) {
		sess.Send(packet.S_INVALID_MOVE, packet.InvalidMove{Reason: "not your turn"})
		return
	}
	c.applyMove(g, uci, sess)
}

// applyMove is the single move path shared by humans and the AI provider.
// replyTo receives INVALID_MOVE on rejection; nil for the AI side.
func (c *Controller) applyMove(g *Game, uci string, replyTo *gonet.Session) {
	if err := g.Board.ApplyUCI(uci); err != nil {
		if replyTo != nil {
			replyTo.Send(packet.S_INVALID_MOVE, packet.InvalidMove{Reason: "illegal move"})
		} else {
			c.log.Error("ai produced an illegal move", zap.String("game", g.ID), zap.String("move", uci))
			c.abort(g)
		}
		return
	}

	g.Moves = append(g.Moves, uci)
	g.clearDrawOffer()

	fen := g.Board.FEN()

	// The move must be durable before any broadcast observes it.
	if err := c.store.AppendMove(context.Background(), g.ID, uci, fen); err != nil {
		c.log.Error("persist move failed", zap.String("game", g.ID), zap.Error(err))
		if replyTo != nil {
			replyTo.Send(packet.S_ERROR, packet.ErrorMessage{
				Code:    packet.ErrCodeInternal,
				Message: "failed to record move",
			})
		}
		c.abort(g)
		return
	}

	c.broadcast(g, packet.S_GAME_STATE_UPDATE, packet.GameStateUpdate{
		GameID:   g.ID,
		FEN:      fen,
		LastMove: uci,
		Turn:     g.Board.Turn().String(),
	})

	switch g.Board.Status() {
	case StatusCheckmate:
		// After mate the side to move is the mated side.
		winner := g.Board.Turn().Other()
		c.terminate(g, resultForWinner(winner), CauseCheckmate)
	case StatusStalemate:
		c.terminate(g, ResultDraw, CauseStalemate)
	case StatusInsufficientMaterial:
		c.terminate(g, ResultDraw, CauseInsufficientMaterial)
	case StatusFiftyMove:
		c.terminate(g, ResultDraw, CauseFiftyMove)
	case StatusThreefold:
		c.terminate(g, ResultDraw, CauseThreefold)
	default:
		if g.AI && g.Board.Turn() == Black {
			c.requestAIMove(g)
		}
	}
}

// Resign ends the game immediately; the resigning color loses.
func (c *Controller) Resign(sess *gonet.Session, gameID string) {
	g, color, ok := c.resolve(sess, gameID)
	if !ok {
		return
	}
	g.Board.Resign(color)
	c.terminate(g, resultForWinner(color.Other()), CauseResignation)
}

// OfferDraw records a draw offer. A second offer from the same color is a
// no-op; an offer while the other color's offer is outstanding is an
// implicit accept.
func (c *Controller) OfferDraw(sess *gonet.Session, gameID string) {
	g, color, ok := c.resolve(sess, gameID)
	if !ok {
		return
	}
	if g.AI {
		// The synthetic opponent never agrees to a draw.
		sess.Send(packet.S_DRAW_OFFER_DECLINED, packet.DrawOffer{GameID: g.ID})
		return
	}
	if by, outstanding := g.DrawOfferBy(); outstanding {
		if by == color {
			return
		}
		c.agreeDraw(g)
		return
	}
	g.setDrawOffer(color)
	c.sendTo(g, color.Other(), packet.S_DRAW_OFFER_RECEIVED, packet.DrawOffer{GameID: g.ID})
}

// AcceptDraw terminates with a draw; valid only against an outstanding offer
// from the other color.
func (c *Controller) AcceptDraw(sess *gonet.Session, gameID string) {
	g, color, ok := c.resolve(sess, gameID)
	if !ok {
		return
	}
	by, outstanding := g.DrawOfferBy()
	if !outstanding || by == color {
		sess.Send(packet.S_ERROR, packet.ErrorMessage{
			Code:    packet.ErrCodeDomain,
			Message: "no draw offer outstanding",
		})
		return
	}
	c.agreeDraw(g)
}

// DeclineDraw clears any outstanding offer and notifies both players.
// Declining with no offer outstanding is a no-op.
func (c *Controller) DeclineDraw(sess *gonet.Session, gameID string) {
	g, _, ok := c.resolve(sess, gameID)
	if !ok {
		return
	}
	if _, outstanding := g.DrawOfferBy(); !outstanding {
		return
	}
	g.clearDrawOffer()
	c.broadcast(g, packet.S_DRAW_OFFER_DECLINED, packet.DrawOffer{GameID: g.ID})
}

func (c *Controller) agreeDraw(g *Game) {
	g.Board.DrawAgreed()
	c.terminate(g, ResultDraw, CauseAgreement)
}

// HandleDisconnect treats a mid-game disconnect as resignation by that side.
func (c *Controller) HandleDisconnect(sess *gonet.Session) {
	if sess.GameID == "" {
		return
	}
	g, ok := c.games[sess.GameID]
	if !ok {
		return
	}
	color, isPlayer := g.PlayerByUser(sess.UserID)
	if !isPlayer {
		return
	}
	g.player(color).SessionID = 0
	g.Board.Resign(color)
	c.terminate(g, resultForWinner(color.Other()), CauseAbandonment)
}

// resolve maps (session, game id) to the live game and the session's color,
// replying with a typed error on any mismatch.
func (c *Controller) resolve(sess *gonet.Session, gameID string) (*Game, Color, bool) {
	g, ok := c.games[gameID]
	if !ok || sess.GameID != gameID {
		sess.Send(packet.S_ERROR, packet.ErrorMessage{
			Code:    packet.ErrCodeDomain,
			Message: "game not found",
		})
		return nil, White, false
	}
	color, isPlayer := g.PlayerByUser(sess.UserID)
	if !isPlayer {
		sess.Send(packet.S_ERROR, packet.ErrorMessage{
			Code:    packet.ErrCodeDomain,
			Message: "not a player of this game",
		})
		return nil, White, false
	}
	return g, color, true
}

// terminate runs the end-of-game sequence exactly once: ratings and
// counters, durable finalization, GAME_OVER fan-out, then session cleanup.
func (c *Controller) terminate(g *Game, result, cause string) {
	if g.finished {
		return
	}
	g.finished = true

	status := StatusCompleted
	if result == ResultNone {
		status = StatusAborted
	}

	if !g.AI && status == StatusCompleted {
		c.applyRatings(g, result)
	}

	if err := c.store.Finalize(context.Background(), g.ID, status, result, cause,
		g.Board.FEN(), g.Board.PGN(), time.Now().UTC()); err != nil {
		c.log.Error("finalize game failed", zap.String("game", g.ID), zap.Error(err))
		// In-memory termination already happened; leave the stored game
		// aborted rather than active.
		if ferr := c.store.Finalize(context.Background(), g.ID, StatusAborted, ResultNone, cause,
			g.Board.FEN(), g.Board.PGN(), time.Now().UTC()); ferr != nil {
			c.log.Error("abort-mark game failed", zap.String("game", g.ID), zap.Error(ferr))
		}
	}

	c.broadcast(g, packet.S_GAME_OVER, packet.GameOver{
		GameID: g.ID,
		Result: result,
		Cause:  cause,
	})

	delete(c.games, g.ID)
	c.leaveGame(g.White.SessionID)
	c.leaveGame(g.Black.SessionID)

	c.log.Info("game over",
		zap.String("game", g.ID),
		zap.String("result", result),
		zap.String("cause", cause),
	)
}

// abort terminates a game without a winner after an internal failure.
func (c *Controller) abort(g *Game) {
	c.terminate(g, ResultNone, CauseInternalError)
}

func (c *Controller) leaveGame(sessionID uint64) {
	if sessionID == 0 {
		return
	}
	sess := c.sessions.Get(sessionID)
	if sess == nil {
		return
	}
	sess.GameID = ""
	if sess.State() == packet.StateInGame {
		sess.SetState(packet.StateAuthenticated)
	}
	if c.presence != nil {
		c.presence.SetInGame(sess.UserID, false)
	}
}

// applyRatings updates both user records. Deltas are computed from the
// ratings both players entered the game with, so the sum is exactly zero
// before the floor is applied.
func (c *Controller) applyRatings(g *Game, result string) {
	whiteScore := elo.ScoreDraw
	whiteCounter, blackCounter := persist.CountDraw, persist.CountDraw
	switch result {
	case ResultWhiteWin:
		whiteScore = elo.ScoreWin
		whiteCounter, blackCounter = persist.CountWin, persist.CountLoss
	case ResultBlackWin:
		whiteScore = elo.ScoreLoss
		whiteCounter, blackCounter = persist.CountLoss, persist.CountWin
	}

	newWhite := elo.Next(g.White.Rating, g.Black.Rating, whiteScore)
	newBlack := elo.Next(g.Black.Rating, g.White.Rating, 1.0-whiteScore)

	if err := c.users.ApplyResult(context.Background(), g.White.UserID, newWhite, whiteCounter); err != nil {
		c.log.Error("apply result failed", zap.String("user", g.White.UserID), zap.Error(err))
	}
	if err := c.users.ApplyResult(context.Background(), g.Black.UserID, newBlack, blackCounter); err != nil {
		c.log.Error("apply result failed", zap.String("user", g.Black.UserID), zap.Error(err))
	}

	c.updateSessionRating(g.White.SessionID, newWhite)
	c.updateSessionRating(g.Black.SessionID, newBlack)
}

func (c *Controller) updateSessionRating(sessionID uint64, rating int) {
	if sessionID == 0 {
		return
	}
	if sess := c.sessions.Get(sessionID); sess != nil {
		sess.Rating = rating
	}
}

// requestAIMove farms a search out to the worker pool. The result re-enters
// the coordinator through post and flows down the same move path as a human
// move. While the engine thinks, AIThinking blocks further human moves.
func (c *Controller) requestAIMove(g *Game) {
	g.AIThinking = true
	gameID := g.ID
	fen := g.Board.FEN()
	difficulty := g.AIDifficulty

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.aiSem.Acquire(ctx, 1); err != nil {
			c.post(func() { c.finishAIMove(gameID, "", err) })
			return
		}
		defer c.aiSem.Release(1)

		move, err := c.engine.ChooseMove(ctx, fen, difficulty)
		c.post(func() { c.finishAIMove(gameID, move, err) })
	}()
}

func (c *Controller) finishAIMove(gameID, move string, err error) {
	g, ok := c.games[gameID]
	if !ok || g.finished {
		return
	}
	g.AIThinking = false
	if err != nil {
		c.log.Error("ai move failed", zap.String("game", gameID), zap.Error(err))
		c.abort(g)
		return
	}
	c.applyMove(g, move, nil)
}

// broadcast sends to both live player sessions. A disconnected side is
// skipped; the other still receives the message.
func (c *Controller) broadcast(g *Game, id uint16, v any) {
	c.sendTo(g, White, id, v)
	c.sendTo(g, Black, id, v)
}

func (c *Controller) sendTo(g *Game, color Color, id uint16, v any) {
	p := g.player(color)
	if p.SessionID == 0 {
		return
	}
	if sess := c.sessions.Get(p.SessionID); sess != nil {
		sess.Send(id, v)
	}
}

func resultForWinner(winner Color) string {
	if winner == White {
		return ResultWhiteWin
	}
	return ResultBlackWin
}

func userInfo(p Player) packet.UserInfo {
	return packet.UserInfo{UserID: p.UserID, Username: p.Username, Rating: p.Rating}
}

func aiProfile(difficulty string) Player {
	rating := 800
	switch difficulty {
	case DifficultyMedium:
		rating = 1200
	case DifficultyHard:
		rating = 1600
	}
	return Player{
		UserID:   AIUserID,
		Username: "AI (" + difficulty + ")",
		Rating:   rating,
	}
}
