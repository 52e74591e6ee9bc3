package handler

import (
	"context"
	"errors"

	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/gambitd/server/internal/persist"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

func HandleGetOnlineUsers(sess *gonet.Session, _ []byte, deps *Deps) {
	deps.Presence.SendList(sess)
}

// HandleGetStats returns the persisted record of a user. An empty user_id
// means the requester. The read runs off the coordinator.
func HandleGetStats(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GetStatsRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = sess.UserID
	}

	go func() {
		row, err := deps.Users.FindByID(context.Background(), userID)
		deps.Post(func() {
			if sess.IsClosed() {
				return
			}
			switch {
			case errors.Is(err, persist.ErrNotFound):
				sess.Send(packet.S_STATS_RESPONSE, packet.StatsResponse{Error: "user not found"})
			case err != nil:
				deps.Log.Error("stats lookup failed", zap.Error(err))
				sendInternalError(sess, "stats lookup failed")
			default:
				sess.Send(packet.S_STATS_RESPONSE, packet.StatsResponse{
					UserID:   row.ID,
					Username: row.Username,
					Rating:   row.Rating,
					Games:    row.Games,
					Wins:     row.Wins,
					Losses:   row.Losses,
					Draws:    row.Draws,
				})
			}
		})
	}()
}

// HandleGetHistory returns the requester's most recent completed games.
func HandleGetHistory(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GetHistoryRequest
	if !decodeInto(sess, payload, &req) {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	userID := sess.UserID

	go func() {
		rows, err := deps.Games.ListByUser(context.Background(), userID, limit)
		deps.Post(func() {
			if sess.IsClosed() {
				return
			}
			if err != nil {
				deps.Log.Error("history lookup failed", zap.Error(err))
				sendInternalError(sess, "history lookup failed")
				return
			}
			resp := packet.HistoryResponse{Games: make([]packet.GameSummary, 0, len(rows))}
			for _, row := range rows {
				sum := packet.GameSummary{
					GameID:        row.ID,
					WhiteUsername: row.WhiteUsername,
					BlackUsername: row.BlackUsername,
					Result:        row.Result,
					Cause:         row.Cause,
				}
				if row.EndTime != nil {
					sum.EndTime = row.EndTime.Unix()
				}
				resp.Games = append(resp.Games, sum)
			}
			sess.Send(packet.S_HISTORY_RESPONSE, resp)
		})
	}()
}

// HandleGetReplay returns the full move list of a stored game.
func HandleGetReplay(sess *gonet.Session, payload []byte, deps *Deps) {
	var req packet.GetReplayRequest
	if !decodeInto(sess, payload, &req) {
		return
	}

	go func() {
		row, err := deps.Games.FindByID(context.Background(), req.GameID)
		deps.Post(func() {
			if sess.IsClosed() {
				return
			}
			switch {
			case errors.Is(err, persist.ErrNotFound):
				sess.Send(packet.S_REPLAY_DATA, packet.ReplayData{
					GameID: req.GameID,
					Error:  "game not found",
				})
			case err != nil:
				deps.Log.Error("replay lookup failed", zap.Error(err))
				sendInternalError(sess, "replay lookup failed")
			default:
				sess.Send(packet.S_REPLAY_DATA, packet.ReplayData{
					GameID: row.ID,
					Moves:  row.Moves,
					PGN:    row.PGN,
					FEN:    row.FEN,
					Result: row.Result,
					Cause:  row.Cause,
				})
			}
		})
	}()
}
