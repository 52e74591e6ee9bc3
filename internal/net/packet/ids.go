package packet

import "fmt"

// Client → server message ids.
const (
	// Authentication
	C_REGISTER         uint16 = 0x0001
	C_LOGIN            uint16 = 0x0002
	C_GET_ONLINE_USERS uint16 = 0x0003

	// Matchmaking
	C_FIND_MATCH        uint16 = 0x0010
	C_CANCEL_FIND_MATCH uint16 = 0x0011
	C_FIND_AI_MATCH     uint16 = 0x0012

	// Game actions
	C_MAKE_MOVE    uint16 = 0x0020
	C_RESIGN       uint16 = 0x0021
	C_OFFER_DRAW   uint16 = 0x0022
	C_ACCEPT_DRAW  uint16 = 0x0023
	C_DECLINE_DRAW uint16 = 0x0024

	// Challenges
	C_CHALLENGE         uint16 = 0x0025
	C_ACCEPT_CHALLENGE  uint16 = 0x0026
	C_DECLINE_CHALLENGE uint16 = 0x0027

	// Statistics and history
	C_GET_STATS   uint16 = 0x0030
	C_GET_HISTORY uint16 = 0x0031
	C_GET_REPLAY  uint16 = 0x0032
)

// Server → client message ids.
const (
	S_REGISTER_RESULT    uint16 = 0x1001
	S_LOGIN_RESULT       uint16 = 0x1002
	S_USER_STATUS_UPDATE uint16 = 0x1003
	S_ONLINE_USERS_LIST  uint16 = 0x1004

	S_MATCH_FOUND uint16 = 0x1100
	S_GAME_START  uint16 = 0x1101

	S_GAME_STATE_UPDATE   uint16 = 0x1200
	S_INVALID_MOVE        uint16 = 0x1201
	S_GAME_OVER           uint16 = 0x1202
	S_DRAW_OFFER_RECEIVED uint16 = 0x1203
	S_DRAW_OFFER_DECLINED uint16 = 0x1204
	S_CHALLENGE_RECEIVED  uint16 = 0x1205
	S_CHALLENGE_ACCEPTED  uint16 = 0x1206
	S_CHALLENGE_DECLINED  uint16 = 0x1207

	S_STATS_RESPONSE   uint16 = 0x1300
	S_HISTORY_RESPONSE uint16 = 0x1301
	S_REPLAY_DATA      uint16 = 0x1302

	S_ERROR uint16 = 0x1F00
)

var idNames = map[uint16]string{
	C_REGISTER:          "REGISTER",
	C_LOGIN:             "LOGIN",
	C_GET_ONLINE_USERS:  "GET_ONLINE_USERS",
	C_FIND_MATCH:        "FIND_MATCH",
	C_CANCEL_FIND_MATCH: "CANCEL_FIND_MATCH",
	C_FIND_AI_MATCH:     "FIND_AI_MATCH",
	C_MAKE_MOVE:         "MAKE_MOVE",
	C_RESIGN:            "RESIGN",
	C_OFFER_DRAW:        "OFFER_DRAW",
	C_ACCEPT_DRAW:       "ACCEPT_DRAW",
	C_DECLINE_DRAW:      "DECLINE_DRAW",
	C_CHALLENGE:         "CHALLENGE",
	C_ACCEPT_CHALLENGE:  "ACCEPT_CHALLENGE",
	C_DECLINE_CHALLENGE: "DECLINE_CHALLENGE",
	C_GET_STATS:         "GET_STATS",
	C_GET_HISTORY:       "GET_HISTORY",
	C_GET_REPLAY:        "GET_REPLAY",

	S_REGISTER_RESULT:     "REGISTER_RESULT",
	S_LOGIN_RESULT:        "LOGIN_RESULT",
	S_USER_STATUS_UPDATE:  "USER_STATUS_UPDATE",
	S_ONLINE_USERS_LIST:   "ONLINE_USERS_LIST",
	S_MATCH_FOUND:         "MATCH_FOUND",
	S_GAME_START:          "GAME_START",
	S_GAME_STATE_UPDATE:   "GAME_STATE_UPDATE",
	S_INVALID_MOVE:        "INVALID_MOVE",
	S_GAME_OVER:           "GAME_OVER",
	S_DRAW_OFFER_RECEIVED: "DRAW_OFFER_RECEIVED",
	S_DRAW_OFFER_DECLINED: "DRAW_OFFER_DECLINED",
	S_CHALLENGE_RECEIVED:  "CHALLENGE_RECEIVED",
	S_CHALLENGE_ACCEPTED:  "CHALLENGE_ACCEPTED",
	S_CHALLENGE_DECLINED:  "CHALLENGE_DECLINED",
	S_STATS_RESPONSE:      "STATS_RESPONSE",
	S_HISTORY_RESPONSE:    "HISTORY_RESPONSE",
	S_REPLAY_DATA:         "REPLAY_DATA",
	S_ERROR:               "ERROR",
}

// Name returns the symbolic name of a message id, for logging.
func Name(id uint16) string {
	if n, ok := idNames[id]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN(0x%04X)", id)
}
