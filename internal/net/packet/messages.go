package packet

// Payload structs for every wire message. All payloads are JSON objects;
// optional fields carry omitempty.

// UserInfo is the public snapshot of a user sent to peers.
type UserInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// OnlineUser is a presence entry. Status is "online" or "in_game".
type OnlineUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Status   string `json:"status"`
}

// ── Client → server ────────────────────────────────────────────────

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type FindAIMatchRequest struct {
	Difficulty string `json:"difficulty"` // "easy" | "medium" | "hard"
}

type ChallengeRequest struct {
	TargetUserID string `json:"target_user_id"`
}

// ChallengeAnswer covers ACCEPT_CHALLENGE and DECLINE_CHALLENGE.
type ChallengeAnswer struct {
	ChallengerUserID string `json:"challenger_user_id"`
}

type MakeMoveRequest struct {
	GameID string `json:"game_id"`
	Move   string `json:"move"` // UCI, e.g. "e2e4", "e7e8q"
}

// GameRef covers RESIGN, OFFER_DRAW, ACCEPT_DRAW and DECLINE_DRAW.
type GameRef struct {
	GameID string `json:"game_id"`
}

type GetStatsRequest struct {
	UserID string `json:"user_id,omitempty"` // empty = requesting user
}

type GetHistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

type GetReplayRequest struct {
	GameID string `json:"game_id"`
}

// ── Server → client ────────────────────────────────────────────────

type RegisterResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type LoginResult struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Rating   int    `json:"rating,omitempty"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
}

type UserStatusUpdate struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"` // "online" | "offline" | "in_game"
}

type OnlineUsersList struct {
	Users []OnlineUser `json:"users"`
}

type MatchFound struct {
	Opponent UserInfo `json:"opponent"`
}

type GameStart struct {
	GameID   string   `json:"game_id"`
	Color    string   `json:"color"` // "white" | "black"
	FEN      string   `json:"fen"`
	Opponent UserInfo `json:"opponent"`
}

type GameStateUpdate struct {
	GameID   string `json:"game_id"`
	FEN      string `json:"fen"`
	LastMove string `json:"last_move"`
	Turn     string `json:"turn"` // "white" | "black"
}

type InvalidMove struct {
	Reason string `json:"reason"`
}

type GameOver struct {
	GameID string `json:"game_id"`
	Result string `json:"result"` // "white_win" | "black_win" | "draw" | "none"
	Cause  string `json:"cause"`
}

type DrawOffer struct {
	GameID string `json:"game_id"`
}

type ChallengeReceived struct {
	Sender UserInfo `json:"sender"`
}

type ChallengeAccepted struct {
	Opponent UserInfo `json:"opponent"`
}

type ChallengeDeclined struct {
	TargetUserID string `json:"target_user_id"`
	Reason       string `json:"reason,omitempty"` // "declined" | "expired"
}

type StatsResponse struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Rating   int    `json:"rating"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	Error    string `json:"error,omitempty"`
}

type GameSummary struct {
	GameID        string `json:"game_id"`
	WhiteUsername string `json:"white_username"`
	BlackUsername string `json:"black_username"`
	Result        string `json:"result"`
	Cause         string `json:"cause"`
	EndTime       int64  `json:"end_time"` // unix seconds
}

type HistoryResponse struct {
	Games []GameSummary `json:"games"`
}

type ReplayData struct {
	GameID string   `json:"game_id"`
	Moves  []string `json:"moves"`
	PGN    string   `json:"pgn"`
	FEN    string   `json:"fen"`
	Result string   `json:"result"`
	Cause  string   `json:"cause"`
	Error  string   `json:"error,omitempty"`
}

// ErrorMessage is the generic typed error reply (S_ERROR).
type ErrorMessage struct {
	Code    string `json:"code"` // "invalid_state" | "decode_error" | "domain_error" | "internal_error"
	Message string `json:"message"`
}

// Error codes used in ErrorMessage.Code.
const (
	ErrCodeInvalidState = "invalid_state"
	ErrCodeDecode       = "decode_error"
	ErrCodeDomain       = "domain_error"
	ErrCodeInternal     = "internal_error"
)
