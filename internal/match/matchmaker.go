// Package match owns the random-pairing queue and the challenge table.
package match

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrAlreadyQueued      = errors.New("session is already queued")
	ErrSelfChallenge      = errors.New("cannot challenge yourself")
	ErrDuplicateChallenge = errors.New("challenger already has an outstanding challenge")
	ErrNoSuchChallenge    = errors.New("no such challenge")
)

// Entry is one waiting session in the queue.
type Entry struct {
	SessionID uint64
	UserID    string
	Rating    int
	JoinedAt  time.Time
}

// Challenge is one pending explicit pairing request. A challenger holds at
// most one at a time.
type Challenge struct {
	ChallengerSessionID uint64
	TargetSessionID     uint64
	ExpiresAt           time.Time
}

// Matchmaker owns the queue and challenge table exclusively. All methods
// run on the coordinator goroutine.
type Matchmaker struct {
	queue        []Entry
	challenges   map[uint64]*Challenge // keyed by challenger session id
	ratingWindow int                   // 0 = unbounded
	challengeTTL time.Duration
	log          *zap.Logger
}

func NewMatchmaker(ratingWindow int, challengeTTL time.Duration, log *zap.Logger) *Matchmaker {
	return &Matchmaker{
		challenges:   make(map[uint64]*Challenge),
		ratingWindow: ratingWindow,
		challengeTTL: challengeTTL,
		log:          log,
	}
}

// Join adds a session to the queue and tries to pair it immediately.
// Returns the matched opponent entry, if any; on a match both entries are
// gone from the queue.
func (m *Matchmaker) Join(sessionID uint64, userID string, rating int) (Entry, bool, error) {
	if m.Queued(sessionID) {
		return Entry{}, false, ErrAlreadyQueued
	}

	me := Entry{SessionID: sessionID, UserID: userID, Rating: rating, JoinedAt: time.Now()}

	// Scan front-first for the oldest compatible waiter; ties on join time
	// fall to the smaller session id.
	bestIdx := -1
	for i, e := range m.queue {
		if m.ratingWindow > 0 && abs(e.Rating-rating) > m.ratingWindow {
			continue
		}
		if bestIdx == -1 || older(m.queue[i], m.queue[bestIdx]) {
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		m.queue = append(m.queue, me)
		return Entry{}, false, nil
	}

	opponent := m.queue[bestIdx]
	m.queue = append(m.queue[:bestIdx], m.queue[bestIdx+1:]...)
	return opponent, true, nil
}

func older(a, b Entry) bool {
	if a.JoinedAt.Equal(b.JoinedAt) {
		return a.SessionID < b.SessionID
	}
	return a.JoinedAt.Before(b.JoinedAt)
}

// Leave removes a session from the queue. Reports whether it was queued.
func (m *Matchmaker) Leave(sessionID uint64) bool {
	for i, e := range m.queue {
		if e.SessionID == sessionID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Matchmaker) Queued(sessionID uint64) bool {
	for _, e := range m.queue {
		if e.SessionID == sessionID {
			return true
		}
	}
	return false
}

func (m *Matchmaker) QueueLen() int {
	return len(m.queue)
}

// AddChallenge records a pending challenge with its expiry.
func (m *Matchmaker) AddChallenge(challengerSessionID, targetSessionID uint64) error {
	if challengerSessionID == targetSessionID {
		return ErrSelfChallenge
	}
	if _, exists := m.challenges[challengerSessionID]; exists {
		return ErrDuplicateChallenge
	}
	m.challenges[challengerSessionID] = &Challenge{
		ChallengerSessionID: challengerSessionID,
		TargetSessionID:     targetSessionID,
		ExpiresAt:           time.Now().Add(m.challengeTTL),
	}
	return nil
}

// TakeChallenge consumes the pending challenge between the two sessions.
// Accept and decline both go through here; consuming twice fails, which
// makes a repeated decline a no-op for the caller.
func (m *Matchmaker) TakeChallenge(challengerSessionID, targetSessionID uint64) error {
	ch, ok := m.challenges[challengerSessionID]
	if !ok || ch.TargetSessionID != targetSessionID {
		return ErrNoSuchChallenge
	}
	delete(m.challenges, challengerSessionID)
	return nil
}

// HasChallenge reports whether a challenge from challenger to target is pending.
func (m *Matchmaker) HasChallenge(challengerSessionID, targetSessionID uint64) bool {
	ch, ok := m.challenges[challengerSessionID]
	return ok && ch.TargetSessionID == targetSessionID
}

// ExpireChallenges removes and returns every challenge past its deadline.
func (m *Matchmaker) ExpireChallenges(now time.Time) []Challenge {
	var expired []Challenge
	for id, ch := range m.challenges {
		if now.After(ch.ExpiresAt) {
			expired = append(expired, *ch)
			delete(m.challenges, id)
		}
	}
	return expired
}

// RemoveSession drops every trace of a disconnecting session: its queue
// entry, its outgoing challenge, and any challenges targeting it. Returns
// the challenger session ids whose challenges died with the target, so the
// caller can notify them.
func (m *Matchmaker) RemoveSession(sessionID uint64) []uint64 {
	m.Leave(sessionID)
	delete(m.challenges, sessionID)

	var orphaned []uint64
	for id, ch := range m.challenges {
		if ch.TargetSessionID == sessionID {
			orphaned = append(orphaned, id)
			delete(m.challenges, id)
		}
	}
	return orphaned
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
