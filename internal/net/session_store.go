package net

import (
	"github.com/gambitd/server/internal/net/packet"
)

// SessionStore owns every live Session, keyed by session id with a parallel
// index by user id populated at login. It is touched only from the
// coordinator goroutine; no lock is needed.
type SessionStore struct {
	sessions map[uint64]*Session
	byUser   map[string]uint64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uint64]*Session),
		byUser:   make(map[string]uint64),
	}
}

func (st *SessionStore) Add(sess *Session) {
	st.sessions[sess.ID] = sess
}

// Remove drops the session and its user index entry. Returns the removed
// session, or nil if unknown.
func (st *SessionStore) Remove(id uint64) *Session {
	sess, ok := st.sessions[id]
	if !ok {
		return nil
	}
	delete(st.sessions, id)
	if sess.UserID != "" && st.byUser[sess.UserID] == id {
		delete(st.byUser, sess.UserID)
	}
	return sess
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.sessions[id]
}

// GetByUser resolves the live session of an authenticated user.
func (st *SessionStore) GetByUser(userID string) *Session {
	id, ok := st.byUser[userID]
	if !ok {
		return nil
	}
	return st.sessions[id]
}

// BindUser indexes the session under its authenticated user id.
// Called once at login, after identity fields are set.
func (st *SessionStore) BindUser(sess *Session) {
	st.byUser[sess.UserID] = sess.ID
}

func (st *SessionStore) Count() int {
	return len(st.sessions)
}

func (st *SessionStore) ForEach(fn func(sess *Session)) {
	for _, sess := range st.sessions {
		fn(sess)
	}
}

// Broadcast sends one message to every session matching pred.
func (st *SessionStore) Broadcast(pred func(*Session) bool, id uint16, v any) {
	for _, sess := range st.sessions {
		if pred == nil || pred(sess) {
			sess.Send(id, v)
		}
	}
}

// Authenticated reports whether the session is past login and not tearing down.
func Authenticated(sess *Session) bool {
	st := sess.State()
	return st == packet.StateAuthenticated || st == packet.StateInGame
}
