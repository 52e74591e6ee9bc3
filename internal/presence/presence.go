// Package presence maintains the online-users set and its fan-out.
package presence

import (
	"sort"
	"time"

	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"go.uber.org/zap"
)

// User status strings on the wire.
const (
	StatusOnline  = "online"
	StatusInGame  = "in_game"
	StatusOffline = "offline"
)

// debounceWindow coalesces successive list broadcasts.
const debounceWindow = 100 * time.Millisecond

type entry struct {
	sessionID uint64
	username  string
	rating    int
	inGame    bool
}

// Service owns the online-users set. Mutations mark the set dirty; the
// sweep tick flushes at most one ONLINE_USERS_LIST broadcast per debounce
// window. Individual USER_STATUS_UPDATE pushes are immediate.
type Service struct {
	online   map[string]*entry // keyed by user id
	sessions *gonet.SessionStore

	dirty     bool
	lastFlush time.Time

	log *zap.Logger
}

func NewService(sessions *gonet.SessionStore, log *zap.Logger) *Service {
	return &Service{
		online:   make(map[string]*entry),
		sessions: sessions,
		log:      log,
	}
}

// Add publishes a freshly authenticated session. Called after the login is
// committed to the session, never before.
func (s *Service) Add(sess *gonet.Session) {
	s.online[sess.UserID] = &entry{
		sessionID: sess.ID,
		username:  sess.Username,
		rating:    sess.Rating,
	}
	s.pushStatus(sess.UserID, sess.Username, StatusOnline)
	s.dirty = true
}

// Remove drops a user on disconnect.
func (s *Service) Remove(userID string) {
	e, ok := s.online[userID]
	if !ok {
		return
	}
	delete(s.online, userID)
	s.pushStatus(userID, e.username, StatusOffline)
	s.dirty = true
}

// SetInGame flips a user's in-game flag as games start and end.
func (s *Service) SetInGame(userID string, inGame bool) {
	e, ok := s.online[userID]
	if !ok {
		return
	}
	e.inGame = inGame
	status := StatusOnline
	if inGame {
		status = StatusInGame
	}
	s.pushStatus(userID, e.username, status)
	s.dirty = true
}

// Online reports whether the user currently holds a session.
func (s *Service) Online(userID string) bool {
	_, ok := s.online[userID]
	return ok
}

func (s *Service) Count() int {
	return len(s.online)
}

// List returns the online set excluding the given user, sorted by username
// for stable output.
func (s *Service) List(excludeUserID string) []packet.OnlineUser {
	users := make([]packet.OnlineUser, 0, len(s.online))
	for userID, e := range s.online {
		if userID == excludeUserID {
			continue
		}
		status := StatusOnline
		if e.inGame {
			status = StatusInGame
		}
		users = append(users, packet.OnlineUser{
			UserID:   userID,
			Username: e.username,
			Rating:   e.rating,
			Status:   status,
		})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// SendList answers a single session with its filtered view of the lobby.
func (s *Service) SendList(sess *gonet.Session) {
	sess.Send(packet.S_ONLINE_USERS_LIST, packet.OnlineUsersList{Users: s.List(sess.UserID)})
}

// Flush broadcasts the list to every authenticated session if the set
// changed and the debounce window has passed. Called from the sweep tick.
func (s *Service) Flush(now time.Time) {
	if !s.dirty || now.Sub(s.lastFlush) < debounceWindow {
		return
	}
	s.dirty = false
	s.lastFlush = now

	s.sessions.ForEach(func(sess *gonet.Session) {
		if gonet.Authenticated(sess) {
			s.SendList(sess)
		}
	})
}

// pushStatus emits one USER_STATUS_UPDATE to every other authenticated session.
func (s *Service) pushStatus(userID, username, status string) {
	update := packet.UserStatusUpdate{UserID: userID, Username: username, Status: status}
	s.sessions.ForEach(func(sess *gonet.Session) {
		if gonet.Authenticated(sess) && sess.UserID != userID {
			sess.Send(packet.S_USER_STATUS_UPDATE, update)
		}
	})
}
