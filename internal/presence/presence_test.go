package presence

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	gonet "github.com/gambitd/server/internal/net"
	"github.com/gambitd/server/internal/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newLobbySession builds an authenticated session without running its I/O
// goroutines; tests read frames straight off OutQueue after FlushOutput.
func newLobbySession(t *testing.T, store *gonet.SessionStore, id uint64, userID, username string) *gonet.Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	sess := gonet.NewSession(server, id, 16, 64, time.Second, zap.NewNop())
	sess.UserID = userID
	sess.Username = username
	sess.Rating = 1200
	sess.SetState(packet.StateAuthenticated)
	store.Add(sess)
	store.BindUser(sess)
	return sess
}

type frame struct {
	id      uint16
	payload []byte
}

func drainFrames(t *testing.T, sess *gonet.Session) []frame {
	t.Helper()
	sess.FlushOutput()
	var frames []frame
	for {
		select {
		case raw := <-sess.OutQueue:
			id, payload, err := gonet.ReadFrame(bytes.NewReader(raw))
			require.NoError(t, err)
			frames = append(frames, frame{id: id, payload: payload})
		default:
			return frames
		}
	}
}

func countByID(frames []frame, id uint16) int {
	n := 0
	for _, f := range frames {
		if f.id == id {
			n++
		}
	}
	return n
}

func TestAddPushesStatusToOthersOnly(t *testing.T) {
	store := gonet.NewSessionStore()
	svc := NewService(store, zap.NewNop())

	alice := newLobbySession(t, store, 1, "ua", "alice")
	svc.Add(alice)

	bob := newLobbySession(t, store, 2, "ub", "bob")
	svc.Add(bob)

	aliceFrames := drainFrames(t, alice)
	require.Equal(t, 1, countByID(aliceFrames, packet.S_USER_STATUS_UPDATE))

	var update packet.UserStatusUpdate
	for _, f := range aliceFrames {
		if f.id == packet.S_USER_STATUS_UPDATE {
			require.NoError(t, json.Unmarshal(f.payload, &update))
		}
	}
	assert.Equal(t, "ub", update.UserID)
	assert.Equal(t, StatusOnline, update.Status)

	// The joining user never hears about itself.
	assert.Zero(t, countByID(drainFrames(t, bob), packet.S_USER_STATUS_UPDATE))
}

func TestRemovePushesOffline(t *testing.T) {
	store := gonet.NewSessionStore()
	svc := NewService(store, zap.NewNop())

	alice := newLobbySession(t, store, 1, "ua", "alice")
	svc.Add(alice)
	bob := newLobbySession(t, store, 2, "ub", "bob")
	svc.Add(bob)
	drainFrames(t, alice)

	svc.Remove("ub")
	assert.False(t, svc.Online("ub"))

	frames := drainFrames(t, alice)
	require.Equal(t, 1, countByID(frames, packet.S_USER_STATUS_UPDATE))
	var update packet.UserStatusUpdate
	require.NoError(t, json.Unmarshal(frames[0].payload, &update))
	assert.Equal(t, StatusOffline, update.Status)

	// Removing an unknown user is a no-op.
	svc.Remove("nobody")
}

func TestSetInGameStatus(t *testing.T) {
	store := gonet.NewSessionStore()
	svc := NewService(store, zap.NewNop())

	alice := newLobbySession(t, store, 1, "ua", "alice")
	svc.Add(alice)
	bob := newLobbySession(t, store, 2, "ub", "bob")
	svc.Add(bob)
	drainFrames(t, alice)

	svc.SetInGame("ub", true)

	frames := drainFrames(t, alice)
	require.Equal(t, 1, countByID(frames, packet.S_USER_STATUS_UPDATE))
	var update packet.UserStatusUpdate
	require.NoError(t, json.Unmarshal(frames[0].payload, &update))
	assert.Equal(t, StatusInGame, update.Status)

	users := svc.List("ua")
	require.Len(t, users, 1)
	assert.Equal(t, StatusInGame, users[0].Status)
}

func TestListExcludesSelfAndSorts(t *testing.T) {
	store := gonet.NewSessionStore()
	svc := NewService(store, zap.NewNop())

	svc.Add(newLobbySession(t, store, 1, "uc", "carol"))
	svc.Add(newLobbySession(t, store, 2, "ua", "alice"))
	svc.Add(newLobbySession(t, store, 3, "ub", "bob"))

	users := svc.List("ub")
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
}

func TestFlushDebounces(t *testing.T) {
	store := gonet.NewSessionStore()
	svc := NewService(store, zap.NewNop())

	alice := newLobbySession(t, store, 1, "ua", "alice")
	svc.Add(alice)
	svc.Add(newLobbySession(t, store, 2, "ub", "bob"))
	svc.Add(newLobbySession(t, store, 3, "uc", "carol"))
	drainFrames(t, alice)

	base := time.Now()

	// Three mutations coalesce into one broadcast.
	svc.Flush(base)
	assert.Equal(t, 1, countByID(drainFrames(t, alice), packet.S_ONLINE_USERS_LIST))

	// Dirty again but inside the debounce window: held back.
	svc.SetInGame("ub", true)
	drainFrames(t, alice)
	svc.Flush(base.Add(10 * time.Millisecond))
	assert.Zero(t, countByID(drainFrames(t, alice), packet.S_ONLINE_USERS_LIST))

	// Window passed: the held broadcast goes out.
	svc.Flush(base.Add(200 * time.Millisecond))
	assert.Equal(t, 1, countByID(drainFrames(t, alice), packet.S_ONLINE_USERS_LIST))

	// Clean set: nothing more to say.
	svc.Flush(base.Add(time.Second))
	assert.Zero(t, countByID(drainFrames(t, alice), packet.S_ONLINE_USERS_LIST))
}
