package net

import (
	"net"
	"testing"
	"time"

	"github.com/gambitd/server/internal/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStoreSession(t *testing.T, id uint64) *Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewSession(server, id, 16, 64, time.Second, zap.NewNop())
}

func TestSessionStoreAddGetRemove(t *testing.T) {
	st := NewSessionStore()
	sess := newStoreSession(t, 1)

	st.Add(sess)
	assert.Equal(t, 1, st.Count())
	assert.Same(t, sess, st.Get(1))

	removed := st.Remove(1)
	require.Same(t, sess, removed)
	assert.Zero(t, st.Count())
	assert.Nil(t, st.Get(1))
	assert.Nil(t, st.Remove(1))
}

func TestSessionStoreUserIndex(t *testing.T) {
	st := NewSessionStore()
	sess := newStoreSession(t, 1)
	sess.UserID = "user-1"
	st.Add(sess)

	assert.Nil(t, st.GetByUser("user-1"), "unbound until login")

	st.BindUser(sess)
	assert.Same(t, sess, st.GetByUser("user-1"))

	st.Remove(1)
	assert.Nil(t, st.GetByUser("user-1"))
}

func TestSessionStoreRemoveKeepsNewerBinding(t *testing.T) {
	st := NewSessionStore()
	old := newStoreSession(t, 1)
	old.UserID = "user-1"
	st.Add(old)
	st.BindUser(old)

	// The same user logs in again on a fresh session; the index moves.
	fresh := newStoreSession(t, 2)
	fresh.UserID = "user-1"
	st.Add(fresh)
	st.BindUser(fresh)

	// Tearing down the stale session must not unbind the fresh one.
	st.Remove(1)
	assert.Same(t, fresh, st.GetByUser("user-1"))
}

func TestSessionStoreBroadcast(t *testing.T) {
	st := NewSessionStore()
	lobby := newStoreSession(t, 1)
	lobby.SetState(packet.StateAuthenticated)
	connected := newStoreSession(t, 2)
	st.Add(lobby)
	st.Add(connected)

	st.Broadcast(Authenticated, packet.S_ONLINE_USERS_LIST, packet.OnlineUsersList{})

	lobby.FlushOutput()
	connected.FlushOutput()
	assert.Len(t, lobby.OutQueue, 1)
	assert.Empty(t, connected.OutQueue)

	// nil predicate sends to everyone.
	st.Broadcast(nil, packet.S_ONLINE_USERS_LIST, packet.OnlineUsersList{})
	lobby.FlushOutput()
	connected.FlushOutput()
	assert.Len(t, lobby.OutQueue, 2)
	assert.Len(t, connected.OutQueue, 1)
}

func TestAuthenticatedPredicate(t *testing.T) {
	sess := newStoreSession(t, 1)
	assert.False(t, Authenticated(sess))
	sess.SetState(packet.StateAuthenticated)
	assert.True(t, Authenticated(sess))
	sess.SetState(packet.StateInGame)
	assert.True(t, Authenticated(sess))
	sess.SetState(packet.StateDisconnecting)
	assert.False(t, Authenticated(sess))
}
