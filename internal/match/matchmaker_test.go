package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMatchmaker(window int) *Matchmaker {
	return NewMatchmaker(window, time.Minute, zap.NewNop())
}

func TestJoinPairsOldestCompatible(t *testing.T) {
	m := newTestMatchmaker(300)

	// 600 points apart: the first two wait.
	_, matched, err := m.Join(1, "u1", 1000)
	require.NoError(t, err)
	assert.False(t, matched)

	_, matched, err = m.Join(2, "u2", 1600)
	require.NoError(t, err)
	assert.False(t, matched)

	// Compatible with both waiters: the older one wins.
	opp, matched, err := m.Join(3, "u3", 1300)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, uint64(1), opp.SessionID)
	assert.Equal(t, 1, m.QueueLen())
}

func TestJoinPairsImmediately(t *testing.T) {
	m := newTestMatchmaker(0)

	_, matched, err := m.Join(1, "u1", 1200)
	require.NoError(t, err)
	require.False(t, matched)

	opp, matched, err := m.Join(2, "u2", 1200)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "u1", opp.UserID)
	assert.Zero(t, m.QueueLen(), "both entries leave the queue on a match")
}

func TestJoinRejectsDoubleQueue(t *testing.T) {
	m := newTestMatchmaker(0)

	_, _, err := m.Join(1, "u1", 1200)
	require.NoError(t, err)

	_, _, err = m.Join(1, "u1", 1200)
	require.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Equal(t, 1, m.QueueLen())
}

func TestJoinRespectsRatingWindow(t *testing.T) {
	m := newTestMatchmaker(200)

	_, _, err := m.Join(1, "u1", 1200)
	require.NoError(t, err)

	// 600 points apart: out of window, both wait.
	_, matched, err := m.Join(2, "u2", 1800)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, 2, m.QueueLen())

	// Within 200 of the first waiter only.
	opp, matched, err := m.Join(3, "u3", 1350)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, uint64(1), opp.SessionID)
}

func TestLeave(t *testing.T) {
	m := newTestMatchmaker(0)

	_, _, err := m.Join(1, "u1", 1200)
	require.NoError(t, err)

	assert.True(t, m.Leave(1))
	assert.False(t, m.Leave(1), "second leave is a no-op")
	assert.Zero(t, m.QueueLen())
}

func TestChallengeLifecycle(t *testing.T) {
	m := newTestMatchmaker(0)

	require.NoError(t, m.AddChallenge(1, 2))
	assert.True(t, m.HasChallenge(1, 2))

	require.NoError(t, m.TakeChallenge(1, 2))
	assert.False(t, m.HasChallenge(1, 2))

	// Consuming twice fails; this is what makes repeated declines no-ops.
	require.ErrorIs(t, m.TakeChallenge(1, 2), ErrNoSuchChallenge)
}

func TestChallengeSelfAndDuplicate(t *testing.T) {
	m := newTestMatchmaker(0)

	require.ErrorIs(t, m.AddChallenge(1, 1), ErrSelfChallenge)

	require.NoError(t, m.AddChallenge(1, 2))
	require.ErrorIs(t, m.AddChallenge(1, 3), ErrDuplicateChallenge)
}

func TestTakeChallengeWrongTarget(t *testing.T) {
	m := newTestMatchmaker(0)

	require.NoError(t, m.AddChallenge(1, 2))
	require.ErrorIs(t, m.TakeChallenge(1, 3), ErrNoSuchChallenge)
	assert.True(t, m.HasChallenge(1, 2), "a mismatched take must not consume the challenge")
}

func TestExpireChallenges(t *testing.T) {
	m := NewMatchmaker(0, 50*time.Millisecond, zap.NewNop())

	require.NoError(t, m.AddChallenge(1, 2))
	require.NoError(t, m.AddChallenge(3, 4))

	assert.Empty(t, m.ExpireChallenges(time.Now()))

	expired := m.ExpireChallenges(time.Now().Add(time.Second))
	assert.Len(t, expired, 2)
	assert.False(t, m.HasChallenge(1, 2))
	assert.False(t, m.HasChallenge(3, 4))
}

func TestRemoveSessionCleansEverything(t *testing.T) {
	m := newTestMatchmaker(0)

	_, _, err := m.Join(5, "u5", 1200)
	require.NoError(t, err)
	require.NoError(t, m.AddChallenge(5, 6)) // outgoing
	require.NoError(t, m.AddChallenge(7, 5)) // incoming
	require.NoError(t, m.AddChallenge(8, 9)) // unrelated

	orphaned := m.RemoveSession(5)

	assert.False(t, m.Queued(5))
	assert.False(t, m.HasChallenge(5, 6))
	assert.Equal(t, []uint64{7}, orphaned, "challenger 7 loses its target")
	assert.True(t, m.HasChallenge(8, 9))
}
