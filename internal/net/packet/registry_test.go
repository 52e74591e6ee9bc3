package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatchRoutesToHandler(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var gotPayload []byte
	reg.Register(C_LOGIN, []SessionState{StateConnected}, func(_ any, payload []byte) {
		gotPayload = payload
	})

	err := reg.Dispatch(nil, StateConnected, C_LOGIN, []byte(`{"username":"bob"}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"username":"bob"}`), gotPayload)
}

func TestDispatchRejectsWrongState(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	called := false
	reg.Register(C_MAKE_MOVE, []SessionState{StateInGame}, func(_ any, _ []byte) {
		called = true
	})

	err := reg.Dispatch(nil, StateConnected, C_MAKE_MOVE, nil)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, called, "handler must not run on a state mismatch")
}

func TestDispatchIgnoresUnknownID(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	err := reg.Dispatch(nil, StateConnected, 0x7777, []byte("junk"))
	assert.NoError(t, err, "unknown ids are dropped, not fatal")
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	reg.Register(C_RESIGN, []SessionState{StateInGame}, func(_ any, _ []byte) {
		panic("boom")
	})

	err := reg.Dispatch(nil, StateInGame, C_RESIGN, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidState)
}

func TestDispatchMultipleAllowedStates(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	calls := 0
	reg.Register(C_GET_STATS, []SessionState{StateAuthenticated, StateInGame}, func(_ any, _ []byte) {
		calls++
	})

	require.NoError(t, reg.Dispatch(nil, StateAuthenticated, C_GET_STATS, nil))
	require.NoError(t, reg.Dispatch(nil, StateInGame, C_GET_STATS, nil))
	require.ErrorIs(t, reg.Dispatch(nil, StateConnected, C_GET_STATS, nil), ErrInvalidState)
	assert.Equal(t, 2, calls)
}
