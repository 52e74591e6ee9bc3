package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInvalidState is returned by Dispatch when a known message arrives in a
// session state its handler does not allow. The caller answers with a typed
// invalid-state error; the handler is not invoked.
var ErrInvalidState = errors.New("message not allowed in current session state")

// HandlerFunc is the callback signature for message handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, payload []byte)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps message ids to handlers with state-based access control.
// It is the sole entry point from the transport into business logic.
type Registry struct {
	handlers map[uint16]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[uint16]*handlerEntry),
		log:      log,
	}
}

// Register maps a message id to a handler, restricted to the given session states.
func (reg *Registry) Register(id uint16, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[id] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for the message id, validates the session state,
// and calls the handler. Unknown ids are logged and ignored. A state mismatch
// returns ErrInvalidState without invoking the handler.
func (reg *Registry) Dispatch(sess any, state SessionState, id uint16, payload []byte) error {
	reg.log.Debug("RX",
		zap.String("msg", Name(id)),
		zap.Int("size", len(payload)),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[id]
	if !ok {
		reg.log.Debug("unknown message id", zap.Uint16("id", id), zap.String("state", state.String()))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("message not allowed in state",
			zap.String("msg", Name(id)),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("%s in state %s: %w", Name(id), state, ErrInvalidState)
	}

	return reg.safeCall(entry.fn, sess, payload, id)
}

// safeCall executes a handler with panic recovery so a single bad message
// cannot crash the coordinator loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, payload []byte, id uint16) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("msg", Name(id)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", Name(id), rec)
		}
	}()
	fn(sess, payload)
	return nil
}
