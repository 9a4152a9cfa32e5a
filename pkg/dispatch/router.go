// Package dispatch routes decoded messages to typed handlers by tag.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

var (
	// ErrNoHandler is returned when a message has no handler and the router
	// has no fallback.
	ErrNoHandler = errors.New("dispatch: no handler")

	// ErrNilMessage is returned when Dispatch is called with a nil message.
	ErrNilMessage = errors.New("dispatch: nil message")
)

// HandlerFunc handles a message received from peer from.
type HandlerFunc func(ctx context.Context, from uint32, m protocol.Message) error

// HandlerError wraps a panic raised by a handler.
type HandlerError struct {
	Tag   protocol.Tag
	From  uint32
	Panic any
	Stack []byte
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("dispatch: handler panic on %s from %d: %v", e.Tag, e.From, e.Panic)
}

// Router maps tags to handlers. It is safe for concurrent use; handlers may
// be registered while messages are dispatched.
type Router struct {
	mu       sync.RWMutex
	handlers map[protocol.Tag]HandlerFunc
	fallback HandlerFunc
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFallback sets the handler for messages without a typed handler.
func WithFallback(fn HandlerFunc) Option {
	return func(r *Router) {
		r.fallback = fn
	}
}

// NewRouter creates an empty router.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		handlers: make(map[protocol.Tag]HandlerFunc),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers fn for messages of type T, replacing any handler already
// registered for T's tag.
//
//	dispatch.Handle(r, func(ctx context.Context, from uint32, m *protocol.ChestOpened) error {
//	    ...
//	})
func Handle[T protocol.Message](r *Router, fn func(ctx context.Context, from uint32, m T) error) {
	var zero T
	tag := zero.Tag()

	r.mu.Lock()
	r.handlers[tag] = func(ctx context.Context, from uint32, m protocol.Message) error {
		tm, ok := m.(T)
		if !ok {
			return fmt.Errorf("dispatch: %s handler got %T", tag, m)
		}
		return fn(ctx, from, tm)
	}
	r.mu.Unlock()
}

// SetFallback replaces the fallback handler. A nil fn removes it.
func (r *Router) SetFallback(fn HandlerFunc) {
	r.mu.Lock()
	r.fallback = fn
	r.mu.Unlock()
}

// Handles reports whether a typed handler is registered for tag.
func (r *Router) Handles(tag protocol.Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[tag]
	return ok
}

// Dispatch runs the handler for m. A panicking handler is recovered and
// reported as a *HandlerError.
func (r *Router) Dispatch(ctx context.Context, from uint32, m protocol.Message) (err error) {
	if m == nil {
		return ErrNilMessage
	}
	tag := m.Tag()

	r.mu.RLock()
	h, ok := r.handlers[tag]
	if !ok {
		h = r.fallback
	}
	r.mu.RUnlock()

	if h == nil {
		return fmt.Errorf("%w for %s", ErrNoHandler, tag)
	}

	defer func() {
		if p := recover(); p != nil {
			stack := debug.Stack()
			r.logger.Error("handler panic",
				"panic", p,
				"tag", tag,
				"from", from,
				"stack", string(stack))
			err = &HandlerError{Tag: tag, From: from, Panic: p, Stack: stack}
		}
	}()
	return h(ctx, from, m)
}
