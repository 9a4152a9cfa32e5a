package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleTyped(t *testing.T) {
	r := NewRouter()
	var got *protocol.ChestOpened
	var gotFrom uint32
	Handle(r, func(_ context.Context, from uint32, m *protocol.ChestOpened) error {
		got, gotFrom = m, from
		return nil
	})

	msg := &protocol.ChestOpened{ChestID: 4, OwnerID: 2}
	if err := r.Dispatch(context.Background(), 9, msg); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if got != msg || gotFrom != 9 {
		t.Errorf("handler got %+v from %d, want %+v from 9", got, gotFrom, msg)
	}
	if !r.Handles(protocol.TagChestOpened) {
		t.Error("Handles(TagChestOpened) = false")
	}
	if r.Handles(protocol.TagGrantChestOpen) {
		t.Error("Handles(TagGrantChestOpen) = true")
	}
}

func TestHandlerErrorPropagates(t *testing.T) {
	r := NewRouter()
	want := errors.New("rejected")
	Handle(r, func(context.Context, uint32, *protocol.ChestOpened) error { return want })

	if err := r.Dispatch(context.Background(), 1, &protocol.ChestOpened{}); !errors.Is(err, want) {
		t.Errorf("Dispatch() error = %v, want %v", err, want)
	}
}

func TestHandleReplaces(t *testing.T) {
	r := NewRouter()
	calls := 0
	Handle(r, func(context.Context, uint32, *protocol.ChestOpened) error { calls += 10; return nil })
	Handle(r, func(context.Context, uint32, *protocol.ChestOpened) error { calls++; return nil })

	r.Dispatch(context.Background(), 1, &protocol.ChestOpened{})
	if calls != 1 {
		t.Errorf("calls = %d, want only the second handler", calls)
	}
}

func TestDispatchFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		wantErr  error
	}{
		{"with fallback", true, nil},
		{"without fallback", false, ErrNoHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen protocol.Tag
			var opts []Option
			if tt.fallback {
				opts = append(opts, WithFallback(func(_ context.Context, _ uint32, m protocol.Message) error {
					seen = m.Tag()
					return nil
				}))
			}
			r := NewRouter(opts...)

			err := r.Dispatch(context.Background(), 1, &protocol.GrantChestOpen{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Dispatch() error = %v, want %v", err, tt.wantErr)
			}
			if tt.fallback && seen != protocol.TagGrantChestOpen {
				t.Errorf("fallback saw %v, want %v", seen, protocol.TagGrantChestOpen)
			}
		})
	}
}

func TestSetFallback(t *testing.T) {
	r := NewRouter()
	called := false
	r.SetFallback(func(context.Context, uint32, protocol.Message) error { called = true; return nil })
	r.Dispatch(context.Background(), 1, &protocol.ChestOpened{})
	if !called {
		t.Error("fallback not called")
	}

	r.SetFallback(nil)
	if err := r.Dispatch(context.Background(), 1, &protocol.ChestOpened{}); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Dispatch() after removing fallback = %v, want ErrNoHandler", err)
	}
}

func TestDispatchNil(t *testing.T) {
	r := NewRouter()
	if err := r.Dispatch(context.Background(), 1, nil); !errors.Is(err, ErrNilMessage) {
		t.Errorf("Dispatch(nil) = %v, want ErrNilMessage", err)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := NewRouter(WithLogger(quietLogger()))
	Handle(r, func(context.Context, uint32, *protocol.ChestOpened) error { panic("boom") })

	err := r.Dispatch(context.Background(), 7, &protocol.ChestOpened{})
	var he *HandlerError
	if !errors.As(err, &he) {
		t.Fatalf("Dispatch() error = %v, want *HandlerError", err)
	}
	if he.Tag != protocol.TagChestOpened || he.From != 7 || he.Panic != "boom" {
		t.Errorf("HandlerError = %+v", he)
	}
	if len(he.Stack) == 0 {
		t.Error("HandlerError.Stack is empty")
	}
}
