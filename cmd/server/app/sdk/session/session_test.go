package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()

	store, err := session.NewStore(100, time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	return store
}

func Test_Lifecycle(t *testing.T) {
	store := newStore(t)
	id := uuid.New()

	data, created := store.Get(id)
	if !created {
		t.Fatal("expected a new session")
	}

	if !data.State.Equal(session.Idle) {
		t.Fatalf("expected state %s, got %s", session.Idle, data.State)
	}

	if _, created := store.Get(id); created {
		t.Fatal("expected the existing session")
	}

	t.Run("analyze", func(t *testing.T) {
		data, ok := store.Begin(id)
		if !ok || !data.State.Equal(session.Analyzing) {
			t.Fatalf("expected to begin analyzing, got %s", data.State)
		}

		if _, ok := store.Begin(id); ok {
			t.Fatal("expected a second begin to be refused")
		}

		data = store.End(id)
		if !data.State.Equal(session.Idle) {
			t.Fatalf("expected state %s, got %s", session.Idle, data.State)
		}
	})

	t.Run("halt", func(t *testing.T) {
		data := store.Halt(id, "model file not found")
		if !data.State.Equal(session.Halted) {
			t.Fatalf("expected state %s, got %s", session.Halted, data.State)
		}

		if data.HaltReason != "model file not found" {
			t.Fatalf("expected the reason to be kept, got %q", data.HaltReason)
		}

		if _, ok := store.Begin(id); ok {
			t.Fatal("expected a halted session to refuse analysis")
		}

		data = store.End(id)
		if !data.State.Equal(session.Halted) {
			t.Fatalf("expected halted to be terminal, got %s", data.State)
		}
	})
}

func Test_BeginConcurrent(t *testing.T) {
	store := newStore(t)
	id := uuid.New()

	var wins atomic.Int32

	var g errgroup.Group
	for range 20 {
		g.Go(func() error {
			if _, ok := store.Begin(id); ok {
				wins.Add(1)
			}
			return nil
		})
	}

	g.Wait()

	if n := wins.Load(); n != 1 {
		t.Fatalf("expected exactly 1 analysis to begin, got %d", n)
	}
}

func Test_ParseState(t *testing.T) {
	for _, s := range []session.State{session.Idle, session.Analyzing, session.Halted} {
		got, err := session.ParseState(s.String())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if !got.Equal(s) {
			t.Fatalf("expected %s, got %s", s, got)
		}
	}

	if _, err := session.ParseState("done"); err == nil {
		t.Fatal("expected an error for an unknown state")
	}
}

func Test_Clear(t *testing.T) {
	store := newStore(t)

	store.Get(uuid.New())
	store.Get(uuid.New())

	if n := store.Len(); n != 2 {
		t.Fatalf("expected 2 sessions, got %d", n)
	}

	store.Clear()

	if n := store.Len(); n != 0 {
		t.Fatalf("expected 0 sessions, got %d", n)
	}
}
