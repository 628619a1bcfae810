package pos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

type fakeDraftWriter struct {
	mu     sync.Mutex
	drafts []*entity.Transaction
	err    error
	wrote  chan struct{}
}

func newFakeDraftWriter() *fakeDraftWriter {
	return &fakeDraftWriter{wrote: make(chan struct{}, 16)}
}

func (f *fakeDraftWriter) UpsertDraft(ctx context.Context, tx *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.drafts = append(f.drafts, tx)
	f.wrote <- struct{}{}
	return nil
}

func (f *fakeDraftWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drafts)
}

// draftSnapshot adapts a session to the autosave snapshot callback the way
// the checkout service does, minus the per-terminal lock the tests don't need.
func draftSnapshot(session *Session) func() *entity.Transaction {
	return func() *entity.Transaction {
		return session.Snapshot(enum.StatusDraft, time.Now())
	}
}

func waitForWrite(t *testing.T, w *fakeDraftWriter) {
	t.Helper()
	select {
	case <-w.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for draft flush")
	}
}

func TestAutosaveFlushesAfterQuiescence(t *testing.T) {
	writer := newFakeDraftWriter()
	session := NewSession(uuid.New(), nil)
	auto := NewAutosave(writer, draftSnapshot(session), 20*time.Millisecond)
	session.onChange = auto.Touch
	defer auto.Stop()

	session.AddLine(testItem(10000, 5))
	waitForWrite(t, writer)

	writer.mu.Lock()
	draft := writer.drafts[0]
	writer.mu.Unlock()
	if draft.Status != enum.StatusDraft {
		t.Errorf("Status = %s, want DRAFT", draft.Status)
	}
	if draft.ID != session.ID() {
		t.Error("draft must reuse the session's stable ID")
	}
}

func TestAutosaveDebounceCoalescesMutations(t *testing.T) {
	writer := newFakeDraftWriter()
	session := NewSession(uuid.New(), nil)
	auto := NewAutosave(writer, draftSnapshot(session), 60*time.Millisecond)
	session.onChange = auto.Touch
	defer auto.Stop()

	item := testItem(10000, 10)
	for i := 0; i < 5; i++ {
		session.AddLine(item)
		time.Sleep(10 * time.Millisecond)
	}
	waitForWrite(t, writer)
	// Give a second flush time to appear if the debounce failed to coalesce
	time.Sleep(100 * time.Millisecond)

	if got := writer.count(); got != 1 {
		t.Errorf("flushes = %d, want 1 for a burst of mutations", got)
	}
}

func TestAutosaveSkipsEmptyCart(t *testing.T) {
	writer := newFakeDraftWriter()
	session := NewSession(uuid.New(), nil)
	auto := NewAutosave(writer, draftSnapshot(session), 20*time.Millisecond)
	session.onChange = auto.Touch
	defer auto.Stop()

	// Timer armed by the mutation, cart emptied before it fires: the
	// post-commit race. Nothing may be written.
	session.AddLine(testItem(10000, 5))
	session.Reset()

	time.Sleep(100 * time.Millisecond)
	if got := writer.count(); got != 0 {
		t.Errorf("flushes = %d, want 0 after reset", got)
	}
}

func TestAutosaveStopCancelsPendingFlush(t *testing.T) {
	writer := newFakeDraftWriter()
	session := NewSession(uuid.New(), nil)
	auto := NewAutosave(writer, draftSnapshot(session), 30*time.Millisecond)
	session.onChange = auto.Touch

	session.AddLine(testItem(10000, 5))
	auto.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := writer.count(); got != 0 {
		t.Errorf("flushes = %d, want 0 after Stop", got)
	}

	// Touch after Stop stays inert
	auto.Touch()
	time.Sleep(100 * time.Millisecond)
	if got := writer.count(); got != 0 {
		t.Errorf("flushes = %d, want 0 after Stop+Touch", got)
	}
}

func TestAutosaveRetriesOnNextCycle(t *testing.T) {
	writer := newFakeDraftWriter()
	writer.err = errors.New("store unavailable")
	session := NewSession(uuid.New(), nil)
	auto := NewAutosave(writer, draftSnapshot(session), 20*time.Millisecond)
	session.onChange = auto.Touch
	defer auto.Stop()

	session.AddLine(testItem(10000, 5))
	time.Sleep(100 * time.Millisecond)
	if got := writer.count(); got != 0 {
		t.Fatalf("flushes = %d, want 0 while store is down", got)
	}

	// Store recovers; the next mutation's cycle succeeds
	writer.mu.Lock()
	writer.err = nil
	writer.mu.Unlock()
	session.SetTendered(10000)
	waitForWrite(t, writer)
}
