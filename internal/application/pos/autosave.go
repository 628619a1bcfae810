package pos

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
)

// DefaultAutosaveWindow is the quiescence period before an in-progress cart
// is flushed as a draft.
const DefaultAutosaveWindow = 1500 * time.Millisecond

// DraftWriter persists draft snapshots. Satisfied by the transaction
// repository.
type DraftWriter interface {
	UpsertDraft(ctx context.Context, tx *entity.Transaction) error
}

// Autosave debounces cart mutations and flushes a DRAFT snapshot of the
// session once the cart has been quiet for the configured window. Each flush
// upserts under the session's stable ID, so repeated flushes overwrite one
// row instead of accumulating duplicates. A failed flush is logged and
// retried naturally on the next cycle.
//
// The snapshot callback runs on the timer goroutine; the session owner must
// make it safe against concurrent cart mutations (the checkout service takes
// its per-terminal lock inside the callback).
type Autosave struct {
	writer   DraftWriter
	snapshot func() *entity.Transaction
	window   time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewAutosave wires a coordinator to a session owner. snapshot must return the
// session's current DRAFT snapshot, or nil when there is nothing to flush.
// A window of zero uses DefaultAutosaveWindow.
func NewAutosave(writer DraftWriter, snapshot func() *entity.Transaction, window time.Duration) *Autosave {
	if window <= 0 {
		window = DefaultAutosaveWindow
	}
	return &Autosave{
		writer:   writer,
		snapshot: snapshot,
		window:   window,
		timeout:  5 * time.Second,
	}
}

// Touch restarts the debounce window. Called on every cart mutation.
func (a *Autosave) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.window, a.flush)
}

// Stop cancels any pending flush. Drafts already written stay in the store;
// abandoning a session never deletes its last snapshot.
func (a *Autosave) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autosave) flush() {
	// The snapshot is nil once the session has reset, which is what makes a
	// timer firing after commit a no-op instead of resurrecting the cart.
	snap := a.snapshot()
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.writer.UpsertDraft(ctx, snap); err != nil {
		log.Printf("autosave: draft flush failed for %s: %v", snap.ID, err)
	}
}
