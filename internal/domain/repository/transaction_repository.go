package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// BalanceDelta is a running-balance mutation applied in the same database
// transaction as a ledger write, so a committed record and its balance
// projection land together or not at all. At most one of CustomerID or
// VendorID is set.
type BalanceDelta struct {
	CustomerID *uuid.UUID
	VendorID   *uuid.UUID
	Delta      int64
}

// TransactionRepository defines the interface for transaction data operations.
// The draft lifecycle leans on two calls: UpsertDraft is an idempotent
// overwrite keyed by the session's stable ID, and Commit is a status-guarded
// promotion of that same row — a record that is already COMMITTED is never
// overwritten.
type TransactionRepository interface {
	// UpsertDraft writes or overwrites the DRAFT row for tx.ID, replacing its
	// item snapshot. It must not touch a row whose status is not DRAFT.
	UpsertDraft(ctx context.Context, tx *entity.Transaction) error
	// Commit promotes the row for tx.ID to COMMITTED, writing the final
	// amounts and item snapshot, and applies the balance delta (nil for
	// none) atomically with it. Inserts if no draft was ever flushed.
	// Returns apperror.ErrConflict semantics (wrapped) when the row is
	// already COMMITTED or VOID.
	Commit(ctx context.Context, tx *entity.Transaction, balance *BalanceDelta) error
	// Create inserts a finance transaction (expense/transfer/loan/credit
	// payment) directly in COMMITTED state, applying the balance delta in
	// the same database transaction.
	Create(ctx context.Context, tx *entity.Transaction, balance *BalanceDelta) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.TransactionStatus) (bool, error)
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)

	// ListForDay returns all committed transactions for a branch and calendar
	// day, items excluded. Feeds the drawer reconciliation.
	ListForDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.Transaction, error)
	// ListCreditEvents returns committed CREDIT-method transactions of the
	// given type for one party, newest first. Feeds the aging allocator.
	ListCreditEvents(ctx context.Context, txType enum.TransactionType, customerID, vendorID *uuid.UUID) ([]entity.Transaction, error)
}

// TransactionFilterParams contains filtering parameters for transaction queries
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	BranchID   *uuid.UUID
	Type       *enum.TransactionType
	Status     *enum.TransactionStatus
	CustomerID *uuid.UUID
	VendorID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
