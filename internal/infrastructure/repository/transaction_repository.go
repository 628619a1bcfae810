package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	domainRepo "github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

// replaceItems swaps a transaction's item snapshot wholesale. Items are a
// copy of the cart, so partial merges would only let stale lines leak through.
func replaceItems(tx *gorm.DB, id uuid.UUID, items []entity.TransactionItem) error {
	if err := tx.Where("transaction_id = ?", id).Delete(&entity.TransactionItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].TransactionID = id
	}
	return tx.Create(&items).Error
}

// applyBalanceDelta moves a party's running balance inside the caller's
// database transaction, so the ledger write and its projection commit
// together.
func applyBalanceDelta(tx *gorm.DB, d *domainRepo.BalanceDelta) error {
	if d == nil || d.Delta == 0 {
		return nil
	}

	var result *gorm.DB
	switch {
	case d.CustomerID != nil:
		result = tx.Model(&entity.Customer{}).
			Where("id = ?", *d.CustomerID).
			Update("total_credit", gorm.Expr("total_credit + ?", d.Delta))
	case d.VendorID != nil:
		result = tx.Model(&entity.Vendor{}).
			Where("id = ?", *d.VendorID).
			Update("total_balance", gorm.Expr("total_balance + ?", d.Delta))
	default:
		return nil
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// draftColumns are the fields an autosave or commit is allowed to rewrite.
var draftColumns = []string{
	"branch_id", "type", "status", "payment_method",
	"amount", "paid_amount", "balance_due", "discount", "cost_basis",
	"account_id", "destination_account_id", "customer_id", "vendor_id", "description",
	"cheque_number", "cheque_date", "date", "updated_at",
}

// UpsertDraft writes or overwrites the DRAFT row for tx.ID. A row that has
// moved past DRAFT is left untouched: a debounce timer firing after checkout
// must never claw a committed record back to draft.
func (r *transactionRepository) UpsertDraft(ctx context.Context, tx *entity.Transaction) error {
	tx.Status = enum.StatusDraft

	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		items := tx.Items
		tx.Items = nil

		result := db.Model(&entity.Transaction{}).
			Where("id = ? AND status = ?", tx.ID, enum.StatusDraft).
			Select(draftColumns).
			Updates(tx)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := db.Model(&entity.Transaction{}).Where("id = ?", tx.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				// Already committed or void; the flush is stale
				return nil
			}
			if err := db.Create(tx).Error; err != nil {
				return err
			}
		}

		return replaceItems(db, tx.ID, items)
	})
}

// Commit promotes the row for tx.ID to COMMITTED with the final amounts and
// item snapshot, applying any balance delta in the same database transaction.
// The transition is guarded by current status so a record that is already
// COMMITTED or VOID is never overwritten; an ID with no draft row (autosave
// never fired) is inserted directly.
func (r *transactionRepository) Commit(ctx context.Context, tx *entity.Transaction, balance *domainRepo.BalanceDelta) error {
	tx.Status = enum.StatusCommitted

	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		items := tx.Items
		tx.Items = nil

		result := db.Model(&entity.Transaction{}).
			Where("id = ? AND status = ?", tx.ID, enum.StatusDraft).
			Select(draftColumns).
			Updates(tx)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := db.Model(&entity.Transaction{}).Where("id = ?", tx.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperror.ErrAlreadyCommitted
			}
			if err := db.Create(tx).Error; err != nil {
				return err
			}
		}

		if err := replaceItems(db, tx.ID, items); err != nil {
			return err
		}
		return applyBalanceDelta(db, balance)
	})
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction, balance *domainRepo.BalanceDelta) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.Status = enum.StatusCommitted
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(tx).Error; err != nil {
			return err
		}
		return applyBalanceDelta(db, balance)
	})
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *transactionRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Preload("Customer").Preload("Vendor").
		First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

// UpdateStatus transitions a transaction from one status to another, guarded
// by the current status. Returns false when the guard did not match.
func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.TransactionStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txs []entity.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Transaction{})

	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.VendorID != nil {
		query = query.Where("vendor_id = ?", *params.VendorID)
	}
	if params.StartDate != nil {
		query = query.Where("date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("date < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").Preload("Vendor").
		Order("date DESC").
		Find(&txs).Error

	return txs, total, err
}

func (r *transactionRepository) ListForDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.Transaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var txs []entity.Transaction
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND status = ? AND date >= ? AND date < ?",
			branchID, enum.StatusCommitted, start, end).
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) ListCreditEvents(ctx context.Context, txType enum.TransactionType, customerID, vendorID *uuid.UUID) ([]entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND payment_method = ?",
			txType, enum.StatusCommitted, enum.PaymentCredit)

	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}

	var txs []entity.Transaction
	err := query.Order("date DESC").Find(&txs).Error
	return txs, err
}
