package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// TransactionService handles the back-office side of the ledger: finance
// transactions, purchases, voids, and historical reads.
type TransactionService struct {
	txRepo       repository.TransactionRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
	accountRepo  repository.AccountRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
	accountRepo repository.AccountRepository,
) *TransactionService {
	return &TransactionService{
		txRepo:       txRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		accountRepo:  accountRepo,
	}
}

// ExpenseInput describes a business expense.
type ExpenseInput struct {
	BranchID      uuid.UUID
	Amount        int64
	PaymentMethod enum.PaymentMethod
	AccountID     *uuid.UUID
	Description   string
	Date          time.Time
}

// CreateExpense records an expense transaction.
func (s *TransactionService) CreateExpense(ctx context.Context, input *ExpenseInput) (*entity.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Expense amount must be positive")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError("Unknown payment method")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	tx := &entity.Transaction{
		BranchID:      input.BranchID,
		Type:          enum.TxExpense,
		PaymentMethod: input.PaymentMethod,
		Amount:        input.Amount,
		PaidAmount:    input.Amount,
		AccountID:     input.AccountID,
		Date:          input.Date,
	}
	if input.Description != "" {
		tx.Description = &input.Description
	}

	if err := s.txRepo.Create(ctx, tx, nil); err != nil {
		return nil, err
	}
	return tx, nil
}

// TransferInput moves money between two accounts of a branch.
type TransferInput struct {
	BranchID             uuid.UUID
	AccountID            uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               int64
	Description          string
	Date                 time.Time
}

// CreateTransfer records an account-to-account transfer. The drawer
// reconciliation classifies it by the kind of each leg's account.
func (s *TransactionService) CreateTransfer(ctx context.Context, input *TransferInput) (*entity.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Transfer amount must be positive")
	}
	if input.AccountID == input.DestinationAccountID {
		return nil, apperror.NewBadRequestError("Source and destination accounts must differ")
	}

	source, err := s.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NewNotFoundError("Source account")
	}
	dest, err := s.accountRepo.GetByID(ctx, input.DestinationAccountID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, apperror.NewNotFoundError("Destination account")
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	method := enum.PaymentBank
	if source.Kind == enum.AccountCash {
		method = enum.PaymentCash
	}

	tx := &entity.Transaction{
		BranchID:             input.BranchID,
		Type:                 enum.TxTransfer,
		PaymentMethod:        method,
		Amount:               input.Amount,
		PaidAmount:           input.Amount,
		AccountID:            &input.AccountID,
		DestinationAccountID: &input.DestinationAccountID,
		Date:                 input.Date,
	}
	if input.Description != "" {
		tx.Description = &input.Description
	}

	if err := s.txRepo.Create(ctx, tx, nil); err != nil {
		return nil, err
	}
	return tx, nil
}

// PurchaseItemInput is one received line of a purchase.
type PurchaseItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  int64
}

// PurchaseInput describes goods received from a vendor.
type PurchaseInput struct {
	BranchID      uuid.UUID
	VendorID      uuid.UUID
	PaymentMethod enum.PaymentMethod
	PaidAmount    int64 // ignored unless the purchase is partly paid
	Items         []PurchaseItemInput
	Date          time.Time
}

// CreatePurchase records a stock purchase: increments stock per line and, for
// CREDIT purchases, grows the vendor's running balance.
func (s *TransactionService) CreatePurchase(ctx context.Context, input *PurchaseInput) (*entity.Transaction, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Purchase requires at least one item")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError("Unknown payment method")
	}

	vendor, err := s.vendorRepo.GetByID(ctx, input.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, apperror.NewNotFoundError("Vendor")
	}

	var amount int64
	increments := make(map[uuid.UUID]int, len(input.Items))
	items := make([]entity.TransactionItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Invalid quantity for product %s", item.ProductID))
		}
		amount += item.UnitCost * int64(item.Quantity)
		increments[item.ProductID] = item.Quantity
		items = append(items, entity.TransactionItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Price:        item.UnitCost,
			DiscountKind: enum.DiscountAmount,
		})
	}

	paid := amount
	if input.PaymentMethod == enum.PaymentCredit {
		paid = 0
	} else if input.PaidAmount > 0 && input.PaidAmount < amount {
		paid = input.PaidAmount
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	tx := &entity.Transaction{
		ID:            uuid.New(),
		BranchID:      input.BranchID,
		Type:          enum.TxPurchase,
		PaymentMethod: input.PaymentMethod,
		Amount:        amount,
		PaidAmount:    paid,
		BalanceDue:    amount - paid,
		VendorID:      &input.VendorID,
		Date:          input.Date,
		Items:         items,
	}

	var balance *repository.BalanceDelta
	if tx.BalanceDue > 0 {
		balance = &repository.BalanceDelta{VendorID: &input.VendorID, Delta: tx.BalanceDue}
	}

	if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, tx, balance); err != nil {
		// Received stock belongs to a purchase that never landed; take it back
		if _, derr := s.productRepo.AtomicDecrementBatch(ctx, increments); derr != nil {
			log.Printf("transaction: failed to reverse stock for aborted purchase %s: %v", tx.ID, derr)
		}
		return nil, err
	}

	return s.txRepo.GetWithItems(ctx, tx.ID)
}

// CreditPaymentInput settles part of a party's outstanding balance. Exactly
// one of CustomerID or VendorID must be set.
type CreditPaymentInput struct {
	BranchID      uuid.UUID
	CustomerID    *uuid.UUID
	VendorID      *uuid.UUID
	Amount        int64
	PaymentMethod enum.PaymentMethod
	Date          time.Time
}

// RecordCreditPayment records a payment against a running balance and
// reduces it by the same amount.
func (s *TransactionService) RecordCreditPayment(ctx context.Context, input *CreditPaymentInput) (*entity.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}
	if (input.CustomerID == nil) == (input.VendorID == nil) {
		return nil, apperror.NewBadRequestError("Exactly one of customer or vendor is required")
	}
	if !input.PaymentMethod.Valid() || input.PaymentMethod == enum.PaymentCredit {
		return nil, apperror.NewBadRequestError("Invalid payment method for a credit payment")
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	} else {
		vendor, err := s.vendorRepo.GetByID(ctx, *input.VendorID)
		if err != nil {
			return nil, err
		}
		if vendor == nil {
			return nil, apperror.NewNotFoundError("Vendor")
		}
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	tx := &entity.Transaction{
		BranchID:      input.BranchID,
		Type:          enum.TxCreditPayment,
		PaymentMethod: input.PaymentMethod,
		Amount:        input.Amount,
		PaidAmount:    input.Amount,
		CustomerID:    input.CustomerID,
		VendorID:      input.VendorID,
		Date:          input.Date,
	}

	balance := &repository.BalanceDelta{
		CustomerID: input.CustomerID,
		VendorID:   input.VendorID,
		Delta:      -input.Amount,
	}
	if err := s.txRepo.Create(ctx, tx, balance); err != nil {
		return nil, err
	}

	return tx, nil
}

// LoanInput records money lent out to a customer.
type LoanInput struct {
	BranchID      uuid.UUID
	CustomerID    uuid.UUID
	Amount        int64
	PaymentMethod enum.PaymentMethod
	Description   string
	Date          time.Time
}

// RecordLoanGiven records a loan to a customer and grows their running
// balance by the loaned amount.
func (s *TransactionService) RecordLoanGiven(ctx context.Context, input *LoanInput) (*entity.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Loan amount must be positive")
	}
	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	tx := &entity.Transaction{
		BranchID:      input.BranchID,
		Type:          enum.TxLoanGiven,
		PaymentMethod: input.PaymentMethod,
		Amount:        input.Amount,
		PaidAmount:    input.Amount,
		CustomerID:    &input.CustomerID,
		Date:          input.Date,
	}
	if input.Description != "" {
		tx.Description = &input.Description
	}

	balance := &repository.BalanceDelta{CustomerID: &input.CustomerID, Delta: input.Amount}
	if err := s.txRepo.Create(ctx, tx, balance); err != nil {
		return nil, err
	}

	return tx, nil
}

// TransactionDetail is a historical transaction plus its totals re-derived
// from the item snapshot. A committed sale's recomputed amount always equals
// its stored amount.
type TransactionDetail struct {
	Transaction      *entity.Transaction `json:"transaction"`
	RecomputedAmount int64               `json:"recomputed_amount"`
}

// Get retrieves a transaction with its items, recomputing totals from the
// snapshot. A mismatch between stored and recomputed amount is logged; the
// stored record stays untouched.
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*TransactionDetail, error) {
	tx, err := s.txRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}

	detail := &TransactionDetail{Transaction: tx, RecomputedAmount: tx.Amount}
	if len(tx.Items) > 0 {
		detail.RecomputedAmount = pos.RecomputeAmount(tx.Items, tx.Discount)
		if detail.RecomputedAmount != tx.Amount {
			log.Printf("transaction %s: stored amount %d does not match snapshot-derived %d",
				tx.ID, tx.Amount, detail.RecomputedAmount)
		}
	}
	return detail, nil
}

// List lists transactions with filtering.
func (s *TransactionService) List(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	txs, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(txs, pag), nil
}

// Void reverses a committed transaction: COMMITTED moves to VOID under a
// status guard, stock flows back, and running balances are unwound. VOID is
// terminal and excluded from all reports.
func (s *TransactionService) Void(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := s.txRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	if tx.Status != enum.StatusCommitted {
		return nil, apperror.NewConflictError("Only committed transactions can be voided")
	}

	ok, err := s.txRepo.UpdateStatus(ctx, id, enum.StatusCommitted, enum.StatusVoid)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to another void
		return nil, apperror.NewConflictError("Transaction is no longer committed")
	}

	switch tx.Type {
	case enum.TxSale:
		increments := make(map[uuid.UUID]int, len(tx.Items))
		for _, item := range tx.Items {
			if item.Quantity > 0 {
				increments[item.ProductID] = item.Quantity
			}
		}
		if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
			return nil, err
		}
		if tx.BalanceDue > 0 && tx.CustomerID != nil {
			if err := s.customerRepo.AddCredit(ctx, *tx.CustomerID, -tx.BalanceDue); err != nil {
				return nil, err
			}
		}

	case enum.TxPurchase:
		decrements := make(map[uuid.UUID]int, len(tx.Items))
		for _, item := range tx.Items {
			if item.Quantity > 0 {
				decrements[item.ProductID] = item.Quantity
			}
		}
		if failed, err := s.productRepo.AtomicDecrementBatch(ctx, decrements); err != nil {
			return nil, err
		} else if len(failed) > 0 {
			// Some of the received stock was already sold on; undo the void
			if _, rerr := s.txRepo.UpdateStatus(ctx, id, enum.StatusVoid, enum.StatusCommitted); rerr != nil {
				log.Printf("transaction %s: failed to restore status after aborted void: %v", id, rerr)
			}
			return nil, apperror.NewConflictError("Cannot void purchase: stock already consumed")
		}
		if tx.BalanceDue > 0 && tx.VendorID != nil {
			if err := s.vendorRepo.AddBalance(ctx, *tx.VendorID, -tx.BalanceDue); err != nil {
				return nil, err
			}
		}

	case enum.TxCreditPayment:
		if tx.CustomerID != nil {
			if err := s.customerRepo.AddCredit(ctx, *tx.CustomerID, tx.Amount); err != nil {
				return nil, err
			}
		}
		if tx.VendorID != nil {
			if err := s.vendorRepo.AddBalance(ctx, *tx.VendorID, tx.Amount); err != nil {
				return nil, err
			}
		}

	case enum.TxLoanGiven:
		if tx.CustomerID != nil {
			if err := s.customerRepo.AddCredit(ctx, *tx.CustomerID, -tx.Amount); err != nil {
				return nil, err
			}
		}
	}

	tx.Status = enum.StatusVoid
	return tx, nil
}
