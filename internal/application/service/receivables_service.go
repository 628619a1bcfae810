package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

// ReceivablesService produces aging reports for vendor payables and customer
// receivables. The running balance stays authoritative; aging is a derived
// view over history, recomputable at any time.
type ReceivablesService struct {
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
	txRepo       repository.TransactionRepository
}

// NewReceivablesService creates a new receivables service
func NewReceivablesService(
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
	txRepo repository.TransactionRepository,
) *ReceivablesService {
	return &ReceivablesService{
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		txRepo:       txRepo,
	}
}

// AgingReport is one party's outstanding balance split into age buckets.
type AgingReport struct {
	PartyID uuid.UUID        `json:"party_id"`
	Name    string           `json:"name"`
	Balance int64            `json:"balance"`
	Buckets pos.AgingBuckets `json:"buckets"`
}

// VendorAging ages a vendor's payable balance across its credit purchases.
func (s *ReceivablesService) VendorAging(ctx context.Context, vendorID uuid.UUID) (*AgingReport, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, apperror.NewNotFoundError("Vendor")
	}

	txs, err := s.txRepo.ListCreditEvents(ctx, enum.TxPurchase, nil, &vendorID)
	if err != nil {
		return nil, err
	}
	events := make([]pos.CreditEvent, len(txs))
	for i, tx := range txs {
		events[i] = pos.CreditEvent{Amount: tx.Amount, Date: tx.Date}
	}

	return &AgingReport{
		PartyID: vendor.ID,
		Name:    vendor.Name,
		Balance: vendor.TotalBalance,
		Buckets: pos.Age(vendor.TotalBalance, events, time.Now()),
	}, nil
}

// CustomerAging ages a customer's receivable balance across its credit sales.
func (s *ReceivablesService) CustomerAging(ctx context.Context, customerID uuid.UUID) (*AgingReport, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	txs, err := s.txRepo.ListCreditEvents(ctx, enum.TxSale, &customerID, nil)
	if err != nil {
		return nil, err
	}
	events := make([]pos.CreditEvent, len(txs))
	for i, tx := range txs {
		events[i] = pos.CreditEvent{Amount: tx.Amount, Date: tx.Date}
	}

	return &AgingReport{
		PartyID: customer.ID,
		Name:    customer.Name,
		Balance: customer.TotalCredit,
		Buckets: pos.Age(customer.TotalCredit, events, time.Now()),
	}, nil
}
