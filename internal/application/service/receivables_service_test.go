package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

func creditEvent(branchID uuid.UUID, txType enum.TransactionType, customerID, vendorID *uuid.UUID, amount int64, daysAgo int) *entity.Transaction {
	return &entity.Transaction{
		ID:            uuid.New(),
		BranchID:      branchID,
		Type:          txType,
		Status:        enum.StatusCommitted,
		PaymentMethod: enum.PaymentCredit,
		Amount:        amount,
		BalanceDue:    amount,
		CustomerID:    customerID,
		VendorID:      vendorID,
		Date:          time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestCustomerAging(t *testing.T) {
	txRepo := newFakeTxRepo()
	branchID := uuid.New()

	customer := &entity.Customer{ID: uuid.New(), Name: "Njeri", TotalCredit: 25000}
	customers := newFakeCustomerRepo(customer)
	vendors := newFakeVendorRepo()
	svc := NewReceivablesService(customers, vendors, txRepo)

	// Newest-first allocation: 10000 at 5 days, 10000 at 40 days, 3000 at 100
	// days. The remaining 2000 has no matching history and lands in 90+.
	txRepo.put(creditEvent(branchID, enum.TxSale, &customer.ID, nil, 10000, 5))
	txRepo.put(creditEvent(branchID, enum.TxSale, &customer.ID, nil, 10000, 40))
	txRepo.put(creditEvent(branchID, enum.TxSale, &customer.ID, nil, 3000, 100))

	report, err := svc.CustomerAging(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("customer aging: %v", err)
	}
	b := report.Buckets
	if b.Days0To30 != 10000 || b.Days31To60 != 10000 || b.Days61To90 != 0 || b.Over90 != 5000 {
		t.Errorf("buckets = %d/%d/%d/%d, want 10000/10000/0/5000",
			b.Days0To30, b.Days31To60, b.Days61To90, b.Over90)
	}
	if b.Total() != report.Balance {
		t.Errorf("buckets sum to %d, balance is %d", b.Total(), report.Balance)
	}
}

func TestVendorAgingIgnoresOtherParties(t *testing.T) {
	txRepo := newFakeTxRepo()
	branchID := uuid.New()

	vendor := &entity.Vendor{ID: uuid.New(), Name: "Umoja Suppliers", TotalBalance: 7000}
	other := &entity.Vendor{ID: uuid.New(), Name: "Other", TotalBalance: 50000}
	vendors := newFakeVendorRepo(vendor, other)
	customers := newFakeCustomerRepo()
	svc := NewReceivablesService(customers, vendors, txRepo)

	txRepo.put(creditEvent(branchID, enum.TxPurchase, nil, &vendor.ID, 7000, 10))
	txRepo.put(creditEvent(branchID, enum.TxPurchase, nil, &other.ID, 50000, 10))

	report, err := svc.VendorAging(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("vendor aging: %v", err)
	}
	if report.Buckets.Days0To30 != 7000 || report.Buckets.Total() != 7000 {
		t.Errorf("buckets = %+v, want 7000 all in 0-30", report.Buckets)
	}
}

func TestCustomerAgingWithNoHistory(t *testing.T) {
	txRepo := newFakeTxRepo()

	customer := &entity.Customer{ID: uuid.New(), Name: "Wanjiku", TotalCredit: 4000}
	customers := newFakeCustomerRepo(customer)
	svc := NewReceivablesService(customers, newFakeVendorRepo(), txRepo)

	report, err := svc.CustomerAging(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("customer aging: %v", err)
	}
	if report.Buckets.Over90 != 4000 {
		t.Errorf("Over90 = %d, want the whole unexplained balance", report.Buckets.Over90)
	}
}
