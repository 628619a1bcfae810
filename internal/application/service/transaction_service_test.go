package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

type txFixture struct {
	svc       *TransactionService
	txRepo    *fakeTxRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	vendors   *fakeVendorRepo
	accounts  *fakeAccountRepo
	branchID  uuid.UUID
}

func newTxFixture(t *testing.T, products ...*entity.Product) *txFixture {
	t.Helper()
	f := &txFixture{
		txRepo:    newFakeTxRepo(),
		products:  newFakeProductRepo(products...),
		customers: newFakeCustomerRepo(),
		vendors:   newFakeVendorRepo(),
		accounts:  newFakeAccountRepo(),
		branchID:  uuid.New(),
	}
	f.txRepo.customers = f.customers
	f.txRepo.vendors = f.vendors
	f.svc = NewTransactionService(f.txRepo, f.products, f.customers, f.vendors, f.accounts)
	return f
}

func TestCreatePurchaseOnCredit(t *testing.T) {
	product := testProduct(5000, 2)
	f := newTxFixture(t, product)
	ctx := context.Background()

	vendor := &entity.Vendor{ID: uuid.New(), Name: "Umoja Suppliers"}
	f.vendors.vendors[vendor.ID] = vendor

	tx, err := f.svc.CreatePurchase(ctx, &PurchaseInput{
		BranchID:      f.branchID,
		VendorID:      vendor.ID,
		PaymentMethod: enum.PaymentCredit,
		Items: []PurchaseItemInput{
			{ProductID: product.ID, Quantity: 10, UnitCost: 3000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if tx.Amount != 30000 || tx.PaidAmount != 0 || tx.BalanceDue != 30000 {
		t.Errorf("amounts = %d/%d/%d, want 30000/0/30000", tx.Amount, tx.PaidAmount, tx.BalanceDue)
	}
	if got := f.products.stock(product.ID); got != 12 {
		t.Errorf("stock = %d, want 12", got)
	}
	if vendor.TotalBalance != 30000 {
		t.Errorf("vendor balance = %d, want 30000", vendor.TotalBalance)
	}
}

func TestVoidSaleRestoresStockAndCredit(t *testing.T) {
	product := testProduct(5000, 3)
	f := newTxFixture(t, product)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Njeri", TotalCredit: 5000}
	f.customers.customers[customer.ID] = customer

	saleID := uuid.New()
	f.txRepo.put(&entity.Transaction{
		ID:            saleID,
		BranchID:      f.branchID,
		Type:          enum.TxSale,
		Status:        enum.StatusCommitted,
		PaymentMethod: enum.PaymentCredit,
		Amount:        5000,
		BalanceDue:    5000,
		CustomerID:    &customer.ID,
		Date:          time.Now(),
		Items: []entity.TransactionItem{
			{ProductID: product.ID, Quantity: 1, Price: 5000},
		},
	})

	voided, err := f.svc.Void(ctx, saleID)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != enum.StatusVoid {
		t.Errorf("status = %s, want VOID", voided.Status)
	}
	if got := f.products.stock(product.ID); got != 4 {
		t.Errorf("stock = %d, want 4", got)
	}
	if customer.TotalCredit != 0 {
		t.Errorf("customer credit = %d, want 0", customer.TotalCredit)
	}

	// Void is terminal
	if _, err := f.svc.Void(ctx, saleID); err == nil {
		t.Fatal("expected conflict voiding an already-void transaction")
	}
}

func TestVoidPurchaseWithConsumedStock(t *testing.T) {
	// Purchase brought in 10 units but only 2 remain: the void must abort and
	// the record must stay committed.
	product := testProduct(5000, 2)
	f := newTxFixture(t, product)
	ctx := context.Background()

	vendor := &entity.Vendor{ID: uuid.New(), Name: "Umoja Suppliers", TotalBalance: 30000}
	f.vendors.vendors[vendor.ID] = vendor

	purchaseID := uuid.New()
	f.txRepo.put(&entity.Transaction{
		ID:            purchaseID,
		BranchID:      f.branchID,
		Type:          enum.TxPurchase,
		Status:        enum.StatusCommitted,
		PaymentMethod: enum.PaymentCredit,
		Amount:        30000,
		BalanceDue:    30000,
		VendorID:      &vendor.ID,
		Date:          time.Now(),
		Items: []entity.TransactionItem{
			{ProductID: product.ID, Quantity: 10, Price: 3000},
		},
	})

	if _, err := f.svc.Void(ctx, purchaseID); err == nil {
		t.Fatal("expected conflict voiding a purchase whose stock was consumed")
	}
	if tx := f.txRepo.get(purchaseID); tx.Status != enum.StatusCommitted {
		t.Errorf("status = %s, want COMMITTED restored after aborted void", tx.Status)
	}
	if got := f.products.stock(product.ID); got != 2 {
		t.Errorf("stock = %d, want 2 untouched", got)
	}
	if vendor.TotalBalance != 30000 {
		t.Errorf("vendor balance = %d, want 30000 untouched", vendor.TotalBalance)
	}
}

func TestRecordCreditPaymentRequiresExactlyOneParty(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	vendorID := uuid.New()

	cases := []struct {
		name       string
		customerID *uuid.UUID
		vendorID   *uuid.UUID
	}{
		{"neither party", nil, nil},
		{"both parties", &customerID, &vendorID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RecordCreditPayment(ctx, &CreditPaymentInput{
				BranchID:      f.branchID,
				CustomerID:    tc.customerID,
				VendorID:      tc.vendorID,
				Amount:        1000,
				PaymentMethod: enum.PaymentCash,
			})
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRecordCreditPaymentSettlesCustomerBalance(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Njeri", TotalCredit: 8000}
	f.customers.customers[customer.ID] = customer

	tx, err := f.svc.RecordCreditPayment(ctx, &CreditPaymentInput{
		BranchID:      f.branchID,
		CustomerID:    &customer.ID,
		Amount:        3000,
		PaymentMethod: enum.PaymentCash,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if tx.Type != enum.TxCreditPayment {
		t.Errorf("type = %s, want CREDIT_PAYMENT", tx.Type)
	}
	if customer.TotalCredit != 5000 {
		t.Errorf("customer credit = %d, want 5000", customer.TotalCredit)
	}
}

func TestRecordCreditPaymentFailedWriteLeavesBalance(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Njeri", TotalCredit: 8000}
	f.customers.customers[customer.ID] = customer

	f.txRepo.writeErr = errors.New("store unavailable")
	if _, err := f.svc.RecordCreditPayment(ctx, &CreditPaymentInput{
		BranchID:      f.branchID,
		CustomerID:    &customer.ID,
		Amount:        3000,
		PaymentMethod: enum.PaymentCash,
	}); err == nil {
		t.Fatal("expected error from failed write")
	}
	// Without a committed payment record the balance must not move
	if customer.TotalCredit != 8000 {
		t.Errorf("customer credit = %d after failed write, want 8000", customer.TotalCredit)
	}

	f.txRepo.writeErr = nil
	if _, err := f.svc.RecordCreditPayment(ctx, &CreditPaymentInput{
		BranchID:      f.branchID,
		CustomerID:    &customer.ID,
		Amount:        3000,
		PaymentMethod: enum.PaymentCash,
	}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if customer.TotalCredit != 5000 {
		t.Errorf("customer credit = %d after retry, want 5000", customer.TotalCredit)
	}
}

func TestRecordLoanGivenGrowsCustomerBalance(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Otieno"}
	f.customers.customers[customer.ID] = customer

	if _, err := f.svc.RecordLoanGiven(ctx, &LoanInput{
		BranchID:      f.branchID,
		CustomerID:    customer.ID,
		Amount:        12000,
		PaymentMethod: enum.PaymentCash,
	}); err != nil {
		t.Fatalf("record loan: %v", err)
	}
	if customer.TotalCredit != 12000 {
		t.Errorf("customer credit = %d, want 12000", customer.TotalCredit)
	}
}

func TestGetRecomputesAmountFromSnapshot(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()

	// Two lines: 3 x 2000 with 500 off, plus 1 x 10000, global discount 1000.
	txID := uuid.New()
	f.txRepo.put(&entity.Transaction{
		ID:       txID,
		BranchID: f.branchID,
		Type:     enum.TxSale,
		Status:   enum.StatusCommitted,
		Amount:   14500,
		Discount: 1500,
		Date:     time.Now(),
		Items: []entity.TransactionItem{
			{ProductID: uuid.New(), Quantity: 3, Price: 2000, Discount: 500, DiscountKind: enum.DiscountAmount},
			{ProductID: uuid.New(), Quantity: 1, Price: 10000, DiscountKind: enum.DiscountAmount},
		},
	})

	detail, err := f.svc.Get(ctx, txID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.RecomputedAmount != detail.Transaction.Amount {
		t.Errorf("recomputed = %d, stored = %d; snapshot must re-derive the stored amount",
			detail.RecomputedAmount, detail.Transaction.Amount)
	}
}
