package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

type checkoutFixture struct {
	svc       *CheckoutService
	txRepo    *fakeTxRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	days      *fakeDayRepo
	userID    uuid.UUID
	branchID  uuid.UUID
}

func newCheckoutFixture(t *testing.T, window time.Duration, products ...*entity.Product) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		txRepo:    newFakeTxRepo(),
		products:  newFakeProductRepo(products...),
		customers: newFakeCustomerRepo(),
		days:      newFakeDayRepo(),
		userID:    uuid.New(),
		branchID:  uuid.New(),
	}
	f.txRepo.customers = f.customers
	f.svc = NewCheckoutService(f.txRepo, f.products, f.customers, f.days, window)
	return f
}

func (f *checkoutFixture) openDay(t *testing.T, opening int64) {
	t.Helper()
	err := f.days.Create(context.Background(), &entity.DaySession{
		BranchID:       f.branchID,
		Date:           time.Now(),
		OpeningBalance: opening,
		Status:         enum.DayOpen,
	})
	if err != nil {
		t.Fatalf("open day: %v", err)
	}
}

func testProduct(price int64, stock int) *entity.Product {
	return &entity.Product{
		ID:    uuid.New(),
		Name:  "Maize Flour 2kg",
		Code:  "PROD-TEST",
		Price: price,
		Cost:  price / 2,
		Stock: stock,
	}
}

func reasonsOf(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Reasons
}

func TestCommitCashSale(t *testing.T) {
	product := testProduct(9000, 10)
	f := newCheckoutFixture(t, time.Hour, product)
	f.openDay(t, 100000)
	ctx := context.Background()

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	view, err := f.svc.SetQuantity(f.userID, f.branchID, product.ID, 2)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if view.Totals.FinalTotal != 18000 {
		t.Fatalf("final total = %d, want 18000", view.Totals.FinalTotal)
	}
	f.svc.SetTendered(f.userID, f.branchID, 20000)

	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.ChangeDue != 2000 {
		t.Errorf("change due = %d, want 2000", result.ChangeDue)
	}
	tx := result.Transaction
	if tx.Status != enum.StatusCommitted {
		t.Errorf("status = %s, want COMMITTED", tx.Status)
	}
	if tx.Amount != 18000 || tx.PaidAmount != 18000 || tx.BalanceDue != 0 {
		t.Errorf("amounts = %d/%d/%d, want 18000/18000/0", tx.Amount, tx.PaidAmount, tx.BalanceDue)
	}
	if tx.CostBasis != 9000 {
		t.Errorf("cost basis = %d, want 9000", tx.CostBasis)
	}
	if got := f.products.stock(product.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	cart := f.svc.GetCart(f.userID, f.branchID)
	if cart.State != pos.StateEmpty {
		t.Errorf("post-commit state = %s, want EMPTY", cart.State)
	}
}

func TestCommitReusesDraftID(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	f.openDay(t, 0)
	ctx := context.Background()

	view, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	draftID := view.TransactionID
	if draftID == uuid.Nil {
		t.Fatal("no transaction ID allocated on first mutation")
	}
	f.svc.SetTendered(f.userID, f.branchID, 5000)

	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.Transaction.ID != draftID {
		t.Errorf("committed under %s, want the draft ID %s", result.Transaction.ID, draftID)
	}

	// The next sale gets a fresh ID
	view, err = f.svc.AddLine(ctx, f.userID, f.branchID, product.ID)
	if err != nil {
		t.Fatalf("add line after commit: %v", err)
	}
	if view.TransactionID == draftID {
		t.Error("session reused the committed transaction ID")
	}
}

func TestCommitValidationFailureLeavesSessionIntact(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	ctx := context.Background()

	// Empty cart
	_, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if got := reasonsOf(t, err); len(got) != 1 || got[0] != apperror.ReasonEmptyCart {
		t.Fatalf("reasons = %v, want [EMPTY_CART]", got)
	}

	// Credit sale without a customer
	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := f.svc.SelectPaymentMethod(f.userID, f.branchID, enum.PaymentCredit); err != nil {
		t.Fatalf("select method: %v", err)
	}
	_, err = f.svc.Commit(ctx, f.userID, f.branchID)
	if got := reasonsOf(t, err); len(got) != 1 || got[0] != apperror.ReasonUnresolvedParty {
		t.Fatalf("reasons = %v, want [UNRESOLVED_PARTY]", got)
	}

	// The cart survives the failed commit for correction
	cart := f.svc.GetCart(f.userID, f.branchID)
	if len(cart.Lines) != 1 {
		t.Errorf("cart has %d lines after failed commit, want 1", len(cart.Lines))
	}
	if got := f.products.stock(product.ID); got != 5 {
		t.Errorf("stock = %d after failed commit, want 5", got)
	}
}

func TestCommitCashRequiresOpenDay(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	ctx := context.Background()

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	f.svc.SetTendered(f.userID, f.branchID, 5000)

	_, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if !errors.Is(err, apperror.ErrNoOpenSession) {
		t.Fatalf("err = %v, want ErrNoOpenSession", err)
	}
	if got := f.products.stock(product.ID); got != 5 {
		t.Errorf("stock = %d, want 5 untouched", got)
	}
}

func TestCommitInsufficientStock(t *testing.T) {
	product := testProduct(5000, 3)
	f := newCheckoutFixture(t, time.Hour, product)
	f.openDay(t, 0)
	ctx := context.Background()

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := f.svc.SetQuantity(f.userID, f.branchID, product.ID, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	f.svc.SetTendered(f.userID, f.branchID, 15000)

	// Another terminal sold the stock out from under this cart
	f.products.setStock(product.ID, 1)

	_, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if got := reasonsOf(t, err); len(got) != 1 || got[0] != apperror.ReasonInsufficientStock {
		t.Fatalf("reasons = %v, want [INSUFFICIENT_STOCK]", got)
	}
	if got := f.products.stock(product.ID); got != 1 {
		t.Errorf("stock = %d, want 1 untouched", got)
	}
}

func TestCommitCreditSaleGrowsCustomerBalance(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Wanjiku"}
	f.customers.customers[customer.ID] = customer

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := f.svc.SelectPaymentMethod(f.userID, f.branchID, enum.PaymentCredit); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if _, err := f.svc.SetCustomer(ctx, f.userID, f.branchID, &customer.ID); err != nil {
		t.Fatalf("set customer: %v", err)
	}

	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	tx := result.Transaction
	if tx.PaidAmount != 0 || tx.BalanceDue != 5000 {
		t.Errorf("paid/due = %d/%d, want 0/5000", tx.PaidAmount, tx.BalanceDue)
	}
	if customer.TotalCredit != 5000 {
		t.Errorf("customer credit = %d, want 5000", customer.TotalCredit)
	}
}

func TestCommitAdvanceSplit(t *testing.T) {
	product := testProduct(30000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	f.openDay(t, 0)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Otieno"}
	f.customers.customers[customer.ID] = customer

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	f.svc.ToggleAdvance(f.userID, f.branchID, true)
	if _, err := f.svc.SetAdvanceAmount(f.userID, f.branchID, 20000); err != nil {
		t.Fatalf("set advance: %v", err)
	}
	if _, err := f.svc.SetCustomer(ctx, f.userID, f.branchID, &customer.ID); err != nil {
		t.Fatalf("set customer: %v", err)
	}
	f.svc.SetTendered(f.userID, f.branchID, 20000)

	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	tx := result.Transaction
	if tx.Amount != 30000 || tx.PaidAmount != 20000 || tx.BalanceDue != 10000 {
		t.Errorf("amounts = %d/%d/%d, want 30000/20000/10000", tx.Amount, tx.PaidAmount, tx.BalanceDue)
	}
	if tx.Amount != tx.PaidAmount+tx.BalanceDue {
		t.Error("amount != paid + due")
	}
	if customer.TotalCredit != 10000 {
		t.Errorf("customer credit = %d, want 10000", customer.TotalCredit)
	}
}

func TestCommitAdvanceOutOfRange(t *testing.T) {
	product := testProduct(30000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	f.openDay(t, 0)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Otieno"}
	f.customers.customers[customer.ID] = customer

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	f.svc.ToggleAdvance(f.userID, f.branchID, true)
	if _, err := f.svc.SetCustomer(ctx, f.userID, f.branchID, &customer.ID); err != nil {
		t.Fatalf("set customer: %v", err)
	}
	f.svc.SetTendered(f.userID, f.branchID, 40000)

	// Zero advance: the split pays nothing now
	_, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if got := reasonsOf(t, err); len(got) != 1 || got[0] != apperror.ReasonInvalidAdvance {
		t.Fatalf("reasons = %v, want [INVALID_ADVANCE]", got)
	}

	// Advance above the total: the split would owe a negative balance
	if _, err := f.svc.SetAdvanceAmount(f.userID, f.branchID, 40000); err != nil {
		t.Fatalf("set advance: %v", err)
	}
	_, err = f.svc.Commit(ctx, f.userID, f.branchID)
	if got := reasonsOf(t, err); len(got) != 1 || got[0] != apperror.ReasonInvalidAdvance {
		t.Fatalf("reasons = %v, want [INVALID_ADVANCE]", got)
	}
	if customer.TotalCredit != 0 {
		t.Errorf("customer credit = %d after rejected commits, want 0", customer.TotalCredit)
	}

	// Corrected to a real split, the same session commits
	if _, err := f.svc.SetAdvanceAmount(f.userID, f.branchID, 10000); err != nil {
		t.Fatalf("set advance: %v", err)
	}
	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	tx := result.Transaction
	if tx.Amount != 30000 || tx.PaidAmount != 10000 || tx.BalanceDue != 20000 {
		t.Errorf("amounts = %d/%d/%d, want 30000/10000/20000", tx.Amount, tx.PaidAmount, tx.BalanceDue)
	}
	if customer.TotalCredit != 20000 {
		t.Errorf("customer credit = %d, want 20000", customer.TotalCredit)
	}
}

func TestCommitFailedWriteKeepsLedgerConsistent(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, time.Hour, product)
	ctx := context.Background()

	customer := &entity.Customer{ID: uuid.New(), Name: "Wanjiku"}
	f.customers.customers[customer.ID] = customer

	if _, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := f.svc.SelectPaymentMethod(f.userID, f.branchID, enum.PaymentCredit); err != nil {
		t.Fatalf("select method: %v", err)
	}
	if _, err := f.svc.SetCustomer(ctx, f.userID, f.branchID, &customer.ID); err != nil {
		t.Fatalf("set customer: %v", err)
	}

	// The store rejects the first attempt: nothing may land — no committed
	// row, no credit, stock back where it was
	f.txRepo.writeErr = errors.New("store unavailable")
	if _, err := f.svc.Commit(ctx, f.userID, f.branchID); err == nil {
		t.Fatal("expected commit failure")
	}
	if customer.TotalCredit != 0 {
		t.Errorf("customer credit = %d after failed commit, want 0", customer.TotalCredit)
	}
	if got := f.products.stock(product.ID); got != 5 {
		t.Errorf("stock = %d after failed commit, want 5 restored", got)
	}

	// The operator retries the same cart once the store recovers
	f.txRepo.writeErr = nil
	result, err := f.svc.Commit(ctx, f.userID, f.branchID)
	if err != nil {
		t.Fatalf("retry commit: %v", err)
	}
	if result.Transaction.Status != enum.StatusCommitted {
		t.Errorf("status = %s, want COMMITTED", result.Transaction.Status)
	}
	if customer.TotalCredit != 5000 {
		t.Errorf("customer credit = %d after retry, want 5000", customer.TotalCredit)
	}
	if got := f.products.stock(product.ID); got != 4 {
		t.Errorf("stock = %d after retry, want 4", got)
	}
}

func TestDraftAutosaveFlush(t *testing.T) {
	product := testProduct(5000, 5)
	f := newCheckoutFixture(t, 30*time.Millisecond, product)
	ctx := context.Background()

	view, err := f.svc.AddLine(ctx, f.userID, f.branchID, product.ID)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if draft := f.txRepo.get(view.TransactionID); draft != nil {
			if draft.Status != enum.StatusDraft {
				t.Fatalf("flushed status = %s, want DRAFT", draft.Status)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("draft was never flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
