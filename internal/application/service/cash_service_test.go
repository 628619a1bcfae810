package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

type cashFixture struct {
	svc      *CashService
	txRepo   *fakeTxRepo
	days     *fakeDayRepo
	accounts *fakeAccountRepo
	branchID uuid.UUID
	userID   uuid.UUID
	cashAcct uuid.UUID
	bankAcct uuid.UUID
}

func newCashFixture(t *testing.T) *cashFixture {
	t.Helper()
	f := &cashFixture{
		txRepo:   newFakeTxRepo(),
		days:     newFakeDayRepo(),
		branchID: uuid.New(),
		userID:   uuid.New(),
		cashAcct: uuid.New(),
		bankAcct: uuid.New(),
	}
	f.accounts = newFakeAccountRepo(
		&entity.Account{ID: f.cashAcct, BranchID: f.branchID, Name: "Cash Drawer", Kind: enum.AccountCash},
		&entity.Account{ID: f.bankAcct, BranchID: f.branchID, Name: "Bank Account", Kind: enum.AccountBank},
	)
	f.svc = NewCashService(f.days, f.txRepo, f.accounts)
	return f
}

func (f *cashFixture) committed(txType enum.TransactionType, method enum.PaymentMethod, amount, paid int64) {
	f.txRepo.put(&entity.Transaction{
		ID:            uuid.New(),
		BranchID:      f.branchID,
		Type:          txType,
		Status:        enum.StatusCommitted,
		PaymentMethod: method,
		Amount:        amount,
		PaidAmount:    paid,
		Date:          time.Now(),
	})
}

func TestOpenDayRejectsDoubleOpen(t *testing.T) {
	f := newCashFixture(t)
	ctx := context.Background()

	session, err := f.svc.OpenDay(ctx, f.branchID, f.userID, 100000)
	if err != nil {
		t.Fatalf("open day: %v", err)
	}
	if session.Status != enum.DayOpen {
		t.Errorf("status = %s, want OPEN", session.Status)
	}

	if _, err := f.svc.OpenDay(ctx, f.branchID, f.userID, 50000); !errors.Is(err, apperror.ErrSessionAlreadyOpen) {
		t.Fatalf("second open err = %v, want ErrSessionAlreadyOpen", err)
	}
}

func TestOpenDayRejectsNegativeOpening(t *testing.T) {
	f := newCashFixture(t)
	if _, err := f.svc.OpenDay(context.Background(), f.branchID, f.userID, -1); err == nil {
		t.Fatal("expected error for negative opening balance")
	}
}

func TestCloseDayReportsVariance(t *testing.T) {
	f := newCashFixture(t)
	ctx := context.Background()

	if _, err := f.svc.OpenDay(ctx, f.branchID, f.userID, 100000); err != nil {
		t.Fatalf("open day: %v", err)
	}

	// Cash sale 30000 fully paid, expense 5000 in cash
	f.committed(enum.TxSale, enum.PaymentCash, 30000, 30000)
	f.committed(enum.TxExpense, enum.PaymentCash, 5000, 5000)
	// Bank sale never touches the drawer
	f.committed(enum.TxSale, enum.PaymentBank, 40000, 40000)

	status, err := f.svc.DrawerStatus(ctx, f.branchID)
	if err != nil {
		t.Fatalf("drawer status: %v", err)
	}
	if status.Totals.ExpectedCash != 125000 {
		t.Fatalf("expected cash = %d, want 125000", status.Totals.ExpectedCash)
	}
	if status.Variance != nil {
		t.Error("variance must not be reported before close")
	}

	report, err := f.svc.CloseDay(ctx, f.branchID, f.userID, 124000)
	if err != nil {
		t.Fatalf("close day: %v", err)
	}
	if report.Variance == nil || *report.Variance != -1000 {
		t.Errorf("variance = %v, want -1000", report.Variance)
	}
	if report.Session.Status != enum.DayClosed {
		t.Errorf("status = %s, want CLOSED", report.Session.Status)
	}
	if report.Session.ActualClosing == nil || *report.Session.ActualClosing != 124000 {
		t.Error("actual closing not recorded")
	}
}

func TestCloseDayWithoutOpenSession(t *testing.T) {
	f := newCashFixture(t)
	if _, err := f.svc.CloseDay(context.Background(), f.branchID, f.userID, 0); !errors.Is(err, apperror.ErrNoOpenSession) {
		t.Fatalf("err = %v, want ErrNoOpenSession", err)
	}
}

func TestDrawerStatusWithoutOpenSession(t *testing.T) {
	f := newCashFixture(t)
	if _, err := f.svc.DrawerStatus(context.Background(), f.branchID); !errors.Is(err, apperror.ErrNoOpenSession) {
		t.Fatalf("err = %v, want ErrNoOpenSession", err)
	}
}
