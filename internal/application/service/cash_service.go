package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

// CashService manages the daily cash float: open, close, and the drawer
// reconciliation in between.
type CashService struct {
	dayRepo     repository.DaySessionRepository
	txRepo      repository.TransactionRepository
	accountRepo repository.AccountRepository
}

// NewCashService creates a new cash service
func NewCashService(
	dayRepo repository.DaySessionRepository,
	txRepo repository.TransactionRepository,
	accountRepo repository.AccountRepository,
) *CashService {
	return &CashService{
		dayRepo:     dayRepo,
		txRepo:      txRepo,
		accountRepo: accountRepo,
	}
}

// OpenDay opens today's cash float for a branch. Opening while a session is
// already OPEN for the branch/date is rejected.
func (s *CashService) OpenDay(ctx context.Context, branchID, userID uuid.UUID, openingBalance int64) (*entity.DaySession, error) {
	if openingBalance < 0 {
		return nil, apperror.NewBadRequestError("Opening balance cannot be negative")
	}

	now := time.Now()
	existing, err := s.dayRepo.GetOpen(ctx, branchID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrSessionAlreadyOpen
	}

	session := &entity.DaySession{
		BranchID:       branchID,
		Date:           now,
		OpeningBalance: openingBalance,
		OpenedBy:       &userID,
	}
	if err := s.dayRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DrawerReport is the reconciliation of one day session.
type DrawerReport struct {
	Session  *entity.DaySession `json:"session"`
	Totals   pos.DrawerTotals   `json:"totals"`
	Variance *int64             `json:"variance,omitempty"` // only after close
}

// drawerTotals folds the day's committed transactions into expected cash.
func (s *CashService) drawerTotals(ctx context.Context, session *entity.DaySession) (pos.DrawerTotals, error) {
	txs, err := s.txRepo.ListForDay(ctx, session.BranchID, session.Date)
	if err != nil {
		return pos.DrawerTotals{}, err
	}
	cashAccounts, err := s.accountRepo.CashAccountIDs(ctx, session.BranchID)
	if err != nil {
		return pos.DrawerTotals{}, err
	}
	return pos.ExpectedDrawer(session.OpeningBalance, txs, cashAccounts), nil
}

// DrawerStatus returns the open session's running reconciliation.
func (s *CashService) DrawerStatus(ctx context.Context, branchID uuid.UUID) (*DrawerReport, error) {
	session, err := s.dayRepo.GetOpen(ctx, branchID, time.Now())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrNoOpenSession
	}

	totals, err := s.drawerTotals(ctx, session)
	if err != nil {
		return nil, err
	}
	return &DrawerReport{Session: session, Totals: totals}, nil
}

// CloseDay closes the open session with the operator's physical count. The
// variance against expected cash is reported, never auto-corrected.
func (s *CashService) CloseDay(ctx context.Context, branchID, userID uuid.UUID, actualClosing int64) (*DrawerReport, error) {
	session, err := s.dayRepo.GetOpen(ctx, branchID, time.Now())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrNoOpenSession
	}

	totals, err := s.drawerTotals(ctx, session)
	if err != nil {
		return nil, err
	}

	closedAt := time.Now()
	if err := s.dayRepo.Close(ctx, session.ID, actualClosing, userID, closedAt); err != nil {
		return nil, err
	}

	session.ActualClosing = &actualClosing
	session.ClosedBy = &userID
	session.ClosedAt = &closedAt
	session.Status = enum.DayClosed
	variance := pos.Variance(actualClosing, totals.ExpectedCash)

	return &DrawerReport{Session: session, Totals: totals, Variance: &variance}, nil
}

// History lists a branch's recent day sessions.
func (s *CashService) History(ctx context.Context, branchID uuid.UUID, limit int) ([]entity.DaySession, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.dayRepo.ListRecent(ctx, branchID, limit)
}
