package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

// CheckoutService owns the live POS sessions, one per operator. Cart commands
// mutate the operator's session, the autosave coordinator flushes drafts in
// the background, and Commit turns the session into a committed transaction.
type CheckoutService struct {
	txRepo       repository.TransactionRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	dayRepo      repository.DaySessionRepository

	autosaveWindow time.Duration

	mu        sync.Mutex
	terminals map[uuid.UUID]*terminal
}

// terminal pairs one operator's session with its autosave coordinator. The
// mutex serializes cart commands against the autosave snapshot, which runs on
// the coordinator's timer goroutine.
type terminal struct {
	mu       sync.Mutex
	session  *pos.Session
	autosave *pos.Autosave
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	dayRepo repository.DaySessionRepository,
	autosaveWindow time.Duration,
) *CheckoutService {
	return &CheckoutService{
		txRepo:         txRepo,
		productRepo:    productRepo,
		customerRepo:   customerRepo,
		dayRepo:        dayRepo,
		autosaveWindow: autosaveWindow,
		terminals:      make(map[uuid.UUID]*terminal),
	}
}

// terminalFor returns the operator's live session, creating it on first use.
func (s *CheckoutService) terminalFor(userID, branchID uuid.UUID) *terminal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.terminals[userID]; ok {
		return t
	}

	t := &terminal{session: pos.NewSession(branchID, nil)}
	t.autosave = pos.NewAutosave(s.txRepo, func() *entity.Transaction {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.session.Snapshot(enum.StatusDraft, time.Now())
	}, s.autosaveWindow)
	s.terminals[userID] = t
	return t
}

// CartLineView is one cart row plus its derived amounts.
type CartLineView struct {
	ProductID    uuid.UUID         `json:"product_id"`
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	UnitPrice    int64             `json:"unit_price"`
	Discount     int64             `json:"discount"`
	DiscountKind enum.DiscountKind `json:"discount_kind"`
	Gross        int64             `json:"gross"`
}

// CartView is the full state of an operator's session as shown on the
// terminal: lines, totals, settlement phase and outstanding reasons.
type CartView struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	State         pos.State          `json:"state"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	Lines         []CartLineView     `json:"lines"`
	Totals        pos.PricingResult  `json:"totals"`
	AmountDue     int64              `json:"amount_due"`
	Reasons       []string           `json:"reasons,omitempty"`
}

// view builds the cart view. Callers hold t.mu.
func (s *CheckoutService) view(t *terminal) *CartView {
	v := &CartView{
		TransactionID: t.session.ID(),
		State:         t.session.State(),
		PaymentMethod: t.session.PaymentMethod(),
		Totals:        t.session.Totals(),
		AmountDue:     t.session.AmountDue(),
		Reasons:       t.session.Validate(),
	}
	for _, l := range t.session.Lines() {
		v.Lines = append(v.Lines, CartLineView{
			ProductID:    l.ProductID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Discount:     l.Discount,
			DiscountKind: l.DiscountKind,
			Gross:        l.Gross(),
		})
	}
	return v
}

// command runs one cart mutation under the terminal lock and returns the
// resulting view. The autosave window restarts on success.
func (s *CheckoutService) command(t *terminal, fn func(*pos.Session) error) (*CartView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := fn(t.session); err != nil {
		return nil, err
	}
	t.autosave.Touch()
	return s.view(t), nil
}

// GetCart returns the operator's current cart.
func (s *CheckoutService) GetCart(userID, branchID uuid.UUID) *CartView {
	t := s.terminalFor(userID, branchID)
	t.mu.Lock()
	defer t.mu.Unlock()
	return s.view(t)
}

// AddLine adds a product to the operator's cart.
func (s *CheckoutService) AddLine(ctx context.Context, userID, branchID, productID uuid.UUID) (*CartView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.AddLine(pos.CatalogItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Stock:     product.Stock,
		})
	})
}

// SetQuantity sets a cart line's quantity.
func (s *CheckoutService) SetQuantity(userID, branchID, productID uuid.UUID, quantity int) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.SetQuantity(productID, quantity)
	})
}

// SetLinePrice overrides a cart line's unit price.
func (s *CheckoutService) SetLinePrice(userID, branchID, productID uuid.UUID, price int64) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.SetLinePrice(productID, price)
	})
}

// SetLineDiscount sets a cart line's discount.
func (s *CheckoutService) SetLineDiscount(userID, branchID, productID uuid.UUID, value int64, kind enum.DiscountKind) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.SetLineDiscount(productID, value, kind)
	})
}

// RemoveLine removes a product from the cart.
func (s *CheckoutService) RemoveLine(userID, branchID, productID uuid.UUID) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.RemoveLine(productID)
	})
}

// SetGlobalDiscount sets the cart-level discount.
func (s *CheckoutService) SetGlobalDiscount(userID, branchID uuid.UUID, value int64, kind enum.DiscountKind) *CartView {
	v, _ := s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		session.SetGlobalDiscount(value, kind)
		return nil
	})
	return v
}

// SelectPaymentMethod changes the session's payment method.
func (s *CheckoutService) SelectPaymentMethod(userID, branchID uuid.UUID, method enum.PaymentMethod) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.SelectPaymentMethod(method)
	})
}

// SetCheque records cheque metadata.
func (s *CheckoutService) SetCheque(userID, branchID uuid.UUID, number string, date time.Time) *CartView {
	v, _ := s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		session.SetCheque(number, date)
		return nil
	})
	return v
}

// ToggleAdvance enables or disables split payment.
func (s *CheckoutService) ToggleAdvance(userID, branchID uuid.UUID, on bool) *CartView {
	v, _ := s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		session.ToggleAdvance(on)
		return nil
	})
	return v
}

// SetAdvanceAmount sets the up-front portion of a split payment.
func (s *CheckoutService) SetAdvanceAmount(userID, branchID uuid.UUID, amount int64) (*CartView, error) {
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		return session.SetAdvanceAmount(amount)
	})
}

// SetCustomer resolves the credit party for the sale.
func (s *CheckoutService) SetCustomer(ctx context.Context, userID, branchID uuid.UUID, customerID *uuid.UUID) (*CartView, error) {
	if customerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}
	return s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		session.SetCustomer(customerID)
		return nil
	})
}

// SetTendered records the cash handed over.
func (s *CheckoutService) SetTendered(userID, branchID uuid.UUID, amount int64) *CartView {
	v, _ := s.command(s.terminalFor(userID, branchID), func(session *pos.Session) error {
		session.SetTendered(amount)
		return nil
	})
	return v
}

// Abandon drops the operator's session. The pending autosave is cancelled but
// the last flushed draft stays in the store as the durable record of intent.
func (s *CheckoutService) Abandon(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.terminals[userID]; ok {
		t.autosave.Stop()
		delete(s.terminals, userID)
	}
}

// CommitResult is what the terminal shows after a successful checkout.
type CommitResult struct {
	Transaction *entity.Transaction `json:"transaction"`
	ChangeDue   int64               `json:"change_due"`
}

// costBasis snapshots the cost of goods sold for the cart at this moment.
// Products in a fixed-margin category derive cost from the selling price and
// the category's margin; everything else uses the catalog cost.
func (s *CheckoutService) costBasis(ctx context.Context, lines []pos.CartLine) (int64, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var total int64
	for _, l := range lines {
		product, ok := byID[l.ProductID]
		if !ok {
			return 0, apperror.NewNotFoundError(fmt.Sprintf("Product %s", l.ProductID))
		}
		unitCost := product.Cost
		if product.Category != nil && product.Category.PricingPolicy == enum.PricingFixedMargin {
			unitCost = int64(float64(l.UnitPrice) * (100 - product.Category.MarginPercent) / 100)
		}
		total += unitCost * int64(l.Quantity)
	}
	return total, nil
}

// Commit validates the session, snapshots cost basis, decrements stock,
// promotes the draft to COMMITTED under the same ID, mutates the credit
// party's running balance, and resets the session with a fresh future ID.
// Validation failures leave the session untouched for correction.
func (s *CheckoutService) Commit(ctx context.Context, userID, branchID uuid.UUID) (*CommitResult, error) {
	t := s.terminalFor(userID, branchID)
	t.mu.Lock()
	defer t.mu.Unlock()

	if reasons := t.session.Validate(); len(reasons) > 0 {
		return nil, apperror.NewCheckoutError(reasons)
	}

	now := time.Now()

	// A CASH sale needs an open drawer to land in
	if t.session.PaymentMethod() == enum.PaymentCash {
		open, err := s.dayRepo.GetOpen(ctx, branchID, now)
		if err != nil {
			return nil, err
		}
		if open == nil {
			return nil, apperror.ErrNoOpenSession
		}
	}

	lines := t.session.Lines()
	costBasis, err := s.costBasis(ctx, lines)
	if err != nil {
		return nil, err
	}

	decrements := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			decrements[l.ProductID] = l.Quantity
		}
	}
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, decrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, apperror.NewCheckoutError([]string{apperror.ReasonInsufficientStock})
	}

	settlement := t.session.Settle()
	tx := t.session.Snapshot(enum.StatusCommitted, now)
	tx.CostBasis = costBasis

	// The credit projection rides in the same database transaction as the
	// commit: either both land or the checkout fails whole and stays retryable
	var balance *repository.BalanceDelta
	if tx.BalanceDue > 0 && tx.CustomerID != nil {
		balance = &repository.BalanceDelta{CustomerID: tx.CustomerID, Delta: tx.BalanceDue}
	}

	if err := s.txRepo.Commit(ctx, tx, balance); err != nil {
		// Stock was already taken for this cart; put it back
		_ = s.productRepo.AtomicIncrementBatch(ctx, decrements)
		return nil, err
	}

	// Retire the ID; the autosave guard makes any in-flight timer a no-op
	t.session.Reset()

	committed, err := s.txRepo.GetWithItems(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	return &CommitResult{Transaction: committed, ChangeDue: settlement.ChangeDue}, nil
}
