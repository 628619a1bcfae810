package pos

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/pkg/apperror"
)

// State is the settlement phase of a session, derived from its contents
// rather than stored.
type State string

const (
	StateEmpty         State = "EMPTY"
	StateBuilding      State = "BUILDING"
	StateCashPending   State = "CASH_PENDING"
	StateCreditPending State = "CREDIT_PENDING"
	StateReady         State = "READY"
)

// CatalogItem is the read-only product view the session needs when a line is
// added. Stock becomes the line's quantity cap.
type CatalogItem struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	Stock     int
}

// Session owns one terminal's in-progress cart. It is the sole owner of cart
// state until commit transfers derived values into a Transaction and the
// session resets. The transaction ID is allocated on the first mutation and
// reused by every autosave flush and by the final commit, so the draft row is
// promoted in place rather than duplicated.
//
// A session is single-writer: one terminal, one goroutine. It is not safe for
// concurrent use.
type Session struct {
	id            uuid.UUID
	branchID      uuid.UUID
	lines         []CartLine
	global        Discount
	paymentMethod enum.PaymentMethod
	chequeNumber  string
	chequeDate    *time.Time
	isAdvance     bool
	advanceAmount int64
	customerID    *uuid.UUID
	tendered      int64

	onChange func()
}

// NewSession creates an empty session for a branch. onChange is invoked after
// every cart mutation; the autosave coordinator uses it to reset its debounce
// timer. It may be nil.
func NewSession(branchID uuid.UUID, onChange func()) *Session {
	return &Session{
		branchID:      branchID,
		paymentMethod: enum.PaymentCash,
		onChange:      onChange,
	}
}

// ID returns the session's stable transaction ID, or uuid.Nil before the
// first mutation.
func (s *Session) ID() uuid.UUID { return s.id }

// BranchID returns the branch this session sells for.
func (s *Session) BranchID() uuid.UUID { return s.branchID }

// Lines returns a copy of the cart lines.
func (s *Session) Lines() []CartLine {
	out := make([]CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// PaymentMethod returns the currently selected payment method.
func (s *Session) PaymentMethod() enum.PaymentMethod { return s.paymentMethod }

// CustomerID returns the resolved credit party, if any.
func (s *Session) CustomerID() *uuid.UUID { return s.customerID }

func (s *Session) touch() {
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	if s.onChange != nil {
		s.onChange()
	}
}

// AddLine adds a product to the cart, or bumps its quantity when already
// present. Quantity is capped at the stock observed now; adding a product
// with zero stock is rejected.
func (s *Session) AddLine(item CatalogItem) error {
	if item.Stock <= 0 {
		return apperror.NewBadRequestError("Product is out of stock")
	}
	for i := range s.lines {
		if s.lines[i].ProductID == item.ProductID {
			if s.lines[i].Quantity < s.lines[i].MaxQuantity {
				s.lines[i].Quantity++
			}
			s.touch()
			return nil
		}
	}
	s.lines = append(s.lines, CartLine{
		ProductID:    item.ProductID,
		Name:         item.Name,
		Quantity:     1,
		UnitPrice:    item.Price,
		DiscountKind: enum.DiscountAmount,
		MaxQuantity:  item.Stock,
	})
	s.touch()
	return nil
}

func (s *Session) line(productID uuid.UUID) *CartLine {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return &s.lines[i]
		}
	}
	return nil
}

// SetQuantity sets a line's quantity, clamped to [0, stock at add time].
func (s *Session) SetQuantity(productID uuid.UUID, quantity int) error {
	l := s.line(productID)
	if l == nil {
		return apperror.NewNotFoundError("Cart line")
	}
	if quantity < 0 {
		quantity = 0
	}
	if quantity > l.MaxQuantity {
		quantity = l.MaxQuantity
	}
	l.Quantity = quantity
	s.touch()
	return nil
}

// SetLinePrice overrides the unit price for one line.
func (s *Session) SetLinePrice(productID uuid.UUID, price int64) error {
	if price < 0 {
		return apperror.NewBadRequestError("Price cannot be negative")
	}
	l := s.line(productID)
	if l == nil {
		return apperror.NewNotFoundError("Cart line")
	}
	l.UnitPrice = price
	s.touch()
	return nil
}

// SetLineDiscount sets one line's discount. The value is not clamped to the
// line gross; an oversized discount surfaces as a pricing warning instead.
func (s *Session) SetLineDiscount(productID uuid.UUID, value int64, kind enum.DiscountKind) error {
	l := s.line(productID)
	if l == nil {
		return apperror.NewNotFoundError("Cart line")
	}
	l.Discount = value
	l.DiscountKind = kind
	s.touch()
	return nil
}

// RemoveLine removes a product's line from the cart.
func (s *Session) RemoveLine(productID uuid.UUID) error {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.touch()
			return nil
		}
	}
	return apperror.NewNotFoundError("Cart line")
}

// SetGlobalDiscount sets the cart-level discount. Amount and percent are
// mutually exclusive; setting one kind discards the other's value.
func (s *Session) SetGlobalDiscount(value int64, kind enum.DiscountKind) {
	s.global = Discount{Value: value, Kind: kind}
	s.touch()
}

// SelectPaymentMethod changes the payment method. Leaving CHEQUE drops the
// cheque metadata; leaving CASH drops the tendered amount.
func (s *Session) SelectPaymentMethod(method enum.PaymentMethod) error {
	if !method.Valid() {
		return apperror.NewBadRequestError("Unknown payment method")
	}
	if s.paymentMethod == enum.PaymentCheque && method != enum.PaymentCheque {
		s.chequeNumber = ""
		s.chequeDate = nil
	}
	if s.paymentMethod == enum.PaymentCash && method != enum.PaymentCash {
		s.tendered = 0
	}
	s.paymentMethod = method
	s.touch()
	return nil
}

// SetCheque records cheque metadata for CHEQUE payment.
func (s *Session) SetCheque(number string, date time.Time) {
	s.chequeNumber = number
	d := date
	s.chequeDate = &d
	s.touch()
}

// ToggleAdvance enables or disables split payment. Disabling clears the
// advance amount.
func (s *Session) ToggleAdvance(on bool) {
	s.isAdvance = on
	if !on {
		s.advanceAmount = 0
	}
	s.touch()
}

// SetAdvanceAmount sets the up-front portion of a split payment.
func (s *Session) SetAdvanceAmount(amount int64) error {
	if amount < 0 {
		return apperror.NewBadRequestError("Advance amount cannot be negative")
	}
	s.advanceAmount = amount
	s.touch()
	return nil
}

// SetCustomer resolves the credit party for CREDIT or advance sales.
func (s *Session) SetCustomer(id *uuid.UUID) {
	s.customerID = id
	s.touch()
}

// SetTendered records the cash handed over for a CASH sale.
func (s *Session) SetTendered(amount int64) {
	s.tendered = amount
	s.touch()
}

// Totals recomputes the cart's pricing via the calculator.
func (s *Session) Totals() PricingResult {
	return Price(s.lines, s.global)
}

// AmountDue returns what must be settled now: the advance amount for a split
// sale, the final total otherwise.
func (s *Session) AmountDue() int64 {
	if s.isAdvance {
		return s.advanceAmount
	}
	return s.Totals().FinalTotal
}

// Empty reports whether the cart has no lines.
func (s *Session) Empty() bool { return len(s.lines) == 0 }

// State derives the settlement phase from the session's contents.
func (s *Session) State() State {
	if s.Empty() {
		return StateEmpty
	}
	if len(s.Validate()) == 0 {
		return StateReady
	}
	switch {
	case s.paymentMethod == enum.PaymentCash && s.tendered < s.AmountDue():
		return StateCashPending
	case (s.paymentMethod == enum.PaymentCredit || s.isAdvance) && s.customerID == nil:
		return StateCreditPending
	}
	return StateBuilding
}

// Validate returns every reason the session cannot commit yet. An empty slice
// means the session is ready. Validation never mutates the session.
func (s *Session) Validate() []string {
	var reasons []string
	if s.Empty() {
		reasons = append(reasons, apperror.ReasonEmptyCart)
	}
	if s.paymentMethod == enum.PaymentCash && s.tendered < s.AmountDue() {
		reasons = append(reasons, apperror.ReasonInsufficientTender)
	}
	if (s.paymentMethod == enum.PaymentCredit || s.isAdvance) && s.customerID == nil {
		reasons = append(reasons, apperror.ReasonUnresolvedParty)
	}
	if s.isAdvance && (s.advanceAmount <= 0 || s.advanceAmount >= s.Totals().FinalTotal) {
		// A split must pay something now and leave something owing; an advance
		// covering the whole total is a plain sale, not a split
		reasons = append(reasons, apperror.ReasonInvalidAdvance)
	}
	if s.paymentMethod == enum.PaymentCheque && (s.chequeNumber == "" || s.chequeDate == nil) {
		reasons = append(reasons, apperror.ReasonMissingCheque)
	}
	return reasons
}

// Settlement is the finalized money split produced at commit time.
type Settlement struct {
	Amount     int64
	PaidAmount int64
	BalanceDue int64
	ChangeDue  int64
}

// Settle computes the paid/due split for the current cart. CREDIT pays
// nothing now; a split sale pays the advance amount; everything else settles
// in full. The advance is clamped to the total so Amount = PaidAmount +
// BalanceDue holds even for a draft snapshot of a not-yet-valid split.
// ChangeDue is only meaningful for CASH. Callers must Validate first.
func (s *Session) Settle() Settlement {
	total := s.Totals().FinalTotal
	st := Settlement{Amount: total}
	switch {
	case s.paymentMethod == enum.PaymentCredit:
		st.BalanceDue = total
	case s.isAdvance:
		st.BalanceDue = RemainingDue(total, s.advanceAmount)
		st.PaidAmount = total - st.BalanceDue
	default:
		st.PaidAmount = total
	}
	if s.paymentMethod == enum.PaymentCash {
		st.ChangeDue = s.tendered - s.AmountDue()
	}
	return st
}

// Snapshot builds a Transaction from the current cart under the session's
// stable ID. Status is the caller's choice: DRAFT for autosave flushes,
// COMMITTED at checkout. Returns nil for an empty cart — the guard that makes
// a debounce timer firing after commit a no-op.
func (s *Session) Snapshot(status enum.TransactionStatus, now time.Time) *entity.Transaction {
	if s.Empty() || s.id == uuid.Nil {
		return nil
	}
	totals := s.Totals()
	st := s.Settle()

	tx := &entity.Transaction{
		ID:            s.id,
		BranchID:      s.branchID,
		Type:          enum.TxSale,
		Status:        status,
		PaymentMethod: s.paymentMethod,
		Amount:        st.Amount,
		PaidAmount:    st.PaidAmount,
		BalanceDue:    st.BalanceDue,
		Discount:      totals.TotalDiscount(),
		CustomerID:    s.customerID,
		ChequeDate:    s.chequeDate,
		Date:          now,
	}
	if s.chequeNumber != "" {
		n := s.chequeNumber
		tx.ChequeNumber = &n
	}
	for _, l := range s.lines {
		tx.Items = append(tx.Items, entity.TransactionItem{
			TransactionID: s.id,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			Price:         l.UnitPrice,
			Discount:      l.Discount,
			DiscountKind:  l.DiscountKind,
		})
	}
	return tx
}

// Reset clears the session back to EMPTY. The old transaction ID is retired;
// the next mutation allocates a fresh one. Already-written drafts are left in
// the store untouched.
func (s *Session) Reset() {
	s.id = uuid.Nil
	s.lines = nil
	s.global = Discount{}
	s.paymentMethod = enum.PaymentCash
	s.chequeNumber = ""
	s.chequeDate = nil
	s.isAdvance = false
	s.advanceAmount = 0
	s.customerID = nil
	s.tendered = 0
}
