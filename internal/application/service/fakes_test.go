package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// In-memory repository fakes shared by the service tests. The transaction fake
// is mutex-guarded because autosave flushes write from a timer goroutine.

type fakeTxRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*entity.Transaction

	// Balance deltas apply to these fakes, mirroring the real repository
	// folding the projection into the write's database transaction.
	customers *fakeCustomerRepo
	vendors   *fakeVendorRepo

	// When set, Commit/Create fail without writing anything.
	writeErr error
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{txs: make(map[uuid.UUID]*entity.Transaction)}
}

func (r *fakeTxRepo) applyBalance(ctx context.Context, d *repository.BalanceDelta) error {
	if d == nil || d.Delta == 0 {
		return nil
	}
	if d.CustomerID != nil {
		return r.customers.AddCredit(ctx, *d.CustomerID, d.Delta)
	}
	if d.VendorID != nil {
		return r.vendors.AddBalance(ctx, *d.VendorID, d.Delta)
	}
	return nil
}

func (r *fakeTxRepo) get(id uuid.UUID) *entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx, ok := r.txs[id]; ok {
		cp := *tx
		return &cp
	}
	return nil
}

func (r *fakeTxRepo) put(tx *entity.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tx
	r.txs[tx.ID] = &cp
}

func (r *fakeTxRepo) UpsertDraft(ctx context.Context, tx *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.txs[tx.ID]; ok && existing.Status != enum.StatusDraft {
		return nil // stale flush against a promoted row is skipped
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *fakeTxRepo) Commit(ctx context.Context, tx *entity.Transaction, balance *repository.BalanceDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	if existing, ok := r.txs[tx.ID]; ok && existing.Status != enum.StatusDraft {
		return apperror.ErrAlreadyCommitted
	}
	if err := r.applyBalance(ctx, balance); err != nil {
		return err
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *fakeTxRepo) Create(ctx context.Context, tx *entity.Transaction, balance *repository.BalanceDelta) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.Status = enum.StatusCommitted
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	if err := r.applyBalance(ctx, balance); err != nil {
		return err
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *fakeTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.get(id), nil
}

func (r *fakeTxRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.get(id), nil
}

func (r *fakeTxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	return true, nil
}

func (r *fakeTxRepo) List(ctx context.Context, params *repository.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Transaction
	for _, tx := range r.txs {
		out = append(out, *tx)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTxRepo) ListForDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Transaction
	for _, tx := range r.txs {
		if tx.BranchID == branchID && tx.Status == enum.StatusCommitted {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) ListCreditEvents(ctx context.Context, txType enum.TransactionType, customerID, vendorID *uuid.UUID) ([]entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Transaction
	for _, tx := range r.txs {
		if tx.Type != txType || tx.Status != enum.StatusCommitted || tx.PaymentMethod != enum.PaymentCredit {
			continue
		}
		if customerID != nil && (tx.CustomerID == nil || *tx.CustomerID != *customerID) {
			continue
		}
		if vendorID != nil && (tx.VendorID == nil || *tx.VendorID != *vendorID) {
			continue
		}
		out = append(out, *tx)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.After(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) setStock(id uuid.UUID, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].Stock = stock
}

func (r *fakeProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, p := range r.products {
		if p.LowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CountLowStock(ctx context.Context) (int64, error) {
	low, _ := r.GetLowStock(ctx)
	return int64(len(low)), nil
}

func (r *fakeProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []uuid.UUID
	for id, qty := range decrements {
		p, ok := r.products[id]
		if !ok || p.Stock < qty {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, qty := range decrements {
		r.products[id].Stock -= qty
	}
	return nil, nil
}

func (r *fakeProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, qty := range increments {
		if p, ok := r.products[id]; ok {
			p.Stock += qty
		}
	}
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	if c, ok := r.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var out []entity.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) ListWithCredit(ctx context.Context, limit int) ([]entity.Customer, error) {
	var out []entity.Customer
	for _, c := range r.customers {
		if c.TotalCredit > 0 {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) AddCredit(ctx context.Context, id uuid.UUID, delta int64) error {
	c, ok := r.customers[id]
	if !ok {
		return apperror.NewNotFoundError("Customer")
	}
	c.TotalCredit += delta
	return nil
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*entity.Vendor
}

func newFakeVendorRepo(vendors ...*entity.Vendor) *fakeVendorRepo {
	r := &fakeVendorRepo{vendors: make(map[uuid.UUID]*entity.Vendor)}
	for _, v := range vendors {
		r.vendors[v.ID] = v
	}
	return r
}

func (r *fakeVendorRepo) Create(ctx context.Context, vendor *entity.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *fakeVendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	if v, ok := r.vendors[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, vendor *entity.Vendor) error {
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *fakeVendorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.vendors, id)
	return nil
}

func (r *fakeVendorRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Vendor, int64, error) {
	var out []entity.Vendor
	for _, v := range r.vendors {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVendorRepo) ListWithBalance(ctx context.Context, limit int) ([]entity.Vendor, error) {
	var out []entity.Vendor
	for _, v := range r.vendors {
		if v.TotalBalance > 0 {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVendorRepo) AddBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	v, ok := r.vendors[id]
	if !ok {
		return apperror.NewNotFoundError("Vendor")
	}
	v.TotalBalance += delta
	return nil
}

type fakeDayRepo struct {
	sessions map[uuid.UUID]*entity.DaySession
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{sessions: make(map[uuid.UUID]*entity.DaySession)}
}

func (r *fakeDayRepo) Create(ctx context.Context, session *entity.DaySession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = enum.DayOpen
	}
	r.sessions[session.ID] = session
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (r *fakeDayRepo) GetOpen(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error) {
	for _, s := range r.sessions {
		if s.BranchID == branchID && s.Status == enum.DayOpen && sameDay(s.Date, day) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDayRepo) GetByDay(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error) {
	for _, s := range r.sessions {
		if s.BranchID == branchID && sameDay(s.Date, day) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDayRepo) Close(ctx context.Context, id uuid.UUID, actualClosing int64, closedBy uuid.UUID, closedAt time.Time) error {
	s, ok := r.sessions[id]
	if !ok || s.Status != enum.DayOpen {
		return apperror.NewNotFoundError("Day session")
	}
	s.Status = enum.DayClosed
	s.ActualClosing = &actualClosing
	s.ClosedBy = &closedBy
	s.ClosedAt = &closedAt
	return nil
}

func (r *fakeDayRepo) ListRecent(ctx context.Context, branchID uuid.UUID, limit int) ([]entity.DaySession, error) {
	var out []entity.DaySession
	for _, s := range r.sessions {
		if s.BranchID == branchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*entity.Account
}

func newFakeAccountRepo(accounts ...*entity.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[uuid.UUID]*entity.Account)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAccountRepo) List(ctx context.Context, branchID uuid.UUID) ([]entity.Account, error) {
	var out []entity.Account
	for _, a := range r.accounts {
		if a.BranchID == branchID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) CashAccountIDs(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	for _, a := range r.accounts {
		if a.BranchID == branchID && a.Kind == enum.AccountCash {
			out[a.ID] = true
		}
	}
	return out, nil
}
