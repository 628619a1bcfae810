package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations.
// AddCredit mutates the running balance in place; a positive delta grows the
// customer's outstanding credit, a negative one settles it.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	ListWithCredit(ctx context.Context, limit int) ([]entity.Customer, error)
	AddCredit(ctx context.Context, id uuid.UUID, delta int64) error
}

// VendorRepository defines the interface for vendor data operations
type VendorRepository interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	Update(ctx context.Context, vendor *entity.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Vendor, int64, error)
	ListWithBalance(ctx context.Context, limit int) ([]entity.Vendor, error)
	AddBalance(ctx context.Context, id uuid.UUID, delta int64) error
}

// AccountRepository defines the interface for money account operations
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	List(ctx context.Context, branchID uuid.UUID) ([]entity.Account, error)
	CashAccountIDs(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]bool, error)
}
