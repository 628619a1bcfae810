package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// PartyService handles customer and vendor bookkeeping. Running balances are
// only ever mutated by the transaction services; this service manages the
// directory records around them.
type PartyService struct {
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
}

// NewPartyService creates a new party service
func NewPartyService(
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
) *PartyService {
	return &PartyService{
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
	}
}

// PartyInput represents the create/update input shared by customers and vendors
type PartyInput struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// CreateCustomer creates a new customer
func (s *PartyService) CreateCustomer(ctx context.Context, input *PartyInput) (*entity.Customer, error) {
	customer := &entity.Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *PartyService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// UpdateCustomer updates a customer's directory fields
func (s *PartyService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *PartyInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Name != "" {
		customer.Name = input.Name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer deletes a customer. A customer holding outstanding credit
// cannot be removed; the balance has to be settled or written off first.
func (s *PartyService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	if customer.TotalCredit != 0 {
		return apperror.NewConflictError("Customer has an outstanding credit balance")
	}
	return s.customerRepo.Delete(ctx, id)
}

// ListCustomers lists customers with pagination and name search
func (s *PartyService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// TopCreditCustomers returns customers with outstanding credit, largest first
func (s *PartyService) TopCreditCustomers(ctx context.Context, limit int) ([]entity.Customer, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.customerRepo.ListWithCredit(ctx, limit)
}

// CreateVendor creates a new vendor
func (s *PartyService) CreateVendor(ctx context.Context, input *PartyInput) (*entity.Vendor, error) {
	vendor := &entity.Vendor{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetVendor retrieves a vendor by ID
func (s *PartyService) GetVendor(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, apperror.NewNotFoundError("Vendor")
	}
	return vendor, nil
}

// UpdateVendor updates a vendor's directory fields
func (s *PartyService) UpdateVendor(ctx context.Context, id uuid.UUID, input *PartyInput) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, apperror.NewNotFoundError("Vendor")
	}

	if input.Name != "" {
		vendor.Name = input.Name
	}
	if input.Phone != nil {
		vendor.Phone = input.Phone
	}
	if input.Email != nil {
		vendor.Email = input.Email
	}
	if input.Address != nil {
		vendor.Address = input.Address
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// DeleteVendor deletes a vendor unless the business still owes it money
func (s *PartyService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if vendor == nil {
		return apperror.NewNotFoundError("Vendor")
	}
	if vendor.TotalBalance != 0 {
		return apperror.NewConflictError("Vendor has an outstanding balance")
	}
	return s.vendorRepo.Delete(ctx, id)
}

// ListVendors lists vendors with pagination and name search
func (s *PartyService) ListVendors(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Vendor], error) {
	vendors, total, err := s.vendorRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(vendors, pag), nil
}

// TopBalanceVendors returns vendors the business owes, largest first
func (s *PartyService) TopBalanceVendors(ctx context.Context, limit int) ([]entity.Vendor, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.vendorRepo.ListWithBalance(ctx, limit)
}
