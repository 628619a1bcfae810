package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
)

// DashboardService aggregates the day's trading figures for the back office
type DashboardService struct {
	txRepo       repository.TransactionRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
	dayRepo      repository.DaySessionRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
	dayRepo repository.DaySessionRepository,
) *DashboardService {
	return &DashboardService{
		txRepo:       txRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		dayRepo:      dayRepo,
	}
}

// DashboardStats represents the day's trading statistics. Money figures are
// decimal (major units) for the API.
type DashboardStats struct {
	TodaySales         float64           `json:"today_sales"`
	TodayExpenses      float64           `json:"today_expenses"`
	TodayProfit        float64           `json:"today_profit"`
	SalesCount         int               `json:"sales_count"`
	CreditSales        float64           `json:"credit_sales"`
	LowStockCount      int64             `json:"low_stock_count"`
	DrawerOpen         bool              `json:"drawer_open"`
	TopCreditCustomers []entity.Customer `json:"top_credit_customers"`
	TopBalanceVendors  []entity.Vendor   `json:"top_balance_vendors"`
}

// GetDashboardStats returns today's trading statistics for a branch
func (s *DashboardService) GetDashboardStats(ctx context.Context, branchID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()

	txs, err := s.txRepo.ListForDay(ctx, branchID, now)
	if err != nil {
		return nil, err
	}

	var sales, expenses, costBasis, creditSales int64
	for _, tx := range txs {
		switch tx.Type {
		case enum.TxSale:
			sales += tx.Amount
			costBasis += tx.CostBasis
			stats.SalesCount++
			if tx.BalanceDue > 0 {
				creditSales += tx.BalanceDue
			}
		case enum.TxExpense:
			expenses += tx.Amount
		}
	}
	stats.TodaySales = float64(sales) / 100
	stats.TodayExpenses = float64(expenses) / 100
	stats.TodayProfit = float64(sales-costBasis-expenses) / 100
	stats.CreditSales = float64(creditSales) / 100

	lowStock, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = lowStock

	open, err := s.dayRepo.GetOpen(ctx, branchID, now)
	if err != nil {
		return nil, err
	}
	stats.DrawerOpen = open != nil

	topCustomers, err := s.customerRepo.ListWithCredit(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopCreditCustomers = topCustomers

	topVendors, err := s.vendorRepo.ListWithBalance(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopBalanceVendors = topVendors

	return stats, nil
}
