package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/request"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/response"
	"github.com/dukapos/dukapos-api/pkg/pagination"
)

// TransactionHandler handles back-office ledger HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) branch(c *gin.Context) (uuid.UUID, bool) {
	branchID := GetBranchID(c)
	if branchID == nil {
		response.BadRequest(c, "Operator is not assigned to a branch")
		return uuid.Nil, false
	}
	return *branchID, true
}

// CreateExpense records a business expense
func (h *TransactionHandler) CreateExpense(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	var req request.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date")
		return
	}
	accountID, err := parseUUIDPtr(req.AccountID)
	if err != nil {
		response.BadRequest(c, "Invalid account ID")
		return
	}

	tx, err := h.transactionService.CreateExpense(c.Request.Context(), &service.ExpenseInput{
		BranchID:      branchID,
		Amount:        toCents(req.Amount),
		PaymentMethod: enum.PaymentMethod(req.PaymentMethod),
		AccountID:     accountID,
		Description:   req.Description,
		Date:          date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense recorded successfully", tx)
}

// CreateTransfer moves money between two accounts
func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	var req request.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		response.BadRequest(c, "Invalid account ID")
		return
	}
	destinationID, err := uuid.Parse(req.DestinationAccountID)
	if err != nil {
		response.BadRequest(c, "Invalid destination account ID")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date")
		return
	}

	tx, err := h.transactionService.CreateTransfer(c.Request.Context(), &service.TransferInput{
		BranchID:             branchID,
		AccountID:            accountID,
		DestinationAccountID: destinationID,
		Amount:               toCents(req.Amount),
		Description:          req.Description,
		Date:                 date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transfer recorded successfully", tx)
}

// CreatePurchase records goods received from a vendor
func (h *TransactionHandler) CreatePurchase(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	var req request.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		response.BadRequest(c, "Invalid vendor ID")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date")
		return
	}

	items := make([]service.PurchaseItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product ID in items")
			return
		}
		items = append(items, service.PurchaseItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitCost:  toCents(item.UnitCost),
		})
	}

	tx, err := h.transactionService.CreatePurchase(c.Request.Context(), &service.PurchaseInput{
		BranchID:      branchID,
		VendorID:      vendorID,
		PaymentMethod: enum.PaymentMethod(req.PaymentMethod),
		PaidAmount:    toCents(req.PaidAmount),
		Items:         items,
		Date:          date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase recorded successfully", tx)
}

// CreateCreditPayment settles part of a party's outstanding balance
func (h *TransactionHandler) CreateCreditPayment(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	var req request.CreditPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	customerID, err := parseUUIDPtr(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}
	vendorID, err := parseUUIDPtr(req.VendorID)
	if err != nil {
		response.BadRequest(c, "Invalid vendor ID")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date")
		return
	}

	tx, err := h.transactionService.RecordCreditPayment(c.Request.Context(), &service.CreditPaymentInput{
		BranchID:      branchID,
		CustomerID:    customerID,
		VendorID:      vendorID,
		Amount:        toCents(req.Amount),
		PaymentMethod: enum.PaymentMethod(req.PaymentMethod),
		Date:          date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Credit payment recorded successfully", tx)
}

// CreateLoan records money lent out to a customer
func (h *TransactionHandler) CreateLoan(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	var req request.LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date")
		return
	}

	tx, err := h.transactionService.RecordLoanGiven(c.Request.Context(), &service.LoanInput{
		BranchID:      branchID,
		CustomerID:    customerID,
		Amount:        toCents(req.Amount),
		PaymentMethod: enum.PaymentMethod(req.PaymentMethod),
		Description:   req.Description,
		Date:          date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Loan recorded successfully", tx)
}

// Get retrieves a transaction with its items and re-derived totals
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	detail, err := h.transactionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", detail)
}

// List lists transactions with filtering
func (h *TransactionHandler) List(c *gin.Context) {
	branchID, ok := h.branch(c)
	if !ok {
		return
	}

	params := pagination.DefaultPagination()
	if err := c.ShouldBindQuery(params); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}
	params.Validate()

	filter := &repository.TransactionFilterParams{
		Pagination: params,
		BranchID:   &branchID,
	}
	if typeParam := c.Query("type"); typeParam != "" {
		txType := enum.TransactionType(typeParam)
		filter.Type = &txType
	}
	if statusParam := c.Query("status"); statusParam != "" {
		status := enum.TransactionStatus(statusParam)
		filter.Status = &status
	}
	if customerParam := c.Query("customer_id"); customerParam != "" {
		customerID, err := uuid.Parse(customerParam)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &customerID
	}
	if vendorParam := c.Query("vendor_id"); vendorParam != "" {
		vendorID, err := uuid.Parse(vendorParam)
		if err != nil {
			response.BadRequest(c, "Invalid vendor ID")
			return
		}
		filter.VendorID = &vendorID
	}
	if startParam := c.Query("start_date"); startParam != "" {
		start, err := parseDate(startParam)
		if err != nil {
			response.BadRequest(c, "Invalid start date")
			return
		}
		filter.StartDate = &start
	}
	if endParam := c.Query("end_date"); endParam != "" {
		end, err := parseDate(endParam)
		if err != nil {
			response.BadRequest(c, "Invalid end date")
			return
		}
		filter.EndDate = &end
	}

	result, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transactions retrieved successfully", result)
}

// Void reverses a committed transaction
func (h *TransactionHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	tx, err := h.transactionService.Void(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction voided successfully", tx)
}
