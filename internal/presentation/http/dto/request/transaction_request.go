package request

// CreateExpenseRequest records a business expense
type CreateExpenseRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=CASH BANK CARD CHEQUE"`
	AccountID     *string `json:"account_id" binding:"omitempty,uuid"`
	Description   string  `json:"description"`
	Date          string  `json:"date"` // YYYY-MM-DD, defaults to today
}

// CreateTransferRequest moves money between two accounts
type CreateTransferRequest struct {
	AccountID            string  `json:"account_id" binding:"required,uuid"`
	DestinationAccountID string  `json:"destination_account_id" binding:"required,uuid"`
	Amount               float64 `json:"amount" binding:"required,gt=0"`
	Description          string  `json:"description"`
	Date                 string  `json:"date"`
}

// PurchaseItemRequest is one received line of a purchase
type PurchaseItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" binding:"required,gt=0"`
}

// CreatePurchaseRequest records goods received from a vendor
type CreatePurchaseRequest struct {
	VendorID      string                `json:"vendor_id" binding:"required,uuid"`
	PaymentMethod string                `json:"payment_method" binding:"required,oneof=CASH BANK CARD CREDIT CHEQUE"`
	PaidAmount    float64               `json:"paid_amount"`
	Items         []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	Date          string                `json:"date"`
}

// CreditPaymentRequest settles part of a party's outstanding balance
type CreditPaymentRequest struct {
	CustomerID    *string `json:"customer_id" binding:"omitempty,uuid"`
	VendorID      *string `json:"vendor_id" binding:"omitempty,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=CASH BANK CARD CHEQUE"`
	Date          string  `json:"date"`
}

// LoanRequest records money lent out to a customer
type LoanRequest struct {
	CustomerID    string  `json:"customer_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=CASH BANK"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
}
