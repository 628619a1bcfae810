package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// Transaction is the single financial record type: sales, purchases, expenses,
// credit payments, transfers and loans all share this shape. The ID is stable
// across the draft/commit lifecycle — the autosaved DRAFT and the final
// COMMITTED write share one row, distinguished only by Status. Money fields
// are cents. Invariant at commit: Amount = PaidAmount + BalanceDue.
type Transaction struct {
	ID                   uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	BranchID             uuid.UUID              `gorm:"type:uuid;not null;index" json:"branch_id"`
	Type                 enum.TransactionType   `gorm:"size:30;not null;index" json:"type"`
	Status               enum.TransactionStatus `gorm:"size:20;not null;index;default:DRAFT" json:"status"`
	PaymentMethod        enum.PaymentMethod     `gorm:"size:20" json:"payment_method"`
	Amount               int64                  `gorm:"default:0" json:"-"` // net payable, cents
	PaidAmount           int64                  `gorm:"default:0" json:"-"`
	BalanceDue           int64                  `gorm:"default:0" json:"-"`
	Discount             int64                  `gorm:"default:0" json:"-"` // line + global, cents
	CostBasis            int64                  `gorm:"default:0" json:"-"` // COGS snapshot at sale time
	AccountID            *uuid.UUID             `gorm:"type:uuid" json:"account_id,omitempty"`
	DestinationAccountID *uuid.UUID             `gorm:"type:uuid" json:"destination_account_id,omitempty"`
	CustomerID           *uuid.UUID             `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	VendorID             *uuid.UUID             `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	Description          *string                `gorm:"type:text" json:"description,omitempty"`
	ChequeNumber         *string                `gorm:"size:100" json:"cheque_number,omitempty"`
	ChequeDate           *time.Time             `json:"cheque_date,omitempty"`
	Date                 time.Time              `gorm:"not null;index" json:"date"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`

	Customer *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Vendor   *Vendor           `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Items    []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
}

// MarshalJSON converts cent fields to decimal for API responses
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Alias
		Amount     float64 `json:"amount"`
		PaidAmount float64 `json:"paid_amount"`
		BalanceDue float64 `json:"balance_due"`
		Discount   float64 `json:"discount"`
		CostBasis  float64 `json:"cost_basis"`
	}{
		Alias:      Alias(t),
		Amount:     float64(t.Amount) / 100,
		PaidAmount: float64(t.PaidAmount) / 100,
		BalanceDue: float64(t.BalanceDue) / 100,
		Discount:   float64(t.Discount) / 100,
		CostBasis:  float64(t.CostBasis) / 100,
	})
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is a snapshot of one cart line at commit time. It is a copy,
// not a live reference: later catalog edits never change committed history, and
// totals can be re-derived from these rows alone.
type TransactionItem struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity      int               `gorm:"not null" json:"quantity"`
	Price         int64             `gorm:"not null" json:"-"` // unit price, cents
	Discount      int64             `gorm:"default:0" json:"-"`
	DiscountKind  enum.DiscountKind `gorm:"size:20;default:AMOUNT" json:"discount_kind"`
	CreatedAt     time.Time         `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON converts cent fields to decimal for API responses
func (ti TransactionItem) MarshalJSON() ([]byte, error) {
	type Alias TransactionItem
	return json.Marshal(&struct {
		Alias
		Price    float64 `json:"price"`
		Discount float64 `json:"discount"`
	}{
		Alias:    Alias(ti),
		Price:    float64(ti.Price) / 100,
		Discount: float64(ti.Discount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new transaction item
func (ti *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if ti.ID == uuid.Nil {
		ti.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}
