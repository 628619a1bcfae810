package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a buyer who may hold outstanding credit. TotalCredit is the
// authoritative running balance in cents, mutated alongside every CREDIT
// transaction and CREDIT_PAYMENT; it is never recomputed from history on read.
type Customer struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Email       *string        `gorm:"size:255" json:"email,omitempty"`
	Address     *string        `gorm:"type:text" json:"address,omitempty"`
	TotalCredit int64          `gorm:"default:0" json:"-"` // cents
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON converts the running balance to decimal for API responses
func (c Customer) MarshalJSON() ([]byte, error) {
	type Alias Customer
	return json.Marshal(&struct {
		Alias
		TotalCredit float64 `json:"total_credit"`
	}{
		Alias:       Alias(c),
		TotalCredit: float64(c.TotalCredit) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Vendor is a supplier the business may owe. TotalBalance mirrors
// Customer.TotalCredit on the payables side.
type Vendor struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Phone        *string        `gorm:"size:50" json:"phone,omitempty"`
	Email        *string        `gorm:"size:255" json:"email,omitempty"`
	Address      *string        `gorm:"type:text" json:"address,omitempty"`
	TotalBalance int64          `gorm:"default:0" json:"-"` // cents
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON converts the running balance to decimal for API responses
func (v Vendor) MarshalJSON() ([]byte, error) {
	type Alias Vendor
	return json.Marshal(&struct {
		Alias
		TotalBalance float64 `json:"total_balance"`
	}{
		Alias:        Alias(v),
		TotalBalance: float64(v.TotalBalance) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new vendor
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Vendor model
func (Vendor) TableName() string {
	return "vendors"
}
