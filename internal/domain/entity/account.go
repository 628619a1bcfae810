package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// Account is a money account (drawer or bank) referenced by transfers and
// finance transactions. Its Kind decides whether transfer legs count toward
// drawer reconciliation.
type Account struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BranchID  uuid.UUID        `gorm:"type:uuid;index" json:"branch_id"`
	Name      string           `gorm:"size:255;not null" json:"name"`
	Kind      enum.AccountKind `gorm:"size:20;not null" json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
