package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// DaySession is the daily cash float for one branch: one row per
// (branch, calendar date). Closed sessions are immutable history.
type DaySession struct {
	ID             uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	BranchID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_branch_day" json:"branch_id"`
	Date           time.Time             `gorm:"type:date;not null;uniqueIndex:idx_branch_day" json:"date"`
	OpeningBalance int64                 `gorm:"default:0" json:"-"` // cents
	ActualClosing  *int64                `json:"-"`                  // cents, set on close only
	Status         enum.DaySessionStatus `gorm:"size:20;not null;default:OPEN" json:"status"`
	OpenedBy       *uuid.UUID            `gorm:"type:uuid" json:"opened_by,omitempty"`
	ClosedBy       *uuid.UUID            `gorm:"type:uuid" json:"closed_by,omitempty"`
	ClosedAt       *time.Time            `json:"closed_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// MarshalJSON converts cent fields to decimal for API responses
func (d DaySession) MarshalJSON() ([]byte, error) {
	type Alias DaySession
	out := &struct {
		Alias
		OpeningBalance float64  `json:"opening_balance"`
		ActualClosing  *float64 `json:"actual_closing,omitempty"`
	}{
		Alias:          Alias(d),
		OpeningBalance: float64(d.OpeningBalance) / 100,
	}
	if d.ActualClosing != nil {
		v := float64(*d.ActualClosing) / 100
		out.ActualClosing = &v
	}
	return json.Marshal(out)
}

// BeforeCreate generates a UUID before creating a new day session
func (d *DaySession) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DaySession model
func (DaySession) TableName() string {
	return "day_sessions"
}
