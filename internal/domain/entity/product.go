package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// Product is a catalog item. Price and Cost are stored in cents; the engine
// only ever mutates Stock, everything else is catalog metadata.
type Product struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID        *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	Code              string         `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Price             int64          `gorm:"default:0" json:"-"` // cents
	Cost              int64          `gorm:"default:0" json:"-"` // cents
	Stock             int            `gorm:"default:0" json:"stock"`
	LowStockThreshold int            `gorm:"default:5" json:"low_stock_threshold"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// MarshalJSON converts cent fields to decimal for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
		Cost  float64 `json:"cost"`
	}{
		Alias: Alias(p),
		Price: float64(p.Price) / 100,
		Cost:  float64(p.Cost) / 100,
	})
}

// UnmarshalJSON converts decimal price fields back to cents, so a product
// serialized for the cache round-trips without losing its money fields
func (p *Product) UnmarshalJSON(data []byte) error {
	type Alias Product
	aux := &struct {
		*Alias
		Price float64 `json:"price"`
		Cost  float64 `json:"cost"`
	}{Alias: (*Alias)(p)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	p.Price = int64(math.Round(aux.Price * 100))
	p.Cost = int64(math.Round(aux.Cost * 100))
	return nil
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// LowStock reports whether the product is at or below its alert threshold
func (p *Product) LowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// Category groups products and carries the pricing policy used when
// snapshotting cost basis at commit time.
type Category struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Name          string             `gorm:"size:255;uniqueIndex;not null" json:"name"`
	PricingPolicy enum.PricingPolicy `gorm:"size:50;default:STANDARD" json:"pricing_policy"`
	MarginPercent float64            `gorm:"default:0" json:"margin_percent"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
