package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInventory is a sellable unit. The promotion engine only reads
// StorePrice from it; everything else belongs to the catalog.
type ProductInventory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SKU         string          `gorm:"uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"not null" json:"name"`
	Brand       string          `json:"brand"`
	RetailPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"retail_price"`
	StorePrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"store_price"`
	Stock       int             `gorm:"default:0" json:"stock"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (pi *ProductInventory) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}
