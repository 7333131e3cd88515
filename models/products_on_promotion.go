package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductsOnPromotion links one promotion to one inventory item and carries
// the derived promotional price for the pair. PromotionPrice is computed by
// the pricing tasks and never set directly by API callers; PriceOverride
// pins a manually entered price so recomputation leaves it alone.
type ProductsOnPromotion struct {
	PromotionID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"promotion_id"`
	Promotion          Promotion        `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE" json:"-"`
	ProductInventoryID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"product_inventory_id"`
	ProductInventory   ProductInventory `gorm:"foreignKey:ProductInventoryID;constraint:OnDelete:RESTRICT" json:"product_inventory,omitempty"`
	PromotionPrice     decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"promotion_price"`
	PriceOverride      bool             `gorm:"default:false" json:"price_override"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Association rows are hard-deleted; detaching a product removes the pair.
func (ProductsOnPromotion) TableName() string {
	return "products_on_promotions"
}
