package tasks

import (
	"errors"
	"fmt"

	"shopfront-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPromotionNotFound = errors.New("promotion not found")

var oneHundred = decimal.NewFromInt(100)

// RecomputeStats reports what a recomputation pass touched.
type RecomputeStats struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"` // pairs pinned by price_override
}

// PromotionPrice derives the discounted price for a single pair:
// ceil(storePrice * (100 - reduction) / 100). The whole computation stays in
// the decimal domain and rounds up, so rounding never under-charges.
func PromotionPrice(storePrice decimal.Decimal, reduction int) decimal.Decimal {
	remaining := decimal.NewFromInt(int64(100 - reduction))
	return storePrice.Mul(remaining).Div(oneHundred).Ceil()
}

// RecomputePromotionPrices recalculates promotion_price for every association
// row of one promotion, skipping rows pinned by price_override. The promotion
// row is locked FOR UPDATE so two recomputations of the same promotion cannot
// interleave, and the whole pass commits or rolls back as one transaction.
func RecomputePromotionPrices(db *gorm.DB, promotionID uuid.UUID) (RecomputeStats, error) {
	var stats RecomputeStats

	tx := db.Begin()
	if tx.Error != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var promotion models.Promotion
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", promotionID).
		First(&promotion).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, ErrPromotionNotFound
		}
		return stats, fmt.Errorf("failed to load promotion: %w", err)
	}

	var pairs []models.ProductsOnPromotion
	if err := tx.Preload("ProductInventory").
		Where("promotion_id = ?", promotion.ID).
		Find(&pairs).Error; err != nil {
		tx.Rollback()
		return stats, fmt.Errorf("failed to load products on promotion: %w", err)
	}

	for _, pair := range pairs {
		if pair.PriceOverride {
			stats.Skipped++
			continue
		}

		newPrice := PromotionPrice(pair.ProductInventory.StorePrice, promotion.Reduction)
		if err := tx.Model(&models.ProductsOnPromotion{}).
			Where("promotion_id = ? AND product_inventory_id = ?", pair.PromotionID, pair.ProductInventoryID).
			Update("promotion_price", newPrice).Error; err != nil {
			tx.Rollback()
			return RecomputeStats{}, fmt.Errorf("failed to update promotion price: %w", err)
		}
		stats.Updated++
	}

	if err := tx.Commit().Error; err != nil {
		return RecomputeStats{}, fmt.Errorf("failed to commit price recomputation: %w", err)
	}

	return stats, nil
}

// RecomputeAllPrices recalculates promotion_price for every association row
// in the system, one promotion (one transaction) at a time. A failure on one
// promotion does not undo the promotions already committed; the per-pair
// formula is idempotent, so re-running after a partial failure converges.
func RecomputeAllPrices(db *gorm.DB) (RecomputeStats, error) {
	var promotionIDs []uuid.UUID
	if err := db.Model(&models.Promotion{}).
		Order("created_at").
		Pluck("id", &promotionIDs).Error; err != nil {
		return RecomputeStats{}, fmt.Errorf("failed to list promotions: %w", err)
	}

	var total RecomputeStats
	var errs []error
	for _, id := range promotionIDs {
		stats, err := RecomputePromotionPrices(db, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("promotion %s: %w", id, err))
			continue
		}
		total.Updated += stats.Updated
		total.Skipped += stats.Skipped
	}

	return total, errors.Join(errs...)
}
