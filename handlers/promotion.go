package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"shopfront-backend/models"
	"shopfront-backend/tasks"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromotionHandler struct {
	DB         *gorm.DB
	Dispatcher *tasks.Dispatcher
}

type promotionRequest struct {
	Name            string  `json:"name" binding:"required,max=100"`
	Description     string  `json:"description" binding:"max=500"`
	Reduction       *int    `json:"reduction" binding:"required"`
	IsActive        bool    `json:"is_active"`
	IsSchedule      bool    `json:"is_schedule"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	PromotionTypeID string  `json:"promotion_type_id" binding:"required,uuid"`
	CouponID        *string `json:"coupon_id" binding:"omitempty,uuid"`
}

// parseDate accepts both plain dates and RFC3339 timestamps.
func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return &parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, true
	}
	return nil, false
}

func (h *PromotionHandler) applyRequest(promotion *models.Promotion, req *promotionRequest, c *gin.Context) bool {
	startDate, ok := parseDate(req.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date format, expected YYYY-MM-DD"})
		return false
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date format, expected YYYY-MM-DD"})
		return false
	}

	promotion.Name = req.Name
	promotion.Description = req.Description
	promotion.Reduction = *req.Reduction
	promotion.IsActive = req.IsActive
	promotion.IsSchedule = req.IsSchedule
	promotion.StartDate = startDate
	promotion.EndDate = endDate
	promotion.PromotionTypeID = uuid.MustParse(req.PromotionTypeID)
	if req.CouponID != nil {
		couponID := uuid.MustParse(*req.CouponID)
		promotion.CouponID = &couponID
	} else {
		promotion.CouponID = nil
	}
	return true
}

// respondModelError maps validation failures to 400 and everything else to 500.
func respondModelError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, models.ErrReductionOutOfRange) || errors.Is(err, models.ErrInvalidDateRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// GetPromotions is the public listing: active promotions inside their date
// window only. Admin users see everything via the admin route.
func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	var promotions []models.Promotion

	// Calendar-day comparison, matching the lifecycle sweep: a promotion
	// ending today stays listed through the whole day.
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	query := h.DB.Where("is_active = ?", true).
		Where("(start_date IS NULL OR start_date <= ?) AND (end_date IS NULL OR end_date >= ?)", today, today)

	if err := query.Preload("PromotionType").Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promotions"})
		return
	}

	c.JSON(http.StatusOK, promotions)
}

// GetAllPromotions returns all promotions (active + inactive) for admin use
func (h *PromotionHandler) GetAllPromotions(c *gin.Context) {
	var promotions []models.Promotion
	if err := h.DB.Order("created_at DESC").Preload("PromotionType").Preload("Coupon").Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promotions"})
		return
	}
	c.JSON(http.StatusOK, promotions)
}

func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id := c.Param("id")
	var promotion models.Promotion

	if err := h.DB.Preload("PromotionType").Preload("Coupon").
		Preload("Products").Preload("Products.ProductInventory").
		Where("id = ?", id).First(&promotion).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
		return
	}

	c.JSON(http.StatusOK, promotion)
}

// CreatePromotion persists a new promotion, synchronously recomputes its
// prices so the caller sees correct numbers in the response, then enqueues a
// lifecycle sweep to converge global schedule state.
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var promotion models.Promotion
	if !h.applyRequest(&promotion, &req, c) {
		return
	}
	promotion.ID = uuid.New()

	if err := promotion.Validate(); err != nil {
		respondModelError(c, err, "Failed to create promotion")
		return
	}

	if err := h.DB.Create(&promotion).Error; err != nil {
		respondModelError(c, err, "Failed to create promotion")
		return
	}

	h.dispatchAfterSave(promotion.ID)

	c.JSON(http.StatusCreated, promotion)
}

// UpdatePromotion follows the same save contract as CreatePromotion.
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id := c.Param("id")
	var promotion models.Promotion

	if err := h.DB.Where("id = ?", id).First(&promotion).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
		return
	}

	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !h.applyRequest(&promotion, &req, c) {
		return
	}

	if err := promotion.Validate(); err != nil {
		respondModelError(c, err, "Failed to update promotion")
		return
	}

	if err := h.DB.Save(&promotion).Error; err != nil {
		respondModelError(c, err, "Failed to update promotion")
		return
	}

	h.dispatchAfterSave(promotion.ID)

	h.DB.Preload("Products").Preload("Products.ProductInventory").First(&promotion, promotion.ID)
	c.JSON(http.StatusOK, promotion)
}

func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	id := c.Param("id")
	var promotion models.Promotion

	if err := h.DB.Where("id = ?", id).First(&promotion).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
		return
	}

	// Association rows go with the promotion so bulk recomputation never
	// sees orphaned pairs.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotion.ID).
			Delete(&models.ProductsOnPromotion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&promotion).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promotion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted successfully"})
}

// AttachProduct adds one inventory item to a promotion. The pair's price is
// recomputed immediately unless the request pins a manual override price.
func (h *PromotionHandler) AttachProduct(c *gin.Context) {
	id := c.Param("id")
	var promotion models.Promotion

	if err := h.DB.Where("id = ?", id).First(&promotion).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
		return
	}

	var req struct {
		ProductInventoryID string  `json:"product_inventory_id" binding:"required,uuid"`
		PriceOverride      bool    `json:"price_override"`
		PromotionPrice     *string `json:"promotion_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var inventory models.ProductInventory
	if err := h.DB.Where("id = ?", req.ProductInventoryID).First(&inventory).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product inventory not found"})
		return
	}

	pair := models.ProductsOnPromotion{
		PromotionID:        promotion.ID,
		ProductInventoryID: inventory.ID,
		PriceOverride:      req.PriceOverride,
	}

	if req.PriceOverride {
		if req.PromotionPrice == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "promotion_price is required when price_override is set"})
			return
		}
		price, err := decimal.NewFromString(*req.PromotionPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion_price"})
			return
		}
		pair.PromotionPrice = price
	} else {
		pair.PromotionPrice = tasks.PromotionPrice(inventory.StorePrice, promotion.Reduction)
	}

	if err := h.DB.Create(&pair).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is already on this promotion"})
		return
	}

	c.JSON(http.StatusCreated, pair)
}

func (h *PromotionHandler) DetachProduct(c *gin.Context) {
	id := c.Param("id")
	productID := c.Param("productId")

	result := h.DB.Where("promotion_id = ? AND product_inventory_id = ?", id, productID).
		Delete(&models.ProductsOnPromotion{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detach product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product is not on this promotion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product detached from promotion"})
}

// dispatchAfterSave is the save-hook contract: recompute this promotion's
// prices before returning control to the caller, then let the async sweep
// converge scheduling state shortly after.
func (h *PromotionHandler) dispatchAfterSave(promotionID uuid.UUID) {
	if _, err := tasks.RecomputePromotionPrices(h.DB, promotionID); err != nil {
		log.Printf("failed to recompute prices for promotion %s after save: %v", promotionID, err)
	}

	if h.Dispatcher != nil {
		if _, err := h.Dispatcher.EnqueueSweep(); err != nil {
			log.Printf("failed to enqueue lifecycle sweep after saving promotion %s: %v", promotionID, err)
		}
	}
}
