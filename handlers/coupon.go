package handlers

import (
	"net/http"

	"shopfront-backend/models"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponHandler struct {
	DB *gorm.DB
}

func (h *CouponHandler) GetCoupons(c *gin.Context) {
	var coupons []models.Coupon
	if err := h.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id := c.Param("id")
	var coupon models.Coupon

	if err := h.DB.Where("id = ?", id).First(&coupon).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Code        string `json:"code" binding:"required,max=20"`
		Description string `json:"description" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	coupon := models.Coupon{
		ID:          uuid.New(),
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	}

	if err := h.DB.Create(&coupon).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id := c.Param("id")
	var coupon models.Coupon

	if err := h.DB.Where("id = ?", id).First(&coupon).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Coupon codes are immutable once issued
	coupon.Name = req.Name
	coupon.Description = req.Description

	if err := h.DB.Save(&coupon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
		return
	}

	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id := c.Param("id")

	// Coupons referenced by a promotion are delete-protected
	var promotionCount int64
	if err := h.DB.Model(&models.Promotion{}).Where("coupon_id = ?", id).Count(&promotionCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check coupon dependencies"})
		return
	}
	if promotionCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "Cannot delete coupon referenced by promotions",
			"promotion_count": promotionCount,
		})
		return
	}

	result := h.DB.Where("id = ?", id).Delete(&models.Coupon{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted successfully"})
}
