package handlers

import (
	"net/http"

	"shopfront-backend/models"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionTypeHandler struct {
	DB *gorm.DB
}

func (h *PromotionTypeHandler) GetPromotionTypes(c *gin.Context) {
	var types []models.PromotionType
	if err := h.DB.Order("name").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promotion types"})
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *PromotionTypeHandler) CreatePromotionType(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	promotionType := models.PromotionType{
		ID:   uuid.New(),
		Name: req.Name,
	}

	if err := h.DB.Create(&promotionType).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Promotion type already exists"})
		return
	}

	c.JSON(http.StatusCreated, promotionType)
}

func (h *PromotionTypeHandler) DeletePromotionType(c *gin.Context) {
	id := c.Param("id")

	var promotionCount int64
	if err := h.DB.Model(&models.Promotion{}).Where("promotion_type_id = ?", id).Count(&promotionCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check promotion type dependencies"})
		return
	}
	if promotionCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "Cannot delete promotion type with associated promotions",
			"promotion_count": promotionCount,
		})
		return
	}

	result := h.DB.Where("id = ?", id).Delete(&models.PromotionType{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promotion type"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion type not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promotion type deleted successfully"})
}
