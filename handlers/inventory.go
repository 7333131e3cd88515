package handlers

import (
	"log"
	"net/http"

	"shopfront-backend/models"
	"shopfront-backend/tasks"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryHandler struct {
	DB         *gorm.DB
	Dispatcher *tasks.Dispatcher
}

type inventoryRequest struct {
	SKU         string `json:"sku" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=255"`
	Brand       string `json:"brand"`
	RetailPrice string `json:"retail_price" binding:"required"`
	StorePrice  string `json:"store_price" binding:"required"`
	Stock       int    `json:"stock" binding:"gte=0"`
	IsActive    *bool  `json:"is_active"`
	CategoryID  string `json:"category_id" binding:"required,uuid"`
}

func (r *inventoryRequest) prices(c *gin.Context) (retail, store decimal.Decimal, ok bool) {
	retail, err := decimal.NewFromString(r.RetailPrice)
	if err != nil || retail.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid retail_price"})
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	store, err = decimal.NewFromString(r.StorePrice)
	if err != nil || store.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store_price"})
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	return retail, store, true
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	var items []models.ProductInventory
	query := h.DB.Preload("Category")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) GetInventoryItem(c *gin.Context) {
	id := c.Param("id")
	var item models.ProductInventory

	if err := h.DB.Preload("Category").Where("id = ?", id).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) CreateInventoryItem(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	retail, store, ok := req.prices(c)
	if !ok {
		return
	}

	item := models.ProductInventory{
		ID:          uuid.New(),
		SKU:         req.SKU,
		Name:        req.Name,
		Brand:       req.Brand,
		RetailPrice: retail,
		StorePrice:  store,
		Stock:       req.Stock,
		IsActive:    true,
		CategoryID:  uuid.MustParse(req.CategoryID),
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "SKU already exists"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateInventoryItem saves the item and, when the store price moved,
// enqueues a full price reconciliation so every promotion pair referencing
// this item converges to the new price.
func (h *InventoryHandler) UpdateInventoryItem(c *gin.Context) {
	id := c.Param("id")
	var item models.ProductInventory

	if err := h.DB.Where("id = ?", id).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	retail, store, ok := req.prices(c)
	if !ok {
		return
	}

	storePriceChanged := !item.StorePrice.Equal(store)

	item.SKU = req.SKU
	item.Name = req.Name
	item.Brand = req.Brand
	item.RetailPrice = retail
	item.StorePrice = store
	item.Stock = req.Stock
	item.CategoryID = uuid.MustParse(req.CategoryID)
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}

	if storePriceChanged && h.Dispatcher != nil {
		if _, err := h.Dispatcher.EnqueueRecomputeAll(); err != nil {
			log.Printf("failed to enqueue price reconciliation after store price change on %s: %v", item.ID, err)
		}
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) DeleteInventoryItem(c *gin.Context) {
	id := c.Param("id")

	// Items attached to a promotion are delete-protected so association
	// rows are never silently orphaned.
	var pairCount int64
	if err := h.DB.Model(&models.ProductsOnPromotion{}).Where("product_inventory_id = ?", id).Count(&pairCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check inventory dependencies"})
		return
	}
	if pairCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Cannot delete inventory item attached to promotions",
			"pair_count": pairCount,
		})
		return
	}

	result := h.DB.Where("id = ?", id).Delete(&models.ProductInventory{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}
