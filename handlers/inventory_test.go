package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shopfront-backend/models"
	"shopfront-backend/tasks"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupInventoryRouter(db *gorm.DB, dispatcher *tasks.Dispatcher) *gin.Engine {
	h := &InventoryHandler{DB: db, Dispatcher: dispatcher}
	r := gin.New()
	r.GET("/inventory", h.GetInventory)
	r.GET("/inventory/:id", h.GetInventoryItem)
	r.POST("/inventory", h.CreateInventoryItem)
	r.PUT("/inventory/:id", h.UpdateInventoryItem)
	r.DELETE("/inventory/:id", h.DeleteInventoryItem)
	return r
}

func TestCreateInventoryItem(t *testing.T) {
	db := freshDB()
	r := setupInventoryRouter(db, nil)
	cat := seedCategory(db, "New Stock")

	w := jsonRequest(r, "POST", "/inventory", gin.H{
		"sku":          "SKU-NEW-1",
		"name":         "Oat Milk",
		"retail_price": "2.50",
		"store_price":  "1.99",
		"stock":        40,
		"category_id":  cat.ID.String(),
	}, "")
	expectStatus(t, w, http.StatusCreated)

	var item models.ProductInventory
	if err := db.Where("sku = ?", "SKU-NEW-1").First(&item).Error; err != nil {
		t.Fatal("inventory item not persisted")
	}
	want, _ := decimal.NewFromString("1.99")
	if !item.StorePrice.Equal(want) {
		t.Errorf("store price %s, want 1.99", item.StorePrice)
	}
}

func TestCreateInventoryItemBadPrice(t *testing.T) {
	db := freshDB()
	r := setupInventoryRouter(db, nil)
	cat := seedCategory(db, "Bad Stock")

	w := jsonRequest(r, "POST", "/inventory", gin.H{
		"sku":          "SKU-BAD-1",
		"name":         "Broken",
		"retail_price": "two pounds",
		"store_price":  "1.99",
		"category_id":  cat.ID.String(),
	}, "")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUpdateInventoryStorePriceEnqueuesRecompute(t *testing.T) {
	db := freshDB()
	store := utils.NewJobStore()
	dispatcher := tasks.NewDispatcher(db, store, 8, 1)
	dispatcher.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dispatcher.Shutdown(ctx)
	}()

	r := setupInventoryRouter(db, dispatcher)
	cat := seedCategory(db, "Reprice Stock")
	item := seedInventory(db, cat.ID, "90")
	promo := seedPromotion(db, "Reprice Sale", 40, true, false)
	db.Create(&models.ProductsOnPromotion{
		PromotionID:        promo.ID,
		ProductInventoryID: item.ID,
		PromotionPrice:     decimal.NewFromInt(54),
	})

	w := jsonRequest(r, "PUT", "/inventory/"+item.ID.String(), gin.H{
		"sku":          item.SKU,
		"name":         item.Name,
		"retail_price": "120",
		"store_price":  "120",
		"stock":        item.Stock,
		"category_id":  cat.ID.String(),
	}, "")
	expectStatus(t, w, http.StatusOK)

	// The enqueued reconciliation converges the pair to the new store price.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var pair models.ProductsOnPromotion
		db.Where("promotion_id = ?", promo.ID).First(&pair)
		if pair.PromotionPrice.Equal(decimal.NewFromInt(72)) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pair price did not converge after store price change")
}

func TestUpdateInventorySamePriceSkipsRecompute(t *testing.T) {
	db := freshDB()
	store := utils.NewJobStore()
	// Unstarted dispatcher with a full-on-first-job queue: any enqueue of
	// size > 0 would be visible in the store.
	dispatcher := tasks.NewDispatcher(db, store, 1, 1)

	r := setupInventoryRouter(db, dispatcher)
	cat := seedCategory(db, "Stable Stock")
	item := seedInventory(db, cat.ID, "90")

	w := jsonRequest(r, "PUT", "/inventory/"+item.ID.String(), gin.H{
		"sku":          item.SKU,
		"name":         "Renamed Item",
		"retail_price": "90",
		"store_price":  "90",
		"stock":        item.Stock,
		"category_id":  cat.ID.String(),
	}, "")
	expectStatus(t, w, http.StatusOK)

	if _, err := dispatcher.EnqueueSweep(); err != nil {
		t.Fatal("queue should still be empty when the store price is unchanged")
	}
}

func TestDeleteInventoryItemOnPromotion(t *testing.T) {
	db := freshDB()
	r := setupInventoryRouter(db, nil)
	cat := seedCategory(db, "Guarded Stock")
	item := seedInventory(db, cat.ID, "50")
	promo := seedPromotion(db, "Guard Sale", 10, true, false)
	db.Create(&models.ProductsOnPromotion{
		PromotionID:        promo.ID,
		ProductInventoryID: item.ID,
	})

	w := jsonRequest(r, "DELETE", "/inventory/"+item.ID.String(), nil, "")
	expectStatus(t, w, http.StatusBadRequest)

	var count int64
	db.Model(&models.ProductInventory{}).Where("id = ?", item.ID).Count(&count)
	if count != 1 {
		t.Error("promoted item was deleted")
	}
}

func TestDeleteInventoryItemUnattached(t *testing.T) {
	db := freshDB()
	r := setupInventoryRouter(db, nil)
	cat := seedCategory(db, "Free Stock")
	item := seedInventory(db, cat.ID, "50")

	w := jsonRequest(r, "DELETE", "/inventory/"+item.ID.String(), nil, "")
	expectStatus(t, w, http.StatusOK)
}

func TestGetInventoryFiltersByCategory(t *testing.T) {
	db := freshDB()
	r := setupInventoryRouter(db, nil)
	catA := seedCategory(db, "Filter A")
	catB := seedCategory(db, "Filter B")
	itemA := seedInventory(db, catA.ID, "10")
	itemB := seedInventory(db, catB.ID, "10")

	w := jsonRequest(r, "GET", "/inventory?category_id="+catA.ID.String(), nil, "")
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	if !contains(body, itemA.SKU) {
		t.Error("expected item from requested category")
	}
	if contains(body, itemB.SKU) {
		t.Error("item from other category leaked into filtered listing")
	}
}
