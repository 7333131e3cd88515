package handlers

import (
	"net/http"
	"testing"

	"shopfront-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupCouponRouter(db *gorm.DB) *gin.Engine {
	h := &CouponHandler{DB: db}
	r := gin.New()
	r.GET("/coupons", h.GetCoupons)
	r.GET("/coupons/:id", h.GetCoupon)
	r.POST("/coupons", h.CreateCoupon)
	r.PUT("/coupons/:id", h.UpdateCoupon)
	r.DELETE("/coupons/:id", h.DeleteCoupon)
	return r
}

func seedCoupon(db *gorm.DB, code string) models.Coupon {
	coupon := models.Coupon{
		ID:   uuid.New(),
		Name: "Test Coupon",
		Code: code,
	}
	db.Create(&coupon)
	return coupon
}

func TestCreateCoupon(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)

	w := jsonRequest(r, "POST", "/coupons", gin.H{
		"name": "Welcome Discount",
		"code": "WELCOME10",
	}, "")
	expectStatus(t, w, http.StatusCreated)

	var coupon models.Coupon
	if err := db.Where("code = ?", "WELCOME10").First(&coupon).Error; err != nil {
		t.Fatal("coupon not persisted")
	}
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)
	seedCoupon(db, "TAKEN")

	w := jsonRequest(r, "POST", "/coupons", gin.H{
		"name": "Second Try",
		"code": "TAKEN",
	}, "")
	expectStatus(t, w, http.StatusConflict)
}

func TestUpdateCouponKeepsCode(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)
	coupon := seedCoupon(db, "STABLE")

	w := jsonRequest(r, "PUT", "/coupons/"+coupon.ID.String(), gin.H{
		"name":        "Renamed Coupon",
		"description": "New description",
	}, "")
	expectStatus(t, w, http.StatusOK)

	var got models.Coupon
	db.Where("id = ?", coupon.ID).First(&got)
	if got.Name != "Renamed Coupon" {
		t.Errorf("name not updated: %q", got.Name)
	}
	if got.Code != "STABLE" {
		t.Errorf("coupon code changed to %q", got.Code)
	}
}

func TestDeleteCouponInUse(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)
	coupon := seedCoupon(db, "INUSE")

	promo := seedPromotion(db, "Coupon Sale", 10, true, false)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Update("coupon_id", coupon.ID)

	w := jsonRequest(r, "DELETE", "/coupons/"+coupon.ID.String(), nil, "")
	expectStatus(t, w, http.StatusBadRequest)

	var count int64
	db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Count(&count)
	if count != 1 {
		t.Error("referenced coupon was deleted")
	}
}

func TestDeleteCouponUnused(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)
	coupon := seedCoupon(db, "UNUSED")

	w := jsonRequest(r, "DELETE", "/coupons/"+coupon.ID.String(), nil, "")
	expectStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Count(&count)
	if count != 0 {
		t.Error("coupon still present after delete")
	}
}

func TestDeleteCouponMissing(t *testing.T) {
	db := freshDB()
	r := setupCouponRouter(db)

	w := jsonRequest(r, "DELETE", "/coupons/"+uuid.New().String(), nil, "")
	expectStatus(t, w, http.StatusNotFound)
}
