package database

import (
	"errors"
	"fmt"
	"log"
	"os"

	"shopfront-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=shopfront port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.ProductInventory{},
		&models.PromotionType{},
		&models.Coupon{},
		&models.Promotion{},
		&models.ProductsOnPromotion{},
	)
}

// CreateDefaultAdmin seeds the initial admin account if no admin exists.
func CreateDefaultAdmin(db *gorm.DB) error {
	var admin models.User
	err := db.Where("role = ?", "admin").First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("WARNING: ADMIN_EMAIL/ADMIN_PASSWORD not set - skipping default admin creation")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Administrator",
		Role:     "admin",
	}).Error
}

// SeedPromotionTypes inserts the built-in promotion types when missing.
func SeedPromotionTypes(db *gorm.DB) error {
	names := []string{"Seasonal Sale", "Clearance", "Flash Sale", "Coupon Offer"}

	for _, name := range names {
		var pt models.PromotionType
		err := db.Where("name = ?", name).First(&pt).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.PromotionType{Name: name}).Error; err != nil {
			return err
		}
	}

	return nil
}
