package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReductionOutOfRange = errors.New("promotion reduction must be between 0 and 100")
	ErrInvalidDateRange    = errors.New("promotion start date cannot be after the promotion end date")
)

// Promotion is a percentage discount campaign over a set of inventory items.
// When IsSchedule is set, the lifecycle sweep manages IsActive from the
// start/end dates; otherwise the flag is toggled manually.
type Promotion struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string         `gorm:"uniqueIndex;not null" json:"name"`
	Description     string         `json:"description"`
	Reduction       int            `gorm:"not null;default:0" json:"reduction"` // percentage, 0-100
	IsActive        bool           `gorm:"default:false" json:"is_active"`
	IsSchedule      bool           `gorm:"default:false" json:"is_schedule"`
	StartDate       *time.Time     `json:"start_date"`
	EndDate         *time.Time     `json:"end_date"`
	PromotionTypeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"promotion_type_id"`
	PromotionType   PromotionType  `gorm:"foreignKey:PromotionTypeID;constraint:OnDelete:RESTRICT" json:"promotion_type,omitempty"`
	CouponID        *uuid.UUID     `gorm:"type:uuid;index" json:"coupon_id,omitempty"`
	Coupon          *Coupon        `gorm:"foreignKey:CouponID;constraint:OnDelete:RESTRICT" json:"coupon,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Products []ProductsOnPromotion `gorm:"foreignKey:PromotionID" json:"products,omitempty"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave rejects invalid promotions before anything hits the database.
func (p *Promotion) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}

func (p *Promotion) Validate() error {
	if p.Reduction < 0 || p.Reduction > 100 {
		return ErrReductionOutOfRange
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}
