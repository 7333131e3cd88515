package tasks

import (
	"fmt"
	"log"
	"time"

	"shopfront-backend/models"

	"gorm.io/gorm"
)

// LifecycleDecision is the outcome of evaluating one scheduled promotion
// against a calendar date.
type LifecycleDecision struct {
	Active    bool
	Scheduled bool
	Recompute bool
}

// SweepStats reports what one lifecycle sweep did.
type SweepStats struct {
	Evaluated   int `json:"evaluated"`
	Activated   int `json:"activated"`
	Deactivated int `json:"deactivated"`
	Expired     int `json:"expired"`
	Failed      int `json:"failed"`
}

// NextLifecycleState decides the next flags for a scheduled promotion.
// Comparison is by calendar day: a promotion ending on the 15th stays active
// through the whole of the 15th and expires on the 16th.
//
//   - end date passed: inactive and permanently out of scheduler management
//   - start date reached: active, prices recomputed on every sweep while the
//     window holds (not just on the activation edge)
//   - otherwise: pending, inactive, still scheduled
//
// A promotion with no start date is never auto-activated; one with no end
// date never expires.
func NextLifecycleState(p *models.Promotion, today time.Time) LifecycleDecision {
	day := dateOnly(today)

	if p.EndDate != nil && dateOnly(*p.EndDate).Before(day) {
		return LifecycleDecision{Active: false, Scheduled: false}
	}
	if p.StartDate != nil && !dateOnly(*p.StartDate).After(day) {
		return LifecycleDecision{Active: true, Scheduled: true, Recompute: true}
	}
	return LifecycleDecision{Active: false, Scheduled: true}
}

// RunLifecycleSweep evaluates every scheduled promotion against today and
// persists flag changes per promotion, each in its own transaction. One
// failing promotion is logged and skipped; the sweep carries on with the
// rest. Sweeps are idempotent: repeated runs on the same day converge to the
// same flags and the same recomputed prices.
func RunLifecycleSweep(db *gorm.DB, today time.Time) (SweepStats, error) {
	var promotions []models.Promotion
	if err := db.Where("is_schedule = ?", true).Find(&promotions).Error; err != nil {
		return SweepStats{}, fmt.Errorf("failed to list scheduled promotions: %w", err)
	}

	var stats SweepStats
	for i := range promotions {
		p := &promotions[i]
		stats.Evaluated++

		decision := NextLifecycleState(p, today)

		if err := db.Model(&models.Promotion{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"is_active":   decision.Active,
				"is_schedule": decision.Scheduled,
			}).Error; err != nil {
			log.Printf("lifecycle sweep: failed to update promotion %s: %v", p.ID, err)
			stats.Failed++
			continue
		}

		switch {
		case !decision.Scheduled:
			stats.Expired++
		case decision.Active:
			if !p.IsActive {
				stats.Activated++
			}
		default:
			if p.IsActive {
				stats.Deactivated++
			}
		}

		if decision.Recompute {
			if _, err := RecomputePromotionPrices(db, p.ID); err != nil {
				log.Printf("lifecycle sweep: failed to recompute prices for promotion %s: %v", p.ID, err)
				stats.Failed++
			}
		}
	}

	return stats, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
