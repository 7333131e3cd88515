package tasks

import (
	"testing"
	"time"

	"shopfront-backend/models"

	"github.com/shopspring/decimal"
)

func TestNextLifecycleState(t *testing.T) {
	today := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  LifecycleDecision
	}{
		{
			name:  "pending before start",
			start: datePtr(2024, 6, 20),
			end:   datePtr(2024, 6, 30),
			want:  LifecycleDecision{Active: false, Scheduled: true},
		},
		{
			name:  "active inside window",
			start: datePtr(2024, 6, 10),
			end:   datePtr(2024, 6, 20),
			want:  LifecycleDecision{Active: true, Scheduled: true, Recompute: true},
		},
		{
			name:  "active on start day",
			start: datePtr(2024, 6, 15),
			end:   datePtr(2024, 6, 20),
			want:  LifecycleDecision{Active: true, Scheduled: true, Recompute: true},
		},
		{
			name:  "active through end day",
			start: datePtr(2024, 6, 10),
			end:   datePtr(2024, 6, 15),
			want:  LifecycleDecision{Active: true, Scheduled: true, Recompute: true},
		},
		{
			name:  "expired after end day",
			start: datePtr(2024, 6, 1),
			end:   datePtr(2024, 6, 14),
			want:  LifecycleDecision{Active: false, Scheduled: false},
		},
		{
			name:  "expiry wins over start",
			start: datePtr(2024, 6, 1),
			end:   datePtr(2024, 6, 10),
			want:  LifecycleDecision{Active: false, Scheduled: false},
		},
		{
			name: "no start date never activates",
			end:  datePtr(2024, 6, 30),
			want: LifecycleDecision{Active: false, Scheduled: true},
		},
		{
			name:  "no end date never expires",
			start: datePtr(2024, 6, 1),
			want:  LifecycleDecision{Active: true, Scheduled: true, Recompute: true},
		},
		{
			name: "no dates at all stays pending",
			want: LifecycleDecision{Active: false, Scheduled: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &models.Promotion{StartDate: tc.start, EndDate: tc.end}
			got := NextLifecycleState(p, today)
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNextLifecycleStateIgnoresTimeOfDay(t *testing.T) {
	// End date stored at midnight, sweep running late in the evening of the
	// same day: the promotion stays active through the whole calendar day.
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	sweep := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)

	p := &models.Promotion{StartDate: datePtr(2024, 6, 1), EndDate: &end}
	got := NextLifecycleState(p, sweep)
	if !got.Active || !got.Scheduled {
		t.Errorf("promotion expired a day early: %+v", got)
	}
}

func TestRunLifecycleSweepActivates(t *testing.T) {
	db := freshDB()

	cat := seedCategory(db, "Sweep Snacks")
	item := seedInventory(db, cat.ID, "90")
	promo := seedPromotion(db, "Sweep Activate", 40, false, true)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"start_date": datePtr(2024, 6, 1),
		"end_date":   datePtr(2024, 6, 30),
	})
	seedPair(db, promo.ID, item.ID, "0", false)

	stats, err := RunLifecycleSweep(db, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 1 || stats.Activated != 1 || stats.Failed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	var got models.Promotion
	db.Where("id = ?", promo.ID).First(&got)
	if !got.IsActive || !got.IsSchedule {
		t.Errorf("expected active+scheduled, got active=%v schedule=%v", got.IsActive, got.IsSchedule)
	}

	// Activation recomputes prices for the promotion.
	var pair models.ProductsOnPromotion
	db.Where("promotion_id = ?", promo.ID).First(&pair)
	if !pair.PromotionPrice.Equal(decimal.NewFromInt(54)) {
		t.Errorf("expected price 54 after activation sweep, got %s", pair.PromotionPrice)
	}
}

func TestRunLifecycleSweepKeepsPending(t *testing.T) {
	db := freshDB()

	promo := seedPromotion(db, "Sweep Pending", 10, false, true)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"start_date": datePtr(2024, 7, 1),
		"end_date":   datePtr(2024, 7, 31),
	})

	stats, err := RunLifecycleSweep(db, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Activated != 0 || stats.Expired != 0 {
		t.Errorf("pending promotion changed state: %+v", stats)
	}

	var got models.Promotion
	db.Where("id = ?", promo.ID).First(&got)
	if got.IsActive || !got.IsSchedule {
		t.Errorf("expected inactive+scheduled, got active=%v schedule=%v", got.IsActive, got.IsSchedule)
	}
}

func TestRunLifecycleSweepExpires(t *testing.T) {
	db := freshDB()

	promo := seedPromotion(db, "Sweep Expire", 10, true, true)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"start_date": datePtr(2024, 5, 1),
		"end_date":   datePtr(2024, 5, 31),
	})

	stats, err := RunLifecycleSweep(db, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Expired != 1 {
		t.Errorf("expected 1 expired, got %+v", stats)
	}

	var got models.Promotion
	db.Where("id = ?", promo.ID).First(&got)
	if got.IsActive || got.IsSchedule {
		t.Errorf("expected terminal inactive+unscheduled, got active=%v schedule=%v", got.IsActive, got.IsSchedule)
	}

	// A later sweep must not pick the promotion up again.
	stats, err = RunLifecycleSweep(db, time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 0 {
		t.Errorf("expired promotion still under scheduler management: %+v", stats)
	}
}

func TestRunLifecycleSweepSkipsUnscheduled(t *testing.T) {
	db := freshDB()

	promo := seedPromotion(db, "Manual Promotion", 10, true, false)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"start_date": datePtr(2024, 5, 1),
		"end_date":   datePtr(2024, 5, 31),
	})

	stats, err := RunLifecycleSweep(db, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 0 {
		t.Errorf("manual promotion swept: %+v", stats)
	}

	// Manual promotions keep whatever flags the admin set.
	var got models.Promotion
	db.Where("id = ?", promo.ID).First(&got)
	if !got.IsActive {
		t.Error("manual promotion deactivated by sweep")
	}
}

func TestRunLifecycleSweepIsIdempotent(t *testing.T) {
	db := freshDB()

	cat := seedCategory(db, "Sweep Twice")
	item := seedInventory(db, cat.ID, "200")
	promo := seedPromotion(db, "Sweep Idempotent", 30, false, true)
	db.Model(&models.Promotion{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"start_date": datePtr(2024, 6, 1),
		"end_date":   datePtr(2024, 6, 30),
	})
	seedPair(db, promo.ID, item.ID, "0", false)

	day := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	if _, err := RunLifecycleSweep(db, day); err != nil {
		t.Fatal(err)
	}
	second, err := RunLifecycleSweep(db, day)
	if err != nil {
		t.Fatal(err)
	}

	// The second pass re-evaluates but changes nothing.
	if second.Activated != 0 || second.Deactivated != 0 || second.Expired != 0 {
		t.Errorf("second sweep changed state: %+v", second)
	}

	var pair models.ProductsOnPromotion
	db.Where("promotion_id = ?", promo.ID).First(&pair)
	if !pair.PromotionPrice.Equal(decimal.NewFromInt(140)) {
		t.Errorf("expected stable price 140, got %s", pair.PromotionPrice)
	}
}
