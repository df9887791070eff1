package analytics

import (
	"testing"
	"time"

	"github.com/pricesniper/backend/internal/models"
)

// historyAt builds evenly spread points ending just before now, all
// inside the 30-day window
func historyAt(now time.Time, prices ...float64) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(prices))
	for i, p := range prices {
		points = append(points, models.PricePoint{
			ID:         uint(i + 1),
			ProductID:  "prod-1",
			Price:      p,
			CapturedAt: now.Add(-time.Duration(len(prices)-i) * 24 * time.Hour),
		})
	}
	return points
}

func TestComputeClassifications(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())

	tests := []struct {
		name           string
		history        []float64
		current        float64
		wantClass      models.Classification
		wantConfidence float64
		wantFake       bool
	}{
		// avg30 = 10000 in all cases below
		{"current above average is overpriced", []float64{10000, 10000, 10000}, 10500, models.ClassOverpriced, 0.25, true},
		{"within 5 percent is a fake sale", []float64{10000, 10000}, 9700, models.ClassFakeSale, 0.8, true},
		{"exactly average is a fake sale", []float64{10000, 10000}, 10000, models.ClassFakeSale, 0.8, true},
		{"5 to 10 percent is marginal", []float64{10000, 10000}, 9200, models.ClassMarginalDeal, 0.3, false},
		{"10 to 20 percent is good", []float64{10000, 10000}, 8500, models.ClassGoodDeal, 0, false},
		{"20 percent plus is great", []float64{10000, 10000, 10000}, 7900, models.ClassGreatDeal, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := historyAt(now, tt.history...)
			// A cheaper point inside the 90-day window keeps deep
			// discounts from upgrading to best price ever here
			history = append([]models.PricePoint{
				{Price: 1, CapturedAt: now.Add(-60 * 24 * time.Hour)},
			}, history...)
			snap := analyzer.Compute(history, tt.current, now)
			if snap.Classification != tt.wantClass {
				t.Errorf("Compute() classification = %s, want %s", snap.Classification, tt.wantClass)
			}
			if snap.Confidence != tt.wantConfidence {
				t.Errorf("Compute() confidence = %f, want %f", snap.Confidence, tt.wantConfidence)
			}
			if snap.IsFakeSale != tt.wantFake {
				t.Errorf("Compute() is_fake_sale = %v, want %v", snap.IsFakeSale, tt.wantFake)
			}
		})
	}
}

func TestComputeBreakpointsAreLowerBoundInclusive(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())
	history := historyAt(now, 10000, 10000) // avg30 = 10000
	// Keep min90 below every current price tested so the best-price-ever
	// upgrade can't mask the bucket boundaries
	history = append([]models.PricePoint{
		{Price: 1, CapturedAt: now.Add(-60 * 24 * time.Hour)},
	}, history...)

	tests := []struct {
		name      string
		current   float64 // chosen so delta lands exactly on a breakpoint
		wantClass models.Classification
	}{
		{"delta 0 is fake sale not overpriced", 10000, models.ClassFakeSale},
		{"delta 5 is marginal not fake sale", 9500, models.ClassMarginalDeal},
		{"delta 10 is good not marginal", 9000, models.ClassGoodDeal},
		{"delta 20 is great not good", 8000, models.ClassGreatDeal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := analyzer.Compute(history, tt.current, now)
			if snap.Classification != tt.wantClass {
				t.Errorf("Compute(current=%v) = %s, want %s", tt.current, snap.Classification, tt.wantClass)
			}
		})
	}
}

func TestComputeInsufficientData(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())

	// No history at all
	snap := analyzer.Compute(nil, 9000, now)
	if snap.Classification != models.ClassInsufficientData {
		t.Errorf("empty history classification = %s, want %s", snap.Classification, models.ClassInsufficientData)
	}
	if snap.Confidence != 0 {
		t.Errorf("empty history confidence = %f, want 0", snap.Confidence)
	}

	// Points exist but all older than 30 days
	old := []models.PricePoint{
		{Price: 10000, CapturedAt: now.Add(-40 * 24 * time.Hour)},
		{Price: 11000, CapturedAt: now.Add(-35 * 24 * time.Hour)},
	}
	snap = analyzer.Compute(old, 9000, now)
	if snap.Classification != models.ClassInsufficientData {
		t.Errorf("stale history classification = %s, want %s", snap.Classification, models.ClassInsufficientData)
	}
	if snap.Month.Present {
		t.Error("30-day window should be absent when all points are older")
	}
}

func TestComputeFirstTrack(t *testing.T) {
	// Scenario B: one point in the 30-day window, regardless of price
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())
	history := historyAt(now, 10000)

	snap := analyzer.Compute(history, 9000, now)
	if snap.Classification != models.ClassFirstTrack {
		t.Errorf("single point classification = %s, want %s", snap.Classification, models.ClassFirstTrack)
	}
	if snap.Confidence != 0 {
		t.Errorf("first track confidence = %f, want 0", snap.Confidence)
	}
	if snap.Discount != 0 {
		t.Errorf("first track discount = %f, want 0", snap.Discount)
	}
}

func TestComputeBestPriceEver(t *testing.T) {
	// Scenario A: avg30 = 10000 over 5 points, current 7500, min90 = 8000
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())

	history := historyAt(now, 10000, 10000, 10000, 10000, 10000)
	// Older point inside the 90-day window sets min90 = 8000
	history = append([]models.PricePoint{
		{Price: 8000, CapturedAt: now.Add(-60 * 24 * time.Hour)},
	}, history...)

	snap := analyzer.Compute(history, 7500, now)
	if snap.Classification != models.ClassBestPriceEver {
		t.Errorf("classification = %s, want %s", snap.Classification, models.ClassBestPriceEver)
	}
	if snap.Discount != 25 {
		t.Errorf("discount = %f, want 25", snap.Discount)
	}
	if snap.Month.Count != 5 {
		t.Errorf("30-day count = %d, want 5", snap.Month.Count)
	}

	// Same delta but a lower historical price keeps it a great deal
	history[0].Price = 7000
	snap = analyzer.Compute(history, 7500, now)
	if snap.Classification != models.ClassGreatDeal {
		t.Errorf("classification with lower min90 = %s, want %s", snap.Classification, models.ClassGreatDeal)
	}
}

func TestComputeOverpricedConfidenceScaling(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())
	history := historyAt(now, 10000, 10000) // avg30 = 10000

	// Scenario C: current 10500, delta = -5, confidence = 5/20 = 0.25
	snap := analyzer.Compute(history, 10500, now)
	if snap.Classification != models.ClassOverpriced {
		t.Errorf("classification = %s, want %s", snap.Classification, models.ClassOverpriced)
	}
	if snap.Confidence != 0.25 {
		t.Errorf("confidence = %f, want 0.25", snap.Confidence)
	}
	if snap.Discount != -5 {
		t.Errorf("discount = %f, want -5", snap.Discount)
	}

	// Confidence caps at 1.0 no matter how far above average
	snap = analyzer.Compute(history, 20000, now)
	if snap.Confidence != 1.0 {
		t.Errorf("confidence for extreme premium = %f, want 1.0", snap.Confidence)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewAnalyzer(DefaultConfig())
	history := historyAt(now, 9800, 10100, 10050, 9950)

	first := analyzer.Compute(history, 9400, now)
	for i := 0; i < 10; i++ {
		if got := analyzer.Compute(history, 9400, now); got != first {
			t.Fatalf("Compute() not deterministic: run %d differs", i)
		}
	}
}

func TestWindowStats(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	points := []models.PricePoint{
		{Price: 100, CapturedAt: now.Add(-10 * 24 * time.Hour)},
		{Price: 200, CapturedAt: now.Add(-5 * 24 * time.Hour)},
		{Price: 50, CapturedAt: now.Add(-40 * 24 * time.Hour)}, // outside 30d
	}

	stats := windowStats(points, now.Add(-30*24*time.Hour))
	if !stats.Present {
		t.Fatal("expected stats to be present")
	}
	if stats.Count != 2 {
		t.Errorf("count = %d, want 2", stats.Count)
	}
	if stats.Average != 150 {
		t.Errorf("average = %f, want 150", stats.Average)
	}
	if stats.Min != 100 || stats.Max != 200 {
		t.Errorf("min/max = %f/%f, want 100/200", stats.Min, stats.Max)
	}

	// Cutoff excluding everything yields an absent window
	stats = windowStats(points, now)
	if stats.Present {
		t.Error("expected absent window when no points qualify")
	}
}

func TestSavings(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		avg       float64
		quantity  int
		wantTotal float64
		wantPct   float64
		wantWorth bool
	}{
		{"real discount", 7500, 10000, 1, 2500, 25, true},
		{"two units", 7500, 10000, 2, 5000, 25, true},
		{"thin discount not worth it", 9500, 10000, 1, 500, 5, false},
		{"premium is negative savings", 10500, 10000, 1, -500, -5, false},
		{"zero quantity treated as one", 9000, 10000, 0, 1000, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Savings(tt.current, tt.avg, tt.quantity)
			if got.Total != tt.wantTotal {
				t.Errorf("Savings() total = %f, want %f", got.Total, tt.wantTotal)
			}
			if got.Percentage != tt.wantPct {
				t.Errorf("Savings() percentage = %f, want %f", got.Percentage, tt.wantPct)
			}
			if got.WorthBuying != tt.wantWorth {
				t.Errorf("Savings() worth_buying = %v, want %v", got.WorthBuying, tt.wantWorth)
			}
		})
	}
}

func TestSnapshotCacheInvalidatesOnNewPoint(t *testing.T) {
	cache := NewSnapshotCache()
	snap := models.TrendSnapshot{Classification: models.ClassGoodDeal}

	cache.Add("prod-1", 10, snap)
	if got, ok := cache.Get("prod-1", 10); !ok || got.Classification != models.ClassGoodDeal {
		t.Error("expected cache hit for same latest point")
	}
	if _, ok := cache.Get("prod-1", 11); ok {
		t.Error("expected cache miss after a new point changes the key")
	}
	if _, ok := cache.Get("prod-2", 10); ok {
		t.Error("expected cache miss for different product")
	}
}
