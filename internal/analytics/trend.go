// Package analytics classifies a product's current price against its
// own recorded history. A "fake sale" is an advertised discount that is
// not a real reduction relative to the recent average: the seller
// inflates the price, then "discounts" it back to where it always was.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/pricesniper/backend/internal/models"
)

// Config holds the window sizes and classification breakpoints. The
// zero value is not usable; call DefaultConfig.
type Config struct {
	WeekWindow    time.Duration
	MonthWindow   time.Duration
	QuarterWindow time.Duration

	// Breakpoints on the discount percentage, lower-bound inclusive
	FakeSaleBelow float64 // delta in [0, FakeSaleBelow) = fake sale
	MarginalBelow float64 // delta in [FakeSaleBelow, MarginalBelow) = marginal
	GoodBelow     float64 // delta in [MarginalBelow, GoodBelow) = good
	// delta >= GoodBelow = great (or best price ever)

	// OverpricedScale divides |delta| when scoring overpriced confidence
	OverpricedScale float64
}

func DefaultConfig() Config {
	return Config{
		WeekWindow:      7 * 24 * time.Hour,
		MonthWindow:     30 * 24 * time.Hour,
		QuarterWindow:   90 * 24 * time.Hour,
		FakeSaleBelow:   5,
		MarginalBelow:   10,
		GoodBelow:       20,
		OverpricedScale: 20,
	}
}

// Analyzer computes trend snapshots. It holds no mutable state and is
// safe for concurrent use.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Compute derives a TrendSnapshot from the product's price history,
// ordered ascending by capture time. It is deterministic: identical
// inputs always yield identical snapshots.
func (a *Analyzer) Compute(history []models.PricePoint, currentPrice float64, now time.Time) models.TrendSnapshot {
	snap := models.TrendSnapshot{
		CurrentPrice: currentPrice,
		Week:         windowStats(history, now.Add(-a.cfg.WeekWindow)),
		Month:        windowStats(history, now.Add(-a.cfg.MonthWindow)),
		Quarter:      windowStats(history, now.Add(-a.cfg.QuarterWindow)),
	}

	if !snap.Month.Present {
		snap.Classification = models.ClassInsufficientData
		snap.Recommendation = "Insufficient data"
		return snap
	}

	// A single observation can't support a trend judgment yet
	if snap.Month.Count == 1 {
		snap.Classification = models.ClassFirstTrack
		snap.Recommendation = "First track! We're building history."
		return snap
	}

	avg30 := snap.Month.Average
	delta := (avg30 - currentPrice) / avg30 * 100
	snap.Discount = delta

	switch {
	case delta < 0:
		snap.Classification = models.ClassOverpriced
		snap.Confidence = math.Min(math.Abs(delta)/a.cfg.OverpricedScale, 1.0)
		snap.IsFakeSale = true
		snap.Recommendation = fmt.Sprintf("OVERPRICED! %.1f%% above 30-day average.", math.Abs(delta))
	case delta < a.cfg.FakeSaleBelow:
		snap.Classification = models.ClassFakeSale
		snap.Confidence = 0.8
		snap.IsFakeSale = true
		snap.Recommendation = fmt.Sprintf("FAKE SALE! Only %.1f%% below average.", delta)
	case delta < a.cfg.MarginalBelow:
		snap.Classification = models.ClassMarginalDeal
		snap.Confidence = 0.3
		snap.Recommendation = fmt.Sprintf("Okay deal. %.1f%% below average. Could wait for better.", delta)
	case delta < a.cfg.GoodBelow:
		snap.Classification = models.ClassGoodDeal
		snap.Recommendation = fmt.Sprintf("GOOD DEAL! %.1f%% below 30-day average.", delta)
	default:
		if snap.Quarter.Present && currentPrice <= snap.Quarter.Min {
			snap.Classification = models.ClassBestPriceEver
			snap.Recommendation = fmt.Sprintf("BEST PRICE EVER! %.1f%% below average. Buy now.", delta)
		} else {
			snap.Classification = models.ClassGreatDeal
			snap.Recommendation = fmt.Sprintf("GREAT DEAL! %.1f%% below average.", delta)
		}
	}

	return snap
}

// Savings reports what a purchase at currentPrice actually saves
// against the 30-day average.
func Savings(currentPrice, avgPrice float64, quantity int) models.Savings {
	if quantity < 1 {
		quantity = 1
	}
	perUnit := avgPrice - currentPrice
	pct := perUnit / avgPrice * 100
	return models.Savings{
		PerUnit:     round2(perUnit),
		Total:       round2(perUnit * float64(quantity)),
		Percentage:  round2(pct),
		WorthBuying: pct > 10,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// windowStats aggregates points captured at or after the cutoff
func windowStats(history []models.PricePoint, cutoff time.Time) models.WindowStats {
	var stats models.WindowStats
	for _, p := range history {
		if p.CapturedAt.Before(cutoff) {
			continue
		}
		if !stats.Present {
			stats.Present = true
			stats.Min = p.Price
			stats.Max = p.Price
		}
		if p.Price < stats.Min {
			stats.Min = p.Price
		}
		if p.Price > stats.Max {
			stats.Max = p.Price
		}
		stats.Average += p.Price
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average /= float64(stats.Count)
	}
	return stats
}
