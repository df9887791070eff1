package models

// Classification labels how the current price sits against the
// product's own history, as opposed to the seller's advertised discount.
type Classification string

const (
	ClassInsufficientData Classification = "insufficient_data"
	ClassFirstTrack       Classification = "first_track"
	ClassOverpriced       Classification = "overpriced"
	ClassFakeSale         Classification = "fake_sale"
	ClassMarginalDeal     Classification = "marginal_deal"
	ClassGoodDeal         Classification = "good_deal"
	ClassGreatDeal        Classification = "great_deal"
	ClassBestPriceEver    Classification = "best_price_ever"
)

// WindowStats aggregates prices over one trailing window. Present is
// false when the window holds no samples, in which case the numeric
// fields are meaningless.
type WindowStats struct {
	Present bool    `json:"present"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// TrendSnapshot is derived on every query and never persisted.
type TrendSnapshot struct {
	CurrentPrice   float64        `json:"current_price"`
	Week           WindowStats    `json:"week"`
	Month          WindowStats    `json:"month"`
	Quarter        WindowStats    `json:"quarter"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	// Discount is the percentage the current price sits below the
	// 30-day average; negative means above average
	Discount       float64 `json:"discount"`
	IsFakeSale     bool    `json:"is_fake_sale"`
	Recommendation string  `json:"recommendation"`
}

// Savings compares the price actually paid against the 30-day average
// rather than the seller's claimed discount.
type Savings struct {
	PerUnit     float64 `json:"actual_savings_per_unit"`
	Total       float64 `json:"actual_savings_total"`
	Percentage  float64 `json:"actual_discount_percentage"`
	WorthBuying bool    `json:"is_worth_buying"`
}
