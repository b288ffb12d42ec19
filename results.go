package storecast

import (
	"github.com/shopmetrics/storecast/salesdata"
)

// DateLayout is the wire format for forecast dates.
const DateLayout = "2006-01-02"

// Point is one forecasted day. The lower bound is clamped at zero; the upper
// bound is symmetric around the prediction before clamping.
type Point struct {
	Date           string  `json:"date"`
	PredictedSales float64 `json:"predicted_sales"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
}

// Summary aggregates a forecast horizon. Recomputed on every call, never
// cached.
type Summary struct {
	TotalPredictedSales float64 `json:"total_predicted_sales"`
	AverageDailySales   float64 `json:"average_daily_sales"`
	MinimumDailySales   float64 `json:"minimum_daily_sales"`
	MaximumDailySales   float64 `json:"maximum_daily_sales"`
	Timeframe           string  `json:"timeframe"`
}

// Result is the full forecast response for one business.
type Result struct {
	BusinessID int64   `json:"business_id"`
	Forecast   []Point `json:"forecast"`
	Summary    Summary `json:"summary"`

	// History is the training series behind the forecast, retained for report
	// rendering. Not part of the wire response.
	History *salesdata.Series `json:"-"`
}
