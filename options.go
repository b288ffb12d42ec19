package storecast

import (
	"time"

	"github.com/shopmetrics/storecast/feature"
	"github.com/shopmetrics/storecast/models"
)

const (
	// DefaultLookbackDays is the length of the training history window.
	DefaultLookbackDays = 90

	// DefaultHorizonDays is the fallback horizon for unrecognized timeframes.
	DefaultHorizonDays = 30

	// IntervalZscore approximates a 95% interval under a normality assumption
	// on residuals. This is a documented simplification, not a statistically
	// validated coverage guarantee.
	IntervalZscore = 1.96

	// StdDevDampening scales the raw series standard deviation into the
	// uncertainty band proxy.
	StdDevDampening = 0.2
)

// ModelFamily selects the regression family used for the forecast fit.
type ModelFamily string

const (
	ModelForest ModelFamily = "forest"
	ModelLinear ModelFamily = "linear"
)

// Options configures a Forecaster. All inputs affecting the fit are explicit
// here so identical inputs reproduce identical forecasts.
type Options struct {
	// LookbackDays is the number of trailing calendar days of history used to
	// train each forecast.
	LookbackDays int

	// Model picks the regression family. The forest captures nonlinear
	// calendar interactions and is the default.
	Model ModelFamily

	ForestOptions  *models.ForestOptions
	FeatureOptions *feature.Options

	// NowFunc returns the current time. Overridable for deterministic tests.
	NowFunc func() time.Time
}

// NewDefaultOptions returns the default forecaster options.
func NewDefaultOptions() *Options {
	return &Options{
		LookbackDays:   DefaultLookbackDays,
		Model:          ModelForest,
		ForestOptions:  models.NewDefaultForestOptions(),
		FeatureOptions: feature.NewDefaultOptions(),
		NowFunc:        time.Now,
	}
}

// Validate fills zero values with defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = DefaultLookbackDays
	}
	if o.Model == "" {
		o.Model = ModelForest
	}
	if o.Model != ModelForest && o.Model != ModelLinear {
		return nil, ErrUnknownModelFamily
	}
	if o.ForestOptions == nil {
		o.ForestOptions = models.NewDefaultForestOptions()
	}
	if o.FeatureOptions == nil {
		o.FeatureOptions = feature.NewDefaultOptions()
	}
	if o.NowFunc == nil {
		o.NowFunc = time.Now
	}
	return o, nil
}

// Horizon returns the number of future days selected by a timeframe label.
// Unrecognized labels fall back to the default 30-day horizon rather than
// failing the request.
func Horizon(timeframe string) int {
	switch timeframe {
	case "7d":
		return 7
	case "30d":
		return 30
	case "90d":
		return 90
	default:
		return DefaultHorizonDays
	}
}
