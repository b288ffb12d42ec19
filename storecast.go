// Package storecast generates daily sales forecasts for managed storefronts.
// Each forecast is a stateless pipeline: fetch the trailing sales history,
// derive calendar features, fit a regression model, predict the requested
// horizon, and wrap predictions with an uncertainty band and summary.
package storecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopmetrics/storecast/feature"
	"github.com/shopmetrics/storecast/models"
	"github.com/shopmetrics/storecast/salesdata"
	"github.com/shopmetrics/storecast/store"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownModelFamily = errors.New("unknown model family")

	// ErrSeriesUnavailable wraps sales history provider failures.
	ErrSeriesUnavailable = errors.New("sales history unavailable")
)

// Forecaster runs the sales forecast pipeline. All collaborators are explicit
// dependencies; no state is shared across invocations, so a single Forecaster
// may serve concurrent requests.
type Forecaster struct {
	opt *Options

	directory store.Directory
	history   store.SalesHistory
}

// New creates a Forecaster backed by the given business directory and sales
// history source. If no options are provided a default is used.
func New(directory store.Directory, history store.SalesHistory, opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forecaster{
		opt:       opt,
		directory: directory,
		history:   history,
	}, nil
}

func (f *Forecaster) newModel() (models.Model, error) {
	switch f.opt.Model {
	case ModelForest:
		return models.NewForestRegression(f.opt.ForestOptions)
	case ModelLinear:
		return models.NewOLSRegression(nil)
	}
	return nil, ErrUnknownModelFamily
}

// Forecast predicts daily sales for the horizon selected by the timeframe
// label. The whole forecast fails atomically; no partial results are
// returned. Unknown businesses surface store.ErrNotFound and degenerate
// training sets surface models.ErrInsufficientTrainingData.
func (f *Forecaster) Forecast(ctx context.Context, businessID int64, timeframe string) (*Result, error) {
	business, err := f.directory.Find(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("lookup business %d, %w", businessID, err)
	}

	now := f.opt.NowFunc()
	series, err := f.history.DailySales(ctx, business.ID, f.opt.LookbackDays, now)
	if err != nil {
		return nil, fmt.Errorf("%w for business %d: %v", ErrSeriesUnavailable, businessID, err)
	}

	model, err := f.newModel()
	if err != nil {
		return nil, err
	}

	x := feature.Matrix(series.T, f.opt.FeatureOptions)
	y := mat.NewDense(series.Len(), 1, series.Y)
	if err := model.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fit forecast model for business %d, %w", businessID, err)
	}

	horizon := Horizon(timeframe)
	future := salesdata.FutureDays(now, horizon)
	predicted, err := model.Predict(feature.Matrix(future, f.opt.FeatureOptions))
	if err != nil {
		return nil, fmt.Errorf("predict horizon for business %d, %w", businessID, err)
	}

	// band width proxies forecast uncertainty with the dampened standard
	// deviation of the raw training series
	band := IntervalZscore * StdDevDampening * series.StdDev()

	points := make([]Point, 0, len(predicted))
	for i, val := range predicted {
		points = append(points, Point{
			Date:           future[i].Format(DateLayout),
			PredictedSales: val,
			LowerBound:     math.Max(0.0, val-band),
			UpperBound:     val + band,
		})
	}

	return &Result{
		BusinessID: business.ID,
		Forecast:   points,
		Summary:    summarize(predicted, horizon),
		History:    series,
	}, nil
}

func summarize(predicted []float64, horizon int) Summary {
	total := floats.Sum(predicted)
	return Summary{
		TotalPredictedSales: total,
		AverageDailySales:   total / float64(len(predicted)),
		MinimumDailySales:   floats.Min(predicted),
		MaximumDailySales:   floats.Max(predicted),
		Timeframe:           fmt.Sprintf("%d days", horizon),
	}
}
