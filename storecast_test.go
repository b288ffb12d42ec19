package storecast

import (
	"context"
	"testing"
	"time"

	"github.com/shopmetrics/storecast/models"
	"github.com/shopmetrics/storecast/salesdata"
	"github.com/shopmetrics/storecast/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestForecaster(t *testing.T, history store.SalesHistory) (*Forecaster, int64) {
	t.Helper()

	ctx := context.Background()
	directory := store.NewMemoryDirectory()
	business := &store.Business{
		OwnerID:      1,
		Name:         "Acme Outfitters",
		PlatformType: "shopify",
		PlatformURL:  "acme.myshopify.com",
	}
	require.NoError(t, directory.Save(ctx, business))

	opt := NewDefaultOptions()
	opt.NowFunc = func() time.Time { return testNow }

	f, err := New(directory, history, opt)
	require.NoError(t, err)
	return f, business.ID
}

func TestHorizon(t *testing.T) {
	testData := map[string]struct {
		timeframe string
		expected  int
	}{
		"week":         {"7d", 7},
		"month":        {"30d", 30},
		"quarter":      {"90d", 90},
		"unrecognized": {"6mo", 30},
		"empty":        {"", 30},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Horizon(td.timeframe))
		})
	}
}

func TestForecastHorizonContract(t *testing.T) {
	ctx := context.Background()
	f, businessID := newTestForecaster(t, &store.SyntheticHistory{Seed: 42})

	testData := map[string]struct {
		timeframe string
		expDays   int
	}{
		"7d":               {"7d", 7},
		"30d":              {"30d", 30},
		"90d":              {"90d", 90},
		"fallback for 6mo": {"6mo", 30},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := f.Forecast(ctx, businessID, td.timeframe)
			require.NoError(t, err)
			require.Len(t, res.Forecast, td.expDays)

			// dates are contiguous starting at today+1
			prev, err := time.Parse(DateLayout, res.Forecast[0].Date)
			require.NoError(t, err)
			assert.Equal(t, salesdata.Day(testNow).AddDate(0, 0, 1), prev)
			for _, p := range res.Forecast[1:] {
				day, err := time.Parse(DateLayout, p.Date)
				require.NoError(t, err)
				assert.Equal(t, prev.AddDate(0, 0, 1), day)
				prev = day
			}
		})
	}
}

func TestForecastBounds(t *testing.T) {
	ctx := context.Background()
	f, businessID := newTestForecaster(t, &store.SyntheticHistory{Seed: 42})

	res, err := f.Forecast(ctx, businessID, "30d")
	require.NoError(t, err)

	for i, p := range res.Forecast {
		assert.LessOrEqual(t, p.LowerBound, p.PredictedSales, "point %d", i)
		assert.LessOrEqual(t, p.PredictedSales, p.UpperBound, "point %d", i)
		assert.GreaterOrEqual(t, p.LowerBound, 0.0, "point %d", i)
	}
}

func TestForecastLowerBoundClamped(t *testing.T) {
	ctx := context.Background()

	// tiny observed values with spread make the raw interval arithmetic go
	// negative before clamping
	end := salesdata.Day(testNow)
	history := store.NewStaticHistory()
	t90 := salesdata.TrailingDays(end, 90)
	y := make([]float64, 90)
	for i := range y {
		y[i] = float64(i % 7)
	}
	s, err := salesdata.NewDailySeries(t90, y)
	require.NoError(t, err)
	history.Put(1, s)

	f, businessID := newTestForecaster(t, history)
	res, err := f.Forecast(ctx, businessID, "7d")
	require.NoError(t, err)

	var clamped bool
	for _, p := range res.Forecast {
		assert.GreaterOrEqual(t, p.LowerBound, 0.0)
		if p.LowerBound == 0.0 {
			clamped = true
		}
	}
	assert.True(t, clamped, "expected at least one clamped lower bound")
}

func TestForecastDeterminism(t *testing.T) {
	ctx := context.Background()
	f, businessID := newTestForecaster(t, &store.SyntheticHistory{Seed: 42})

	res1, err := f.Forecast(ctx, businessID, "30d")
	require.NoError(t, err)
	res2, err := f.Forecast(ctx, businessID, "30d")
	require.NoError(t, err)

	require.Len(t, res2.Forecast, len(res1.Forecast))
	for i := range res1.Forecast {
		assert.Equal(t, res1.Forecast[i], res2.Forecast[i])
	}
	assert.Equal(t, res1.Summary, res2.Summary)
}

func TestForecastSummary(t *testing.T) {
	ctx := context.Background()
	f, businessID := newTestForecaster(t, &store.SyntheticHistory{Seed: 42})

	res, err := f.Forecast(ctx, businessID, "7d")
	require.NoError(t, err)

	var total float64
	minVal := res.Forecast[0].PredictedSales
	maxVal := res.Forecast[0].PredictedSales
	for _, p := range res.Forecast {
		total += p.PredictedSales
		if p.PredictedSales < minVal {
			minVal = p.PredictedSales
		}
		if p.PredictedSales > maxVal {
			maxVal = p.PredictedSales
		}
	}

	assert.InDelta(t, total, res.Summary.TotalPredictedSales, 1e-9)
	assert.InDelta(t, total/7.0, res.Summary.AverageDailySales, 1e-9)
	assert.Equal(t, minVal, res.Summary.MinimumDailySales)
	assert.Equal(t, maxVal, res.Summary.MaximumDailySales)
	assert.Equal(t, "7 days", res.Summary.Timeframe)
}

func TestForecastConstantSeries(t *testing.T) {
	ctx := context.Background()

	history := store.NewStaticHistory()
	history.Put(1, salesdata.SyntheticConst(90, 1000.0, salesdata.Day(testNow)))

	f, businessID := newTestForecaster(t, history)
	res, err := f.Forecast(ctx, businessID, "30d")
	require.NoError(t, err)

	// constant history means every prediction clusters at the constant with a
	// zero-width band
	for i, p := range res.Forecast {
		assert.InDelta(t, 1000.0, p.PredictedSales, 1e-9, "point %d", i)
		assert.InDelta(t, p.PredictedSales, p.LowerBound, 1e-9, "point %d", i)
		assert.InDelta(t, p.PredictedSales, p.UpperBound, 1e-9, "point %d", i)
	}
}

func TestForecastUnknownBusiness(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestForecaster(t, &store.SyntheticHistory{Seed: 42})

	res, err := f.Forecast(ctx, 9999, "30d")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, res)
}

func TestForecastDegenerateTrainingSet(t *testing.T) {
	ctx := context.Background()

	history := store.NewStaticHistory()
	history.Put(1, salesdata.SyntheticConst(1, 1000.0, salesdata.Day(testNow)))

	f, businessID := newTestForecaster(t, history)
	res, err := f.Forecast(ctx, businessID, "30d")
	assert.ErrorIs(t, err, models.ErrInsufficientTrainingData)
	assert.Nil(t, res)
}

func TestForecastUpstreamFailure(t *testing.T) {
	ctx := context.Background()

	// StaticHistory with no series behaves as a failing provider
	f, businessID := newTestForecaster(t, store.NewStaticHistory())
	res, err := f.Forecast(ctx, businessID, "30d")
	assert.ErrorIs(t, err, ErrSeriesUnavailable)
	assert.Nil(t, res)
}

func TestForecastLinearFamily(t *testing.T) {
	ctx := context.Background()
	directory := store.NewMemoryDirectory()
	require.NoError(t, directory.Save(ctx, &store.Business{Name: "acme"}))

	opt := NewDefaultOptions()
	opt.Model = ModelLinear
	opt.NowFunc = func() time.Time { return testNow }

	f, err := New(directory, &store.SyntheticHistory{Seed: 42}, opt)
	require.NoError(t, err)

	res, err := f.Forecast(ctx, 1, "7d")
	require.NoError(t, err)
	assert.Len(t, res.Forecast, 7)
}

func TestOptionsValidate(t *testing.T) {
	opt, err := (*Options)(nil).Validate()
	require.NoError(t, err)
	assert.Equal(t, DefaultLookbackDays, opt.LookbackDays)
	assert.Equal(t, ModelForest, opt.Model)

	_, err = (&Options{Model: "boosting"}).Validate()
	assert.ErrorIs(t, err, ErrUnknownModelFamily)
}
