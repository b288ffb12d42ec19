// Package salesdata provides the daily sales series consumed by the forecast
// pipeline along with validation of the gapless lookback contract.
package salesdata

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoObservations = errors.New("no observations")
	ErrLenMismatch    = errors.New("time slice has a different length than observations")
	ErrNonDaily       = errors.New("observations are not contiguous calendar days")
	ErrNegativeValue  = errors.New("negative sales value")
)

// Series represents one observed sales value per calendar day. Days are
// normalized to midnight UTC and must be contiguous with no gaps.
type Series struct {
	T []time.Time
	Y []float64
}

// NewDailySeries validates and copies the input slices into a Series. The time
// slice must be strictly increasing by exactly one calendar day and every value
// must be non-negative.
func NewDailySeries(t []time.Time, y []float64) (*Series, error) {
	if len(y) == 0 {
		return nil, ErrNoObservations
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time slice has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrLenMismatch,
		)
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(y))
	for i := 0; i < len(t); i++ {
		day := Day(t[i])
		if i > 0 && !day.Equal(tSeries[i-1].AddDate(0, 0, 1)) {
			return nil, fmt.Errorf("at index %d, %w", i, ErrNonDaily)
		}
		if y[i] < 0 {
			return nil, fmt.Errorf("at index %d got %f, %w", i, y[i], ErrNegativeValue)
		}
		tSeries[i] = day
		ySeries[i] = y[i]
	}

	return &Series{T: tSeries, Y: ySeries}, nil
}

// Len returns the number of observed days.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.T)
}

// StdDev returns the sample standard deviation of the observed values. This is
// the dispersion input for the forecast uncertainty band.
func (s *Series) StdDev() float64 {
	if s.Len() < 2 {
		return 0.0
	}
	return stat.StdDev(s.Y, nil)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.Y))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &Series{T: tSeries, Y: ySeries}
}

// Day truncates a timestamp to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FutureDays returns n contiguous calendar days starting the day after the
// given time.
func FutureDays(after time.Time, n int) []time.Time {
	start := Day(after)
	days := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// TrailingDays returns n contiguous calendar days ending at and including the
// given time's calendar day.
func TrailingDays(end time.Time, n int) []time.Time {
	last := Day(end)
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, last.AddDate(0, 0, -i))
	}
	return days
}
