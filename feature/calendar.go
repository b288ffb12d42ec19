// Package feature derives cyclical calendar features from timestamps for the
// sales forecast model. Day-of-week and month are encoded as sine/cosine pairs
// so the model sees no discontinuity at period boundaries such as Sunday to
// Monday or December to January.
package feature

import (
	"math"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"gonum.org/v1/gonum/mat"
)

// Feature column labels in matrix order.
const (
	LabelDayOfWeekSin = "dow_sin"
	LabelDayOfWeekCos = "dow_cos"
	LabelDayOfMonth   = "dom"
	LabelMonthSin     = "month_sin"
	LabelMonthCos     = "month_cos"
	LabelHoliday      = "holiday"
)

// Options controls which features are generated per timestamp.
type Options struct {
	// HolidayIndicator adds a 0/1 column flagging observed US retail holidays.
	HolidayIndicator bool
}

// NewDefaultOptions returns the default feature options.
func NewDefaultOptions() *Options {
	return &Options{
		HolidayIndicator: true,
	}
}

var usHolidays = newUSCalendar()

func newUSCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// Vector is the set of calendar features derived from one timestamp. It is a
// pure function of the timestamp and holds no mutable state.
type Vector struct {
	DayOfWeekSin float64
	DayOfWeekCos float64
	DayOfMonth   float64
	MonthSin     float64
	MonthCos     float64
	Holiday      float64
}

// FromTime derives the feature vector for a timestamp. The weekday convention
// is 0=Monday through 6=Sunday and is applied identically to historical and
// future timestamps.
func FromTime(t time.Time) Vector {
	weekday := float64((int(t.Weekday()) + 6) % 7)
	month := float64(t.Month())

	v := Vector{
		DayOfWeekSin: math.Sin(2.0 * math.Pi * weekday / 7.0),
		DayOfWeekCos: math.Cos(2.0 * math.Pi * weekday / 7.0),
		DayOfMonth:   float64(t.Day()),
		MonthSin:     math.Sin(2.0 * math.Pi * month / 12.0),
		MonthCos:     math.Cos(2.0 * math.Pi * month / 12.0),
	}
	if _, observed, _ := usHolidays.IsHoliday(t); observed {
		v.Holiday = 1.0
	}
	return v
}

// Row returns the vector as a feature row honoring the option set.
func (v Vector) Row(opt *Options) []float64 {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	row := []float64{v.DayOfWeekSin, v.DayOfWeekCos, v.DayOfMonth, v.MonthSin, v.MonthCos}
	if opt.HolidayIndicator {
		row = append(row, v.Holiday)
	}
	return row
}

// Labels returns the feature column labels in the order produced by Row.
func Labels(opt *Options) []string {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	labels := []string{
		LabelDayOfWeekSin,
		LabelDayOfWeekCos,
		LabelDayOfMonth,
		LabelMonthSin,
		LabelMonthCos,
	}
	if opt.HolidayIndicator {
		labels = append(labels, LabelHoliday)
	}
	return labels
}

// Matrix builds the m x n design matrix for a slice of timestamps where m is
// the number of timestamps and n the number of generated features.
func Matrix(t []time.Time, opt *Options) *mat.Dense {
	if len(t) == 0 {
		return nil
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	n := len(Labels(opt))
	obs := make([]float64, 0, len(t)*n)
	for _, tPnt := range t {
		obs = append(obs, FromTime(tPnt).Row(opt)...)
	}
	return mat.NewDense(len(t), n, obs)
}
