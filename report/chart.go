package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopmetrics/storecast"
	"github.com/shopmetrics/storecast/salesdata"
)

// WriteHTML uses the Apache Echarts library to generate an html page showing
// the training history and the forecast with its uncertainty band.
func WriteHTML(w io.Writer, res *storecast.Result) error {
	page := components.NewPage()
	page.AddCharts(lineForecast(res))
	if res.History != nil {
		page.AddCharts(lineHistory(res.History))
	}
	return page.Render(w)
}

func lineForecast(res *storecast.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("Sales Forecast (%s)", res.Summary.Timeframe),
			},
		),
	)

	dates := make([]string, 0, len(res.Forecast))
	lineDataForecast := make([]opts.LineData, 0, len(res.Forecast))
	lineDataUpper := make([]opts.LineData, 0, len(res.Forecast))
	lineDataLower := make([]opts.LineData, 0, len(res.Forecast))

	for _, p := range res.Forecast {
		dates = append(dates, p.Date)
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: p.PredictedSales})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: p.UpperBound})
		lineDataLower = append(lineDataLower, opts.LineData{Value: p.LowerBound})
	}

	line.SetXAxis(dates).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

func lineHistory(s *salesdata.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Sales History",
			},
		),
	)

	dates := make([]string, 0, s.Len())
	lineData := make([]opts.LineData, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		dates = append(dates, s.T[i].Format(storecast.DateLayout))
		lineData = append(lineData, opts.LineData{Value: s.Y[i]})
	}

	line.SetXAxis(dates).AddSeries("Observed", lineData)
	return line
}
