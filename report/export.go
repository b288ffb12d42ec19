// Package report exports forecast results as JSON, CSV, or an HTML chart.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopmetrics/storecast"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

var ErrUnknownFormat = errors.New("unknown report format")

var csvHeader = []string{"date", "predicted_sales", "lower_bound", "upper_bound"}

// WriteJSON writes the result in the wire JSON shape.
func WriteJSON(w io.Writer, res *storecast.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per forecasted day.
func WriteCSV(w io.Writer, res *storecast.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range res.Forecast {
		row := []string{
			p.Date,
			strconv.FormatFloat(p.PredictedSales, 'f', 2, 64),
			strconv.FormatFloat(p.LowerBound, 'f', 2, 64),
			strconv.FormatFloat(p.UpperBound, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export renders the result into the directory using the requested format and
// returns the written file path.
func Export(dir, format string, res *storecast.Result) (string, error) {
	name := fmt.Sprintf("report_%d_%s.%s", res.BusinessID, uuid.NewString()[:8], format)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		err = WriteJSON(file, res)
	case FormatCSV:
		err = WriteCSV(file, res)
	case FormatHTML:
		err = WriteHTML(file, res)
	default:
		err = fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
