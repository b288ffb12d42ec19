// salesimport bulk-loads daily sales CSVs into the orders table so forecasts
// run against real transaction history instead of the synthetic provider.
//
// The CSV format is two columns with a header row: date (YYYY-MM-DD), amount.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopmetrics/storecast/store"
)

const dateLayout = "2006-01-02"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	dsn := flag.String("dsn", os.Getenv("STORECAST_DB_DSN"), "MySQL/MariaDB DSN (native or mysql:// URL)")
	file := flag.String("file", "", "path to the sales CSV")
	businessID := flag.Int64("business", 0, "business identifier to attach the sales to")
	flag.Parse()

	if *dsn == "" || *file == "" || *businessID == 0 {
		log.Fatalf("usage: salesimport --dsn ... --file sales.csv --business 1")
	}

	rows, err := readSalesCSV(*file)
	if err != nil {
		log.Fatalf("read csv: %v", err)
	}
	log.Printf("loaded %d rows from %s", len(rows), *file)

	db, err := store.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}

	bar := progressbar.Default(int64(len(rows)))
	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (business_id, created_at, total_amount)
			VALUES (?, ?, ?)`,
			*businessID, row.day.Format(dateLayout), row.amount)
		if err != nil {
			tx.Rollback()
			log.Fatalf("insert order for %s: %v", row.day.Format(dateLayout), err)
		}
		bar.Add(1)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("imported %d days of sales for business %d", len(rows), *businessID)
}

type salesRow struct {
	day    time.Time
	amount float64
}

func readSalesCSV(path string) ([]salesRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	rows := make([]salesRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("row %d: want 2 columns, got %d", i+2, len(record))
		}
		day, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		amount, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("row %d: negative amount %f", i+2, amount)
		}
		rows = append(rows, salesRow{day: day, amount: amount})
	}
	return rows, nil
}
