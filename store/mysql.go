package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/goccy/go-json"
	"github.com/shopmetrics/storecast/salesdata"
)

// Open connects to MySQL/MariaDB accepting either a native driver DSN or a
// mysql:///mariadb:// URL.
func Open(dsn string) (*sql.DB, error) {
	mysqlDSN, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// NormalizeDSN converts mysql:// or mariadb:// URLs into the driver DSN
// format. Native DSNs pass through unchanged.
func NormalizeDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mysql://") && !strings.HasPrefix(dsn, "mariadb://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || dbName == "" {
		return "", errors.New("incomplete dsn, need user, host, and database")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, pass, u.Host, dbName), nil
}

// MySQLDirectory is the MySQL-backed business directory.
type MySQLDirectory struct {
	db *sql.DB
}

func NewMySQLDirectory(db *sql.DB) *MySQLDirectory {
	return &MySQLDirectory{db: db}
}

func (d *MySQLDirectory) Find(ctx context.Context, id int64) (*Business, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, platform_type, platform_url, platform_token, platform_details, created_at
		FROM businesses
		WHERE id = ?`, id)
	return scanBusiness(row)
}

func (d *MySQLDirectory) List(ctx context.Context, ownerID int64) ([]*Business, error) {
	query := `
		SELECT id, owner_id, name, platform_type, platform_url, platform_token, platform_details, created_at
		FROM businesses`
	args := []any{}
	if ownerID != 0 {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var res []*Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (d *MySQLDirectory) Save(ctx context.Context, b *Business) error {
	if err := b.Valid(); err != nil {
		return err
	}

	details, err := json.Marshal(b.PlatformDetails)
	if err != nil {
		return fmt.Errorf("encode platform details: %w", err)
	}

	if b.ID == 0 {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
		res, err := d.db.ExecContext(ctx, `
			INSERT INTO businesses (owner_id, name, platform_type, platform_url, platform_token, platform_details, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.OwnerID, b.Name, b.PlatformType, b.PlatformURL, b.PlatformToken, string(details), b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert business: %w", err)
		}
		b.ID, err = res.LastInsertId()
		return err
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE businesses
		SET name = ?, platform_type = ?, platform_url = ?, platform_token = ?, platform_details = ?
		WHERE id = ?`,
		b.Name, b.PlatformType, b.PlatformURL, b.PlatformToken, string(details), b.ID)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *MySQLDirectory) Delete(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*Business, error) {
	var b Business
	var details sql.NullString
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.PlatformType, &b.PlatformURL, &b.PlatformToken, &details, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan business: %w", err)
	}
	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &b.PlatformDetails); err != nil {
			return nil, fmt.Errorf("decode platform details: %w", err)
		}
	}
	return &b, nil
}

// MySQLSalesHistory aggregates the orders table into a gapless daily series.
// Days without orders contribute a zero observation so the lookback contract
// holds.
type MySQLSalesHistory struct {
	db *sql.DB
}

func NewMySQLSalesHistory(db *sql.DB) *MySQLSalesHistory {
	return &MySQLSalesHistory{db: db}
}

func (h *MySQLSalesHistory) DailySales(ctx context.Context, businessID int64, days int, end time.Time) (*salesdata.Series, error) {
	window := salesdata.TrailingDays(end, days)
	const layout = "2006-01-02"

	rows, err := h.db.QueryContext(ctx, `
		SELECT DATE(created_at) AS day, COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE business_id = ?
		  AND created_at >= ?
		  AND created_at < ?
		GROUP BY day
		ORDER BY day`,
		businessID,
		window[0].Format(layout),
		window[len(window)-1].AddDate(0, 0, 1).Format(layout))
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]float64, days)
	for rows.Next() {
		var day string
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		byDay[day] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	y := make([]float64, len(window))
	for i, day := range window {
		y[i] = byDay[day.Format(layout)]
	}
	return salesdata.NewDailySeries(window, y)
}
