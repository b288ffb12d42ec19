// Package store holds the business directory and sales history access used by
// the forecast pipeline and the HTTP API. Entities are plain records behind
// small repository interfaces so the pipeline can be wired with a database or
// an in-memory implementation interchangeably.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopmetrics/storecast/salesdata"
)

var (
	ErrNotFound = errors.New("business not found")
	ErrNoName   = errors.New("business name is required")
)

// Business is one managed storefront. PlatformDetails carries
// platform-specific settings as opaque key/value pairs.
type Business struct {
	ID              int64             `json:"id"`
	OwnerID         int64             `json:"owner_id"`
	Name            string            `json:"name"`
	PlatformType    string            `json:"platform_type"`
	PlatformURL     string            `json:"platform_url"`
	PlatformToken   string            `json:"-"`
	PlatformDetails map[string]string `json:"platform_details,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Valid reports whether the record can be persisted.
func (b *Business) Valid() error {
	if b.Name == "" {
		return ErrNoName
	}
	return nil
}

// Directory looks up and persists businesses.
type Directory interface {
	Find(ctx context.Context, id int64) (*Business, error)
	List(ctx context.Context, ownerID int64) ([]*Business, error)
	Save(ctx context.Context, b *Business) error
	Delete(ctx context.Context, id int64) error
}

// SalesHistory supplies the observed daily sales series for a business. The
// returned series covers exactly the requested number of trailing calendar
// days ending at the given day, with no gaps.
type SalesHistory interface {
	DailySales(ctx context.Context, businessID int64, days int, end time.Time) (*salesdata.Series, error)
}
