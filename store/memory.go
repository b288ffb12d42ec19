package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopmetrics/storecast/salesdata"
)

// MemoryDirectory is an in-memory Directory used in tests and when running
// without a database.
type MemoryDirectory struct {
	mu         sync.Mutex
	businesses map[int64]Business
	nextID     int64
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		businesses: make(map[int64]Business),
		nextID:     1,
	}
}

func (d *MemoryDirectory) Find(_ context.Context, id int64) (*Business, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, exists := d.businesses[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (d *MemoryDirectory) List(_ context.Context, ownerID int64) ([]*Business, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := make([]*Business, 0, len(d.businesses))
	for _, b := range d.businesses {
		if ownerID != 0 && b.OwnerID != ownerID {
			continue
		}
		b := b
		res = append(res, &b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (d *MemoryDirectory) Save(_ context.Context, b *Business) error {
	if err := b.Valid(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if b.ID == 0 {
		b.ID = d.nextID
		d.nextID++
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
	} else if _, exists := d.businesses[b.ID]; !exists {
		return ErrNotFound
	}
	d.businesses[b.ID] = *b
	return nil
}

func (d *MemoryDirectory) Delete(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.businesses[id]; !exists {
		return ErrNotFound
	}
	delete(d.businesses, id)
	return nil
}

// SyntheticHistory serves deterministic generated sales series keyed off the
// business identifier. It stands in for a transaction log during development
// and satisfies the gapless lookback contract.
type SyntheticHistory struct {
	// Seed offsets the per-business generator seed.
	Seed uint64
}

func (h *SyntheticHistory) DailySales(_ context.Context, businessID int64, days int, end time.Time) (*salesdata.Series, error) {
	return salesdata.Synthetic(h.Seed^uint64(businessID), days, end), nil
}

// StaticHistory serves fixed series per business, for tests.
type StaticHistory struct {
	mu     sync.Mutex
	series map[int64]*salesdata.Series
}

func NewStaticHistory() *StaticHistory {
	return &StaticHistory{series: make(map[int64]*salesdata.Series)}
}

func (h *StaticHistory) Put(businessID int64, s *salesdata.Series) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series[businessID] = s
}

func (h *StaticHistory) DailySales(_ context.Context, businessID int64, days int, end time.Time) (*salesdata.Series, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, exists := h.series[businessID]
	if !exists {
		return nil, ErrNotFound
	}
	if s.Len() > days {
		trimmed := s.Copy()
		trimmed.T = trimmed.T[s.Len()-days:]
		trimmed.Y = trimmed.Y[s.Len()-days:]
		return trimmed, nil
	}
	return s.Copy(), nil
}
