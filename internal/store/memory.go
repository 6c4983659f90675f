package store

import (
	"context"
	"sort"
	"sync"

	"genfity-report-service/internal/report"
)

// Memory is an in-process order source. It evaluates queries with the same
// predicate the SQL translation implements.
type Memory struct {
	mu        sync.RWMutex
	merchants map[int64]report.Merchant
	orders    map[int64][]report.Order
}

func NewMemory() *Memory {
	return &Memory{
		merchants: make(map[int64]report.Merchant),
		orders:    make(map[int64][]report.Order),
	}
}

func (m *Memory) PutMerchant(merchant report.Merchant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merchants[merchant.ID] = merchant
}

func (m *Memory) AddOrders(merchantID int64, orders ...report.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[merchantID] = append(m.orders[merchantID], orders...)
}

func (m *Memory) MerchantSettings(_ context.Context, merchantID int64) (report.Merchant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	merchant, ok := m.merchants[merchantID]
	if !ok {
		return report.Merchant{}, ErrMerchantNotFound
	}
	return merchant, nil
}

func (m *Memory) FetchOrders(ctx context.Context, q report.Query) ([]report.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]report.Order, 0)
	for _, order := range m.orders[q.MerchantID] {
		if q.Matches(q.MerchantID, order) {
			out = append(out, order)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
