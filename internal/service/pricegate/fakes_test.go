package pricegate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	priceRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/price"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeTxManager struct {
	mu  sync.Mutex
	err error
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type memoryPrices struct {
	mu      sync.Mutex
	nextID  int64
	prices  []*domain.PriceRecord
	history []*domain.PriceHistory

	createErr error
}

func (r *memoryPrices) seedActive(vendorID, serviceID int64, price float64) *domain.PriceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec := &domain.PriceRecord{
		ID:            r.nextID,
		VendorID:      vendorID,
		ServiceID:     serviceID,
		Price:         price,
		Currency:      "PKR",
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        domain.PriceActive,
		IsActive:      true,
	}
	r.prices = append(r.prices, rec)
	return rec
}

func (r *memoryPrices) GetActive(_ context.Context, vendorID, serviceID int64) (*domain.PriceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*domain.PriceRecord
	for _, p := range r.prices {
		if p.VendorID == vendorID && p.ServiceID == serviceID && p.IsCurrent() {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, priceRepo.ErrPriceNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].EffectiveDate.After(active[j].EffectiveDate) })
	cp := *active[0]
	return &cp, nil
}

func (r *memoryPrices) Create(_ context.Context, record *domain.PriceRecord) (*domain.PriceRecord, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.prices {
		if p.VendorID != record.VendorID || p.ServiceID != record.ServiceID {
			continue
		}
		if record.IsCurrent() && p.IsCurrent() {
			return nil, priceRepo.ErrActiveConflict
		}
		if record.IsPending() && p.IsPending() {
			return nil, priceRepo.ErrPendingConflict
		}
	}
	r.nextID++
	record.ID = r.nextID
	cp := *record
	r.prices = append(r.prices, &cp)
	return record, nil
}

func (r *memoryPrices) Expire(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.prices {
		if p.ID == id && p.Status == domain.PriceActive {
			p.Status = domain.PriceExpired
			p.IsActive = false
			return nil
		}
	}
	return priceRepo.ErrPriceNotFound
}

func (r *memoryPrices) AppendHistory(_ context.Context, h *domain.PriceHistory) (*domain.PriceHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = int64(len(r.history) + 1)
	r.history = append(r.history, h)
	return h, nil
}

func (r *memoryPrices) byID(id int64) *domain.PriceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prices {
		if p.ID == id {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (r *memoryPrices) countActive(vendorID, serviceID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.prices {
		if p.VendorID == vendorID && p.ServiceID == serviceID && p.IsCurrent() {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.PricePendingApproval
	err    error
}

func (p *recordingPublisher) PublishPricePendingApproval(_ context.Context, e events.PricePendingApproval) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
