package lockmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	slotRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/slot"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (g *seqTokens) NewToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("token-%d", g.n)
}

// fakeTxManager выполняет транзакции строго по одной, как это гарантирует SERIALIZABLE
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

type memorySlots struct {
	mu     sync.Mutex
	nextID int64
	slots  map[string]*domain.Slot

	getErr    error
	insertErr error
}

func newMemorySlots() *memorySlots {
	return &memorySlots{slots: make(map[string]*domain.Slot)}
}

func (r *memorySlots) snapshot(key domain.SlotKey) *domain.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[key.String()]
	if !ok {
		return nil
	}
	cp := *slot
	if slot.Lease != nil {
		lease := *slot.Lease
		cp.Lease = &lease
	}
	return &cp
}

func (r *memorySlots) put(slot *domain.Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	slot.ID = r.nextID
	r.slots[slot.Key.String()] = slot
}

func (r *memorySlots) Get(_ context.Context, key domain.SlotKey) (*domain.Slot, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	slot := r.snapshot(key)
	if slot == nil {
		return nil, slotRepo.ErrSlotNotFound
	}
	return slot, nil
}

func (r *memorySlots) GetForUpdate(ctx context.Context, key domain.SlotKey) (*domain.Slot, error) {
	return r.Get(ctx, key)
}

func (r *memorySlots) InsertLocked(_ context.Context, key domain.SlotKey, lease *domain.Lease) (*domain.Slot, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[key.String()]; ok {
		return nil, slotRepo.ErrSlotConflict
	}
	r.nextID++
	slot := &domain.Slot{ID: r.nextID, Key: key, Status: domain.SlotBlocked, Lease: lease}
	r.slots[key.String()] = slot
	return slot, nil
}

func (r *memorySlots) UpdateLocked(_ context.Context, id int64, lease *domain.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slot := range r.slots {
		if slot.ID == id {
			slot.Status = domain.SlotBlocked
			slot.Lease = lease
			slot.BookingID = nil
			return nil
		}
	}
	return slotRepo.ErrSlotNotFound
}

func (r *memorySlots) TryRelease(_ context.Context, key domain.SlotKey, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[key.String()]
	if !ok || slot.Status != domain.SlotBlocked || !slot.Lease.OwnedBy(token) {
		return false, nil
	}
	slot.Status = domain.SlotAvailable
	slot.Lease = nil
	return true, nil
}

func (r *memorySlots) TryConfirm(_ context.Context, key domain.SlotKey, token string, bookingID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[key.String()]
	if !ok || slot.Status != domain.SlotBlocked || !slot.Lease.OwnedBy(token) || !slot.Lease.ExpiresAt.After(now) {
		return false, nil
	}
	slot.Status = domain.SlotBooked
	slot.BookingID = &bookingID
	slot.Lease = nil
	return true, nil
}

func (r *memorySlots) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, slot := range r.slots {
		if slot.Status == domain.SlotBlocked && slot.Lease != nil && slot.Lease.ExpiresAt.Before(now) {
			slot.Status = domain.SlotAvailable
			slot.Lease = nil
			n++
		}
	}
	return n, nil
}

type countingMetrics struct {
	mu    sync.Mutex
	ops   map[string]int
	swept int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{ops: make(map[string]int)}
}

func (m *countingMetrics) RecordLockOperation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[operation+":"+outcome]++
}

func (m *countingMetrics) RecordSweep(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swept += count
}

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[key]
}
