package priceapproval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	priceRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/price"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/txmanager"
)

type mockPriceRepo struct {
	mock.Mock
}

func (m *mockPriceRepo) GetByID(ctx context.Context, id int64) (*domain.PriceRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*domain.PriceRecord)
	return rec, args.Error(1)
}

func (m *mockPriceRepo) GetActive(ctx context.Context, vendorID, serviceID int64) (*domain.PriceRecord, error) {
	args := m.Called(ctx, vendorID, serviceID)
	rec, _ := args.Get(0).(*domain.PriceRecord)
	return rec, args.Error(1)
}

func (m *mockPriceRepo) Expire(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPriceRepo) Activate(ctx context.Context, id int64, changePercent *float64) error {
	return m.Called(ctx, id, changePercent).Error(0)
}

func (m *mockPriceRepo) Reject(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPriceRepo) AppendHistory(ctx context.Context, h *domain.PriceHistory) (*domain.PriceHistory, error) {
	args := m.Called(ctx, h)
	return h, args.Error(0)
}

type passthroughTx struct{ err error }

func (t passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

func pendingPrice(id int64, price float64) *domain.PriceRecord {
	return &domain.PriceRecord{
		ID:               id,
		VendorID:         1,
		ServiceID:        7,
		Price:            price,
		Currency:         "PKR",
		EffectiveDate:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Status:           domain.PricePendingApproval,
		RequiresApproval: true,
		ChangePercent:    ptr.Ptr(30.0),
	}
}

func activePrice(id int64, price float64) *domain.PriceRecord {
	return &domain.PriceRecord{ID: id, VendorID: 1, ServiceID: 7, Price: price, Status: domain.PriceActive, IsActive: true}
}

func newService(repo PriceRepository, tx TransactionManager) *Service {
	return NewService(repo, tx, nil, domain.DefaultPriceRules(), logger.NewNop())
}

func TestApprove_SupersedesCurrentAndWritesHistory(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(12)).Return(pendingPrice(12, 1300), nil)
	repo.On("GetActive", ctx, int64(1), int64(7)).Return(activePrice(11, 1000), nil)
	repo.On("Expire", ctx, int64(11)).Return(nil)
	repo.On("Activate", ctx, int64(12), ptr.Ptr(30.0)).Return(nil)
	repo.On("AppendHistory", ctx, mock.MatchedBy(func(h *domain.PriceHistory) bool {
		return h.PriceID == 12 && h.OldPrice == 1000 && h.NewPrice == 1300 && h.ChangePercent == 30
	})).Return(nil)

	res, err := newService(repo, passthroughTx{}).Approve(ctx, 12, 500)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PriceActive), res.Status)
	assert.True(t, res.IsActive)
	repo.AssertExpectations(t)
}

func TestApprove_RechecksCeilingAgainstCurrentPrice(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	// пока цена ждала одобрения, действующая упала до 800: 1300 это уже +62.5%
	repo.On("GetByID", ctx, int64(12)).Return(pendingPrice(12, 1300), nil)
	repo.On("GetActive", ctx, int64(1), int64(7)).Return(activePrice(13, 800), nil)

	_, err := newService(repo, passthroughTx{}).Approve(ctx, 12, 500)
	require.ErrorIs(t, err, ErrIncreaseTooLarge)
	repo.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_NoCurrentPrice(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(12)).Return(pendingPrice(12, 1300), nil)
	repo.On("GetActive", ctx, int64(1), int64(7)).Return(nil, priceRepo.ErrPriceNotFound)
	repo.On("Activate", ctx, int64(12), (*float64)(nil)).Return(nil)

	res, err := newService(repo, passthroughTx{}).Approve(ctx, 12, 500)
	require.NoError(t, err)
	assert.Nil(t, res.ChangePercent)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}

func TestApproveAndReject_RequirePending(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(11)).Return(activePrice(11, 1000), nil)
	repo.On("GetByID", ctx, int64(99)).Return(nil, priceRepo.ErrPriceNotFound)

	svc := newService(repo, passthroughTx{})

	_, err := svc.Approve(ctx, 11, 500)
	require.ErrorIs(t, err, ErrNotPending)

	_, err = svc.Reject(ctx, 11, 500)
	require.ErrorIs(t, err, ErrNotPending)

	_, err = svc.Approve(ctx, 99, 500)
	require.ErrorIs(t, err, ErrPriceNotFound)
}

func TestApprove_ProposerCannotApprove(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	proposed := pendingPrice(12, 1300)
	proposed.ProposedBy = 500
	repo.On("GetByID", ctx, int64(12)).Return(proposed, nil)

	_, err := newService(repo, passthroughTx{}).Approve(ctx, 12, 500)
	require.ErrorIs(t, err, ErrSelfApproval)
	repo.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestReject_ProposerCanWithdraw(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	proposed := pendingPrice(12, 1300)
	proposed.ProposedBy = 500
	repo.On("GetByID", ctx, int64(12)).Return(proposed, nil)
	repo.On("Reject", ctx, int64(12)).Return(nil)

	res, err := newService(repo, passthroughTx{}).Reject(ctx, 12, 500)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PriceRejected), res.Status)
	repo.AssertExpectations(t)
}

func TestReject(t *testing.T) {
	repo := &mockPriceRepo{}
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(12)).Return(pendingPrice(12, 1300), nil)
	repo.On("Reject", ctx, int64(12)).Return(nil)

	res, err := newService(repo, passthroughTx{}).Reject(ctx, 12, 500)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PriceRejected), res.Status)
	assert.False(t, res.IsActive)
	repo.AssertExpectations(t)
}

func TestApprove_SerializationFailure(t *testing.T) {
	tx := passthroughTx{err: fmt.Errorf("%w: gave up after 4 attempts", txmanager.ErrSerialization)}

	_, err := newService(&mockPriceRepo{}, tx).Approve(context.Background(), 12, 500)
	require.ErrorIs(t, err, ErrConcurrentChange)
}
