package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/psqlbuilder"
)

const (
	table = "vendor_slots"

	uniqueViolation = "23505"
)

var columns = []string{
	"id",
	"vendor_id",
	"service_id",
	"slot_date",
	"status",
	"lock_token",
	"lock_expiry",
	"lock_reason",
	"booking_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов вендора.
// Ошибки драйвера оборачиваются через %w, чтобы txmanager мог распознать
// конфликт сериализации и повторить транзакцию.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// keyPredicate условие поиска строки по ключу слота.
// NULL service_id означает слот на весь день вендора.
func keyPredicate(key domain.SlotKey) squirrel.And {
	var serviceID interface{}
	if key.ServiceID != nil {
		serviceID = *key.ServiceID
	}

	return squirrel.And{
		squirrel.Eq{"vendor_id": key.VendorID},
		squirrel.Eq{"service_id": serviceID},
		squirrel.Eq{"slot_date": key.Date},
	}
}

// Get получает слот по ключу без блокировки строки
func (r *Repository) Get(ctx context.Context, key domain.SlotKey) (*domain.Slot, error) {
	return r.get(ctx, key, false)
}

// GetForUpdate получает слот по ключу.
// Внутри транзакции строка блокируется (SELECT ... FOR UPDATE) до её завершения.
func (r *Repository) GetForUpdate(ctx context.Context, key domain.SlotKey) (*domain.Slot, error) {
	return r.get(ctx, key, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, key domain.SlotKey, forUpdate bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(keyPredicate(key))

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan slot %s: %w", ErrScanRow, key, err)
	}

	return slot, nil
}

// InsertLocked создает строку слота сразу в состоянии blocked с арендой lease.
// Если параллельная транзакция успела вставить ту же строку, возвращает ErrSlotConflict.
func (r *Repository) InsertLocked(ctx context.Context, key domain.SlotKey, lease *domain.Lease) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"vendor_id",
			"service_id",
			"slot_date",
			"status",
			"lock_token",
			"lock_expiry",
			"lock_reason",
		).
		Values(
			key.VendorID,
			key.ServiceID,
			key.Date,
			domain.SlotBlocked,
			lease.Token,
			lease.ExpiresAt,
			lease.Reason,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: InsertLocked - build insert query: %v", ErrBuildQuery, err)
	}

	slot := &domain.Slot{
		Key:    key,
		Status: domain.SlotBlocked,
		Lease:  lease,
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: InsertLocked - %s: %w", ErrSlotConflict, key, err)
		}
		return nil, fmt.Errorf("%w: InsertLocked - execute insert: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// UpdateLocked переводит существующую строку слота в blocked с новой арендой.
// Вызывается только после GetForUpdate в той же транзакции.
func (r *Repository) UpdateLocked(ctx context.Context, id int64, lease *domain.Lease) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.SlotBlocked).
		Set("lock_token", lease.Token).
		Set("lock_expiry", lease.ExpiresAt).
		Set("lock_reason", lease.Reason).
		Set("booking_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateLocked - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpdateLocked - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// TryRelease снимает аренду и возвращает слот в available,
// только если lock_token совпадает с token. Возвращает, была ли изменена строка.
func (r *Repository) TryRelease(ctx context.Context, key domain.SlotKey, token string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.SlotAvailable).
		Set("lock_token", nil).
		Set("lock_expiry", nil).
		Set("lock_reason", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(keyPredicate(key)).
		Where(squirrel.Eq{"lock_token": token, "status": domain.SlotBlocked}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: TryRelease - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffected(ctx, executor, "TryRelease", query, args)
}

// TryConfirm переводит слот в booked и привязывает бронирование,
// только если аренда принадлежит token и ещё не истекла на момент now.
func (r *Repository) TryConfirm(ctx context.Context, key domain.SlotKey, token string, bookingID int64, now time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.SlotBooked).
		Set("booking_id", bookingID).
		Set("lock_token", nil).
		Set("lock_expiry", nil).
		Set("lock_reason", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(keyPredicate(key)).
		Where(squirrel.Eq{"lock_token": token, "status": domain.SlotBlocked}).
		Where(squirrel.Gt{"lock_expiry": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: TryConfirm - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffected(ctx, executor, "TryConfirm", query, args)
}

// SweepExpired возвращает в available все слоты с истекшей арендой.
// Слоты, заблокированные вручную (без lock_expiry), не трогает.
func (r *Repository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.SlotAvailable).
		Set("lock_token", nil).
		Set("lock_expiry", nil).
		Set("lock_reason", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.SlotBlocked}).
		Where(squirrel.Lt{"lock_expiry": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - rows affected: %w", ErrExecQuery, err)
	}

	return affected, nil
}

func (r *Repository) execAffected(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (bool, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %s - rows affected: %w", ErrExecQuery, op, err)
	}

	return affected > 0, nil
}

func scanSlot(row *sql.Row) (*domain.Slot, error) {
	var (
		slot       domain.Slot
		serviceID  sql.NullInt64
		lockToken  sql.NullString
		lockExpiry sql.NullTime
		lockReason sql.NullString
		bookingID  sql.NullInt64
	)

	err := row.Scan(
		&slot.ID,
		&slot.Key.VendorID,
		&serviceID,
		&slot.Key.Date,
		&slot.Status,
		&lockToken,
		&lockExpiry,
		&lockReason,
		&bookingID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Key.Date = domain.NormalizeDate(slot.Key.Date)
	if serviceID.Valid {
		id := serviceID.Int64
		slot.Key.ServiceID = &id
	}
	if bookingID.Valid {
		id := bookingID.Int64
		slot.BookingID = &id
	}
	if lockToken.Valid && lockToken.String != "" {
		slot.Lease = &domain.Lease{
			Token:     lockToken.String,
			ExpiresAt: lockExpiry.Time,
			Reason:    lockReason.String,
		}
	}

	return &slot, nil
}
