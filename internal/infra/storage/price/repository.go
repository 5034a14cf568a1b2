package price

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/psqlbuilder"
)

const (
	pricesTable  = "service_prices"
	historyTable = "price_history"

	uniqueViolation = "23505"
	pendingIndex    = "service_prices_pending_uidx"
)

var columns = []string{
	"id",
	"vendor_id",
	"service_id",
	"price",
	"currency",
	"effective_date",
	"status",
	"is_active",
	"requires_approval",
	"change_percent",
	"proposed_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий цен услуг и истории их изменений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория цен
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActive получает действующую цену услуги вендора.
// Внутри транзакции строка блокируется до её завершения, поэтому два
// параллельных изменения цены одной услуги выполняются по очереди.
func (r *Repository) GetActive(ctx context.Context, vendorID, serviceID int64) (*domain.PriceRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(pricesTable).
		Where(squirrel.Eq{
			"vendor_id":  vendorID,
			"service_id": serviceID,
			"status":     domain.PriceActive,
			"is_active":  true,
		}).
		OrderBy("effective_date DESC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActive - build select query: %v", ErrBuildQuery, err)
	}

	record, err := scanPrice(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActive - scan price: %w", ErrScanRow, err)
	}

	return record, nil
}

// GetByID получает цену по ID (внутри транзакции с блокировкой строки)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PriceRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(pricesTable).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	record, err := scanPrice(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan price: %w", ErrScanRow, err)
	}

	return record, nil
}

// Create сохраняет новую запись цены
func (r *Repository) Create(ctx context.Context, record *domain.PriceRecord) (*domain.PriceRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(pricesTable).
		Columns(
			"vendor_id",
			"service_id",
			"price",
			"currency",
			"effective_date",
			"status",
			"is_active",
			"requires_approval",
			"change_percent",
			"proposed_by",
		).
		Values(
			record.VendorID,
			record.ServiceID,
			record.Price,
			record.Currency,
			record.EffectiveDate,
			record.Status,
			record.IsActive,
			record.RequiresApproval,
			record.ChangePercent,
			nullableID(record.ProposedBy),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			conflict := ErrActiveConflict
			if pqErr.Constraint == pendingIndex {
				conflict = ErrPendingConflict
			}
			return nil, fmt.Errorf("%w: Create - vendor %d service %d: %w", conflict, record.VendorID, record.ServiceID, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return record, nil
}

// Expire снимает статус действующей с цены id (перед активацией новой)
func (r *Repository) Expire(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Update(pricesTable).
		Set("status", domain.PriceExpired).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PriceActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Expire - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := r.exec(ctx, "Expire", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: Expire - active price %d", ErrPriceNotFound, id)
	}

	return nil
}

// Activate делает ожидающую одобрения цену действующей
func (r *Repository) Activate(ctx context.Context, id int64, changePercent *float64) error {
	query, args, err := psqlbuilder.Update(pricesTable).
		Set("status", domain.PriceActive).
		Set("is_active", true).
		Set("change_percent", changePercent).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PricePendingApproval}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Activate - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := r.exec(ctx, "Activate", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: Activate - pending price %d", ErrPriceNotFound, id)
	}

	return nil
}

// Reject отклоняет ожидающую одобрения цену
func (r *Repository) Reject(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Update(pricesTable).
		Set("status", domain.PriceRejected).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PricePendingApproval}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reject - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := r.exec(ctx, "Reject", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: Reject - pending price %d", ErrPriceNotFound, id)
	}

	return nil
}

// AppendHistory добавляет запись в историю изменения цены
func (r *Repository) AppendHistory(ctx context.Context, history *domain.PriceHistory) (*domain.PriceHistory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(historyTable).
		Columns(
			"price_id",
			"vendor_id",
			"service_id",
			"old_price",
			"new_price",
			"change_percent",
			"proposed_by",
		).
		Values(
			history.PriceID,
			history.VendorID,
			history.ServiceID,
			history.OldPrice,
			history.NewPrice,
			history.ChangePercent,
		).
		Suffix("RETURNING id, changed_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&history.ID, &history.ChangedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - execute insert: %w", ErrExecQuery, err)
	}

	return history, nil
}

func (r *Repository) exec(ctx context.Context, op, query string, args []interface{}) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - rows affected: %w", ErrExecQuery, op, err)
	}

	return affected, nil
}

func scanPrice(row *sql.Row) (*domain.PriceRecord, error) {
	var (
		record        domain.PriceRecord
		changePercent sql.NullFloat64
		proposedBy    sql.NullInt64
	)

	err := row.Scan(
		&record.ID,
		&record.VendorID,
		&record.ServiceID,
		&record.Price,
		&record.Currency,
		&record.EffectiveDate,
		&record.Status,
		&record.IsActive,
		&record.RequiresApproval,
		&changePercent,
		&proposedBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ProposedBy = proposedBy.Int64

	if changePercent.Valid {
		v := changePercent.Float64
		record.ChangePercent = &v
	}

	return &record, nil
}

// nullableID пишет 0 как NULL
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
