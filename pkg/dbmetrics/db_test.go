package dbmetrics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/pkg/metrics"
)

func TestGetExecutor_PrefersTransactionFromContext(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := Wrap(sqlDB, nil)

	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db).(*DB))

	mock.ExpectBegin()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RecordsQueryMetrics(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	db := Wrap(sqlDB, m)

	mock.ExpectExec("UPDATE vendor_slots").WillReturnResult(sqlmock.NewResult(0, 2))

	_, err = db.ExecContext(context.Background(), "UPDATE vendor_slots SET status = $1", "available")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueriesTotal.WithLabelValues("test", "update", "ok")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("  SELECT id FROM t"))
	assert.Equal(t, "unknown", operationOf(""))
}
