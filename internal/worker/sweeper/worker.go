// Package sweeper периодически освобождает слоты, блокировка которых истекла.
// Корректность не зависит от него: истекшая блокировка и так перехватывается
// при захвате. Sweeper только возвращает такие слоты в available.
package sweeper

import (
	"context"
	"time"
)

// Worker фоновый процесс очистки просроченных блокировок
type Worker struct {
	sweeper  LockSweeper
	guard    Guard
	interval time.Duration
	logger   Logger
}

// NewWorker создает worker. guard может быть nil: тогда проход выполняется на каждом тике
func NewWorker(sweeper LockSweeper, guard Guard, interval time.Duration, logger Logger) *Worker {
	if guard == nil {
		guard = alwaysGuard{}
	}

	return &Worker{
		sweeper:  sweeper,
		guard:    guard,
		interval: interval,
		logger:   logger,
	}
}

// Run выполняет очистку каждые interval до отмены ctx
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Sweeper: started, interval=%s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход очистки, если guard его разрешает
func (w *Worker) RunOnce(ctx context.Context) {
	ok, err := w.guard.TryAcquire(ctx)
	if err != nil {
		// очистка идемпотентна, поэтому при недоступном Redis проход выполняется
		w.logger.Warn("Sweeper: %v, sweeping anyway", err)
		ok = true
	}
	if !ok {
		return
	}

	if _, err := w.sweeper.SweepExpired(ctx); err != nil {
		w.logger.Error("Sweeper: pass failed: %v", err)
	}
}
