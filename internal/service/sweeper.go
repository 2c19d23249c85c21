package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval — период фоновой очистки.
const DefaultSweepInterval = time.Minute

// Sweeper периодически вызывает Store.Sweep независимо от трафика чтения.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *zap.SugaredLogger
}

// NewSweeper создаёт фоновую задачу очистки. interval <= 0 заменяется на DefaultSweepInterval.
func NewSweeper(store *Store, interval time.Duration, logger *zap.SugaredLogger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run блокируется до отмены ctx.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Infow("sweeper started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("sweeper stopped")
			return nil
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Sweeper) tick() {
	started := time.Now()
	evicted := w.store.Sweep(w.store.Now())
	if evicted == 0 {
		return
	}
	w.logger.Infow("expired shares evicted",
		"evicted", evicted,
		"remaining", w.store.Len(),
		"took", time.Since(started),
	)
}
