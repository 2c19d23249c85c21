package repo

import (
	"TempShare/internal/cli/model"
	"context"
	"time"
)

// HistoryRepository определяет порт доступа к локальной истории загрузок.
type HistoryRepository interface {
	// Add сохраняет запись о загрузке.
	Add(ctx context.Context, e *model.HistoryEntry) error

	// ListActive возвращает записи, ещё живые на момент now, новые первыми.
	ListActive(ctx context.Context, now time.Time) ([]model.HistoryEntry, error)

	// PruneExpired удаляет записи, истёкшие к now, и возвращает их количество.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}
