package bootstrap

import (
	"fmt"

	"TempShare/internal/cli/repo"
	reposqlite "TempShare/internal/cli/repo/sqlite"
	"TempShare/internal/config"
)

// OpenHistoryRepo открывает локальную историю загрузок, выполняет миграции и
// возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func OpenHistoryRepo(cfg *config.Config) (repo.HistoryRepository, func() error, error) {
	r, err := reposqlite.Open(cfg.ClientDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("migrate history db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}
