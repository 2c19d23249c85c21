package sqlite

import (
	"TempShare/internal/cli/model"
	"TempShare/internal/cli/repo"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// HistoryRepositorySQLite — история загрузок в локальном файле SQLite (драйвер modernc, без cgo).
type HistoryRepositorySQLite struct {
	db *gorm.DB
}

var _ repo.HistoryRepository = (*HistoryRepositorySQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД по пути path.
func Open(path string) (*HistoryRepositorySQLite, error) {
	if path == "" {
		return nil, errors.New("empty client db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: path}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	return &HistoryRepositorySQLite{db: db}, nil
}

// Migrate гарантирует наличие таблицы истории.
func (r *HistoryRepositorySQLite) Migrate() error {
	return r.db.AutoMigrate(&model.HistoryEntry{})
}

// Close закрывает соединение с БД. Повторный вызов безопасен.
func (r *HistoryRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *HistoryRepositorySQLite) Add(ctx context.Context, e *model.HistoryEntry) error {
	if e == nil || e.Code == "" {
		return errors.New("empty history entry")
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *HistoryRepositorySQLite) ListActive(ctx context.Context, now time.Time) ([]model.HistoryEntry, error) {
	var list []model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *HistoryRepositorySQLite) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.HistoryEntry{})
	return res.RowsAffected, res.Error
}
