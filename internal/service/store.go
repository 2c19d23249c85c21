package service

import (
	"TempShare/internal/codegen"
	"TempShare/internal/model"
	"TempShare/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL — время жизни записи по умолчанию.
const DefaultTTL = 24 * time.Hour

// maxCodeAttempts ограничивает повтор генерации кода при коллизии с живой записью.
const maxCodeAttempts = 16

// Store — авторитетное хранилище записей с истечением срока.
// Истечение проверяется и при чтении (lazy), и фоновым Sweep; оба пути используют
// одно условие expiresAt <= now и одну последовательность удаления.
type Store struct {
	records  repo.ShareRepository
	payloads repo.PayloadRepository
	codes    codegen.Generator
	ttl      time.Duration
	logger   *zap.SugaredLogger

	now func() time.Time
}

// StoreOption настраивает Store.
type StoreOption func(*Store)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore создаёт Store. ttl <= 0 заменяется на DefaultTTL.
func NewStore(
	records repo.ShareRepository,
	payloads repo.PayloadRepository,
	codes codegen.Generator,
	ttl time.Duration,
	logger *zap.SugaredLogger,
	opts ...StoreOption,
) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		records:  records,
		payloads: payloads,
		codes:    codes,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL возвращает настроенное время жизни.
func (s *Store) TTL() time.Duration { return s.ttl }

// Now returns the store's current instant.
func (s *Store) Now() time.Time { return s.now() }

// Put присваивает записи свободный код и срок жизни и вставляет её.
// Поля Code/CreatedAt/ExpiresAt черновика игнорируются.
func (s *Store) Put(ctx context.Context, draft model.Share) (*model.Share, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created := s.now()
	draft.CreatedAt = created
	draft.ExpiresAt = created.Add(s.ttl)

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		draft.Code = codegen.Normalize(s.codes.Generate())
		if s.records.InsertIfAbsent(&draft) {
			if attempt > 1 {
				s.logger.Infow("code collision resolved", "code", draft.Code, "attempts", attempt)
			}
			out := draft
			return &out, nil
		}
		s.logger.Debugw("code collision, retrying", "code", draft.Code, "attempt", attempt)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrCodesExhausted, maxCodeAttempts)
}

// Get возвращает живую запись. Истёкшая запись удаляется здесь же и неотличима от отсутствующей.
func (s *Store) Get(ctx context.Context, code string) (*model.Share, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	code = codegen.Normalize(code)
	if !codegen.Valid(code) {
		return nil, ErrNotFound
	}
	sh, ok := s.records.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if sh.ExpiredAt(now) {
		if s.deleteRecord(code, expiredAt(now)) {
			s.logger.Infow("share expired on read", "code", code, "expires_at", sh.ExpiresAt)
		}
		return nil, ErrNotFound
	}
	return sh, nil
}

// Sweep удаляет все записи, истёкшие к now, и возвращает их количество.
// Ошибка освобождения payload одной записи не прерывает обход.
func (s *Store) Sweep(now time.Time) int {
	evicted := 0
	for _, code := range s.records.ExpiredCodes(now) {
		if s.deleteRecord(code, expiredAt(now)) {
			evicted++
		}
	}
	return evicted
}

// Len — количество записей (включая истёкшие, ещё не собранные).
func (s *Store) Len() int { return s.records.Len() }

func expiredAt(now time.Time) func(*model.Share) bool {
	return func(sh *model.Share) bool { return sh.ExpiredAt(now) }
}

// deleteRecord сначала удаляет запись (после этого её не найдёт ни один читатель),
// затем освобождает payload. match перепроверяется под блокировкой, чтобы не удалить
// новую запись, получившую тот же код. Повторный вызов — no-op.
func (s *Store) deleteRecord(code string, match func(*model.Share) bool) bool {
	sh, ok := s.records.RemoveIf(code, match)
	if !ok {
		return false
	}
	if sh.IsFile() {
		if err := s.payloads.Release(sh.FileHandle); err != nil {
			s.logger.Warnw("failed to release payload",
				"code", code,
				"handle", sh.FileHandle,
				"missing", errors.Is(err, repo.ErrPayloadNotFound),
				"error", err,
			)
		}
	}
	return true
}
