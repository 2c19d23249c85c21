package repo

import (
	"TempShare/internal/model"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ShareRepository — набор записей code -> Share, живущий только в памяти процесса.
// Все операции линеаризуемы по отдельному коду.
type ShareRepository interface {
	// InsertIfAbsent вставляет запись, если код свободен. Возвращает false, если код занят.
	InsertIfAbsent(s *model.Share) bool

	// Get возвращает копию записи по коду.
	Get(code string) (*model.Share, bool)

	// RemoveIf удаляет запись, только если match вернул true для текущего значения под блокировкой.
	// Повторное удаление уже удалённого кода — не ошибка, просто false.
	RemoveIf(code string, match func(*model.Share) bool) (*model.Share, bool)

	// ExpiredCodes возвращает коды записей с ExpiresAt <= now.
	ExpiredCodes(now time.Time) []string

	// Len возвращает количество записей.
	Len() int
}

const defaultShards = 32

type shard struct {
	mu    sync.RWMutex
	items map[string]model.Share
}

type memoryShareRepo struct {
	shards []*shard
}

// NewShareRepository создаёт шардированное in-memory хранилище записей.
// Операции над разными кодами не сериализуются на одной блокировке.
func NewShareRepository(shards int) ShareRepository {
	if shards <= 0 {
		shards = defaultShards
	}
	r := &memoryShareRepo{shards: make([]*shard, shards)}
	for i := range r.shards {
		r.shards[i] = &shard{items: make(map[string]model.Share)}
	}
	return r
}

func (r *memoryShareRepo) shardFor(code string) *shard {
	return r.shards[xxhash.Sum64String(code)%uint64(len(r.shards))]
}

func (r *memoryShareRepo) InsertIfAbsent(s *model.Share) bool {
	sh := r.shardFor(s.Code)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.items[s.Code]; ok {
		return false
	}
	sh.items[s.Code] = *s
	return true
}

func (r *memoryShareRepo) Get(code string) (*model.Share, bool) {
	sh := r.shardFor(code)
	sh.mu.RLock()
	s, ok := sh.items[code]
	sh.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &s, true
}

func (r *memoryShareRepo) RemoveIf(code string, match func(*model.Share) bool) (*model.Share, bool) {
	sh := r.shardFor(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	s, ok := sh.items[code]
	if !ok {
		return nil, false
	}
	if match != nil && !match(&s) {
		return nil, false
	}
	delete(sh.items, code)
	return &s, true
}

// ExpiredCodes держит блокировку только одного шарда за раз.
func (r *memoryShareRepo) ExpiredCodes(now time.Time) []string {
	var codes []string
	for _, sh := range r.shards {
		sh.mu.RLock()
		for code, s := range sh.items {
			if s.ExpiredAt(now) {
				codes = append(codes, code)
			}
		}
		sh.mu.RUnlock()
	}
	return codes
}

func (r *memoryShareRepo) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}
