package service

import (
	"TempShare/internal/codegen"
	"TempShare/internal/repo"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock — управляемые часы для проверки истечения
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// seqCodes выдаёт коды по очереди, последний повторяется
func seqCodes(codes ...string) codegen.Generator {
	var mu sync.Mutex
	i := 0
	return codegen.GeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	})
}

type testEnv struct {
	store    *Store
	svc      *ShareService
	payloads repo.PayloadRepository
	clock    *fakeClock
}

func newTestEnv(t *testing.T, codes codegen.Generator, maxBytes int64) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()
	payloads, err := repo.NewPayloadRepository(afero.NewMemMapFs(), "/uploads", maxBytes)
	require.NoError(t, err)
	if codes == nil {
		codes = codegen.NewRandom()
	}
	clock := newFakeClock()
	store := NewStore(repo.NewShareRepository(0), payloads, codes, DefaultTTL, logger, WithClock(clock.Now))
	return &testEnv{
		store:    store,
		svc:      NewShareService(store, payloads, logger),
		payloads: payloads,
		clock:    clock,
	}
}

// Мок PayloadRepository
type mockPayloadRepo struct{ mock.Mock }

func (m *mockPayloadRepo) Store(ctx context.Context, r io.Reader, name string) (string, int64, error) {
	args := m.Called(ctx, r, name)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}
func (m *mockPayloadRepo) Open(handle string) (repo.Payload, error) {
	args := m.Called(handle)
	if p, ok := args.Get(0).(repo.Payload); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPayloadRepo) Release(handle string) error {
	return m.Called(handle).Error(0)
}
func (m *mockPayloadRepo) Exists(handle string) bool {
	return m.Called(handle).Bool(0)
}
func (m *mockPayloadRepo) Purge() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

var _ repo.PayloadRepository = (*mockPayloadRepo)(nil)
