package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TempShare/internal/cli/api"
	"TempShare/internal/cli/model"
	"TempShare/internal/cli/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHistory struct{ mock.Mock }

func (m *mockHistory) Add(ctx context.Context, e *model.HistoryEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockHistory) ListActive(ctx context.Context, now time.Time) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, now)
	if v, ok := args.Get(0).([]model.HistoryEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockHistory) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.HistoryRepository = (*mockHistory)(nil)

// fakeServer имитирует API сервера обмена
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/upload/text":
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			if strings.TrimSpace(req["content"]) == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"success":false,"message":"No content provided"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"code": "TXT01", "expiresAt": exp}})
		case r.URL.Path == "/api/upload/file":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"code": "FIL01", "expiresAt": exp}})
		case r.URL.Path == "/api/retrieve/TXT01":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"type": "text", "content": "hi", "expiresAt": exp}})
		case strings.HasPrefix(r.URL.Path, "/api/retrieve/"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Content not found or has expired"}`))
		case r.URL.Path == "/api/health":
			_, _ = w.Write([]byte(`{"success":true,"message":"Server is running","timestamp":"2030-01-01T00:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestUploadText_RecordsHistory(t *testing.T) {
	ts := fakeServer(t)
	h := new(mockHistory)
	h.On("Add", mock.Anything, mock.MatchedBy(func(e *model.HistoryEntry) bool {
		return e.Code == "TXT01" && e.Kind == "text" && e.Label == "hello world" && e.ExpiresAt.Year() == 2030
	})).Return(nil).Once()

	c := NewShareClient(ts.URL+"/", h)
	res, err := c.UploadText(context.Background(), "  hello\n world ")
	require.NoError(t, err)
	assert.Equal(t, "TXT01", res.Code)
	h.AssertExpectations(t)
}

func TestUploadText_ServerRejects(t *testing.T) {
	ts := fakeServer(t)
	h := new(mockHistory)
	c := NewShareClient(ts.URL, h)

	_, err := c.UploadText(context.Background(), "   ")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "No content provided", apiErr.Message)
	h.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestUploadText_HistoryFailureReported(t *testing.T) {
	ts := fakeServer(t)
	h := new(mockHistory)
	h.On("Add", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	c := NewShareClient(ts.URL, h)
	var gotCode string
	var gotErr error
	c.OnHistoryError(func(code string, err error) { gotCode, gotErr = code, err })

	res, err := c.UploadText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "TXT01", res.Code)
	assert.Equal(t, "TXT01", gotCode)
	assert.EqualError(t, gotErr, "disk full")
}

func TestUploadFile(t *testing.T) {
	ts := fakeServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o600))

	h := new(mockHistory)
	h.On("Add", mock.Anything, mock.MatchedBy(func(e *model.HistoryEntry) bool {
		return e.Code == "FIL01" && e.Kind == "file" && e.Label == "notes.txt" && e.SizeBytes == 5
	})).Return(nil).Once()

	c := NewShareClient(ts.URL, h)
	res, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "FIL01", res.Code)
	h.AssertExpectations(t)

	_, err = c.UploadFile(context.Background(), dir)
	assert.Error(t, err)
	_, err = c.UploadFile(context.Background(), filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestRetrieve(t *testing.T) {
	ts := fakeServer(t)
	c := NewShareClient(ts.URL, nil)

	sh, err := c.Retrieve(context.Background(), " txt01 ")
	require.NoError(t, err)
	assert.Equal(t, "text", sh.Type)
	assert.Equal(t, "hi", sh.Content)

	_, err = c.Retrieve(context.Background(), "ZZZZZ")
	assert.True(t, api.IsNotFound(err))

	_, err = c.Retrieve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestHealth(t *testing.T) {
	ts := fakeServer(t)
	h, err := NewShareClient(ts.URL, nil).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Success)
	assert.Equal(t, "Server is running", h.Message)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	_, err = NewShareClient(down.URL, nil).Health(context.Background())
	assert.Error(t, err)
}

func TestHistory_PrunesThenLists(t *testing.T) {
	h := new(mockHistory)
	c := NewShareClient("http://unused", h)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	live := []model.HistoryEntry{{Code: "AAAAA", ExpiresAt: fixed.Add(time.Hour)}}
	h.On("PruneExpired", mock.Anything, fixed).Return(int64(3), nil).Once()
	h.On("ListActive", mock.Anything, fixed).Return(live, nil).Once()

	list, pruned, err := c.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)
	assert.Equal(t, live, list)
	h.AssertExpectations(t)

	_, _, err = NewShareClient("http://unused", nil).History(context.Background())
	assert.Error(t, err)
}

func TestTextLabel(t *testing.T) {
	assert.Equal(t, "a b c", textLabel(" a\n b\tc "))
	long := strings.Repeat("я", 100)
	got := textLabel(long)
	assert.Equal(t, labelRunes, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
