package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TempShare/internal/cli/api"
	"TempShare/internal/cli/model"
	"TempShare/internal/cli/repo"
)

// labelRunes — сколько символов текста сохраняется в истории как подпись.
const labelRunes = 40

var ErrEmptyCode = errors.New("code is required")

// ShareClient — юзкейс-уровень CLI: вызовы API сервера и ведение локальной истории.
type ShareClient struct {
	baseURL string
	history repo.HistoryRepository
	now     func() time.Time

	onHistoryErr func(code string, err error)
}

// NewShareClient создаёт клиента. history может быть nil — тогда история не ведётся.
func NewShareClient(baseURL string, history repo.HistoryRepository) *ShareClient {
	return &ShareClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		history: history,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OnHistoryError задаёт обработчик ошибки записи истории: загрузка при этом успешна,
// но код не сохранён локально.
func (c *ShareClient) OnHistoryError(fn func(code string, err error)) {
	c.onHistoryErr = fn
}

func (c *ShareClient) endpoint(path string) string { return c.baseURL + "/api" + path }

// UploadText отправляет текст и запоминает код в истории.
func (c *ShareClient) UploadText(ctx context.Context, content string) (*model.UploadResult, error) {
	resp, body, err := api.PostJSON(ctx, c.endpoint("/upload/text"), map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	var res model.UploadResult
	if err := api.DecodeData(resp, body, &res); err != nil {
		return nil, err
	}
	c.remember(ctx, &model.HistoryEntry{
		Code:      res.Code,
		Kind:      "text",
		Label:     textLabel(content),
		SizeBytes: int64(len(strings.TrimSpace(content))),
		ExpiresAt: res.Expires().UTC(),
	})
	return &res, nil
}

// UploadFile отправляет файл с диска и запоминает код в истории.
func (c *ShareClient) UploadFile(ctx context.Context, path string) (*model.UploadResult, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	resp, body, err := api.PostFile(ctx, c.endpoint("/upload/file"), path)
	if err != nil {
		return nil, err
	}
	var res model.UploadResult
	if err := api.DecodeData(resp, body, &res); err != nil {
		return nil, err
	}
	c.remember(ctx, &model.HistoryEntry{
		Code:      res.Code,
		Kind:      "file",
		Label:     filepath.Base(path),
		SizeBytes: st.Size(),
		ExpiresAt: res.Expires().UTC(),
	})
	return &res, nil
}

// Retrieve получает описание записи по коду.
func (c *ShareClient) Retrieve(ctx context.Context, code string) (*model.Shared, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrEmptyCode
	}
	resp, body, err := api.GetJSON(ctx, c.endpoint("/retrieve/"+code))
	if err != nil {
		return nil, err
	}
	var sh model.Shared
	if err := api.DecodeData(resp, body, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// Download скачивает файл записи в destDir.
func (c *ShareClient) Download(ctx context.Context, code, destDir string) (string, int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", 0, ErrEmptyCode
	}
	if destDir == "" {
		destDir = "."
	}
	return api.Download(ctx, c.endpoint("/download/"+code), destDir)
}

// Health проверяет доступность сервера.
func (c *ShareClient) Health(ctx context.Context) (*model.Health, error) {
	resp, body, err := api.GetJSON(ctx, c.endpoint("/health"))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &api.Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	var h model.Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &h, nil
}

// History удаляет истёкшие записи и возвращает живые.
func (c *ShareClient) History(ctx context.Context) ([]model.HistoryEntry, int64, error) {
	if c.history == nil {
		return nil, 0, errors.New("history is not available")
	}
	now := c.now()
	pruned, err := c.history.PruneExpired(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	list, err := c.history.ListActive(ctx, now)
	return list, pruned, err
}

// Now — текущее время клиента (UTC).
func (c *ShareClient) Now() time.Time { return c.now() }

// remember — ошибка записи истории не отменяет успешную загрузку, но сообщается через onHistoryErr
func (c *ShareClient) remember(ctx context.Context, e *model.HistoryEntry) {
	if c.history == nil {
		return
	}
	if err := c.history.Add(ctx, e); err != nil && c.onHistoryErr != nil {
		c.onHistoryErr(e.Code, err)
	}
}

func textLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= labelRunes {
		return s
	}
	return string(r[:labelRunes-1]) + "…"
}
