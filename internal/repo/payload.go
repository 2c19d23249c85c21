package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrPayloadNotFound — payload отсутствует (или уже помечен к удалению).
	ErrPayloadNotFound = errors.New("payload not found")
	// ErrPayloadTooLarge — поток превысил лимит размера.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrInvalidHandle — handle не похож на выданный этим хранилищем.
	ErrInvalidHandle = errors.New("invalid payload handle")
)

const (
	partSuffix     = ".part"
	maxNameRunes   = 100
	fallbackName   = "file"
	defaultDirPerm = 0o755
	filePerm       = 0o644
)

// Payload — поток чтения содержимого файла. Close обязателен.
type Payload interface {
	io.ReadSeekCloser
}

// PayloadRepository хранит содержимое файлов отдельно от метаданных записей.
type PayloadRepository interface {
	// Store пишет поток под уникальным именем. Поток длиннее лимита отклоняется
	// с ErrPayloadTooLarge, частично записанные данные удаляются.
	Store(ctx context.Context, r io.Reader, originalName string) (handle string, size int64, err error)

	// Open открывает payload на чтение.
	Open(handle string) (Payload, error)

	// Release удаляет payload. Если payload сейчас читается, удаление откладывается
	// до закрытия последнего читателя, а новые Open уже получают ErrPayloadNotFound.
	Release(handle string) error

	// Exists сообщает, хранится ли payload.
	Exists(handle string) bool

	// Purge удаляет всё содержимое каталога (payload без записей после рестарта).
	Purge() (int, error)
}

type handleState struct {
	readers  int
	released bool
}

type fsPayloadRepo struct {
	fs       afero.Fs
	dir      string
	maxBytes int64

	mu     sync.Mutex
	states map[string]*handleState
}

// NewPayloadRepository создаёт хранилище payload в каталоге dir файловой системы fs.
func NewPayloadRepository(fs afero.Fs, dir string, maxBytes int64) (PayloadRepository, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max payload size must be positive, got %d", maxBytes)
	}
	if err := fs.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &fsPayloadRepo{
		fs:       fs,
		dir:      dir,
		maxBytes: maxBytes,
		states:   make(map[string]*handleState),
	}, nil
}

// SanitizeName оставляет от имени клиента только базовое имя из безопасных символов.
func SanitizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return fallbackName
	}
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)
	if name == "/" || name == "." {
		return fallbackName
	}
	var sb strings.Builder
	n := 0
	for _, r := range name {
		if n >= maxNameRunes {
			break
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
		n++
	}
	clean := strings.Trim(sb.String(), ".")
	if clean == "" {
		return fallbackName
	}
	return clean
}

func (r *fsPayloadRepo) path(handle string) (string, error) {
	if handle == "" || handle != filepath.Base(handle) || handle == "." || handle == ".." ||
		strings.HasSuffix(handle, partSuffix) {
		return "", ErrInvalidHandle
	}
	return filepath.Join(r.dir, handle), nil
}

func (r *fsPayloadRepo) Store(ctx context.Context, src io.Reader, originalName string) (string, int64, error) {
	handle := uuid.NewString() + "-" + SanitizeName(originalName)
	final, err := r.path(handle)
	if err != nil {
		return "", 0, err
	}
	tmp := final + partSuffix

	f, err := r.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return "", 0, fmt.Errorf("create payload: %w", err)
	}

	// читаем не больше лимита+1 байт: этого хватает, чтобы обнаружить превышение
	n, copyErr := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: src}, r.maxBytes+1))
	closeErr := f.Close()
	if copyErr == nil && n > r.maxBytes {
		copyErr = ErrPayloadTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = r.fs.Remove(tmp)
		if errors.Is(copyErr, ErrPayloadTooLarge) {
			return "", 0, copyErr
		}
		return "", 0, fmt.Errorf("write payload: %w", copyErr)
	}

	if err := r.fs.Rename(tmp, final); err != nil {
		_ = r.fs.Remove(tmp)
		return "", 0, fmt.Errorf("commit payload: %w", err)
	}
	return handle, n, nil
}

func (r *fsPayloadRepo) Open(handle string) (Payload, error) {
	p, err := r.path(handle)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.states[handle]
	if st != nil && st.released {
		return nil, ErrPayloadNotFound
	}
	f, err := r.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("open payload: %w", err)
	}
	if st == nil {
		st = &handleState{}
		r.states[handle] = st
	}
	st.readers++
	return &payloadReader{File: f, repo: r, handle: handle}, nil
}

func (r *fsPayloadRepo) Release(handle string) error {
	p, err := r.path(handle)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if st := r.states[handle]; st != nil && st.readers > 0 {
		st.released = true
		return nil
	}
	return r.removeLocked(p)
}

func (r *fsPayloadRepo) removeLocked(p string) error {
	if err := r.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrPayloadNotFound
		}
		return fmt.Errorf("remove payload: %w", err)
	}
	return nil
}

func (r *fsPayloadRepo) Exists(handle string) bool {
	p, err := r.path(handle)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(r.fs, p)
	return err == nil && ok
}

func (r *fsPayloadRepo) Purge() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, busy := r.states[e.Name()]; busy {
			continue
		}
		if err := r.fs.Remove(filepath.Join(r.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// closeReader снимает читателя; последний закрывший удаляет отложенный payload.
func (r *fsPayloadRepo) closeReader(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.states[handle]
	if st == nil {
		return nil
	}
	st.readers--
	if st.readers > 0 {
		return nil
	}
	delete(r.states, handle)
	if !st.released {
		return nil
	}
	p, err := r.path(handle)
	if err != nil {
		return err
	}
	return r.removeLocked(p)
}

type payloadReader struct {
	afero.File
	repo   *fsPayloadRepo
	handle string
	once   sync.Once
}

func (p *payloadReader) Close() error {
	var err error
	p.once.Do(func() {
		err = errors.Join(p.File.Close(), p.repo.closeReader(p.handle))
	})
	return err
}

// ctxReader прерывает копирование при отмене контекста запроса.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
