package service

import (
	"TempShare/internal/model"
	"TempShare/internal/repo"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	// sniffLen — сколько байт заголовка файла смотрит mimetype.
	sniffLen         = 3072
	genericMediaType = "application/octet-stream"
)

// ShareService — бизнес-логика загрузки и выдачи контента поверх Store и PayloadRepository.
type ShareService struct {
	store    *Store
	payloads repo.PayloadRepository
	logger   *zap.SugaredLogger
}

// NewShareService создаёт сервис.
func NewShareService(store *Store, payloads repo.PayloadRepository, logger *zap.SugaredLogger) *ShareService {
	return &ShareService{store: store, payloads: payloads, logger: logger}
}

// UploadText сохраняет текст (с обрезанными пробелами по краям).
func (s *ShareService) UploadText(ctx context.Context, content string) (*model.Share, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	sh, err := s.store.Put(ctx, model.Share{Kind: model.KindText, Content: content})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("text uploaded", "code", sh.Code, "length", len(content), "expires_at", sh.ExpiresAt)
	return sh, nil
}

// UploadFile потоково пишет файл в хранилище payload и регистрирует запись.
// Если запись не удалось вставить, payload удаляется.
func (s *ShareService) UploadFile(ctx context.Context, r io.Reader, fileName, mediaType string) (*model.Share, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	fileName = displayName(fileName)

	br := bufio.NewReaderSize(r, sniffLen)
	// ошибку Peek не проверяем: повторится при чтении в Store
	head, _ := br.Peek(sniffLen)
	mediaType = resolveMediaType(mediaType, head)

	handle, size, err := s.payloads.Store(ctx, br, fileName)
	if err != nil {
		if errors.Is(err, repo.ErrPayloadTooLarge) {
			return nil, ErrTooLarge
		}
		// цепочку сохраняем: транспорт различает превышение лимита тела запроса
		return nil, fmt.Errorf("%w: %w", ErrBackingStore, err)
	}

	sh, err := s.store.Put(ctx, model.Share{
		Kind:          model.KindFile,
		FileName:      fileName,
		FileMediaType: mediaType,
		FileSizeBytes: size,
		FileHandle:    handle,
	})
	if err != nil {
		if relErr := s.payloads.Release(handle); relErr != nil {
			s.logger.Warnw("failed to release orphan payload", "handle", handle, "error", relErr)
		}
		return nil, err
	}
	s.logger.Infow("file uploaded",
		"code", sh.Code,
		"file_name", fileName,
		"media_type", mediaType,
		"size", humanize.Bytes(uint64(size)),
		"expires_at", sh.ExpiresAt,
	)
	return sh, nil
}

// Retrieve возвращает живую запись по коду (регистр не важен).
func (s *ShareService) Retrieve(ctx context.Context, code string) (*model.Share, error) {
	return s.store.Get(ctx, code)
}

// Download открывает payload файловой записи. Вызывающий обязан закрыть Payload.
// Текстовая запись, как и отсутствующая, даёт ErrNotFound.
func (s *ShareService) Download(ctx context.Context, code string) (*model.Share, repo.Payload, error) {
	sh, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if !sh.IsFile() {
		return nil, nil, ErrNotFound
	}
	p, err := s.payloads.Open(sh.FileHandle)
	if err != nil {
		// запись выселили между Get и Open
		if errors.Is(err, repo.ErrPayloadNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrBackingStore, err)
	}
	return sh, p, nil
}

// displayName — имя файла без пути клиента; используется как имя при скачивании.
func displayName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

// resolveMediaType доверяет заявленному типу, если он конкретнее octet-stream,
// иначе определяет тип по первым байтам.
func resolveMediaType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(declared, genericMediaType) {
		return declared
	}
	return mimetype.Detect(head).String()
}
