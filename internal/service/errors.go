package service

import (
	"errors"
	"fmt"
)

// Ошибки сервиса. Хендлеры маппят их в HTTP-статусы через errors.Is.
var (
	// ErrValidation — некорректный ввод клиента (4xx, не считается сбоем сервера).
	ErrValidation   = errors.New("validation failed")
	ErrEmptyContent = fmt.Errorf("%w: no content provided", ErrValidation)
	ErrNoFile       = fmt.Errorf("%w: no file uploaded", ErrValidation)
	ErrTooLarge     = fmt.Errorf("%w: file too large", ErrValidation)

	// ErrNotFound одинаков для отсутствующего и истёкшего кода.
	ErrNotFound = errors.New("content not found or has expired")

	// ErrBackingStore — сбой записи/чтения payload.
	ErrBackingStore = errors.New("backing store failure")

	// ErrCodesExhausted — не удалось подобрать свободный код за отведённое число попыток.
	ErrCodesExhausted = errors.New("no free code available")
)
