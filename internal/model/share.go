package model

import "time"

// Kind — тип содержимого записи.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// Share — единица хранимого контента, доступная по короткому коду до ExpiresAt.
// После создания запись не изменяется.
type Share struct {
	Code string
	Kind Kind

	// Только для KindText
	Content string

	// Только для KindFile
	FileName      string
	FileMediaType string
	FileSizeBytes int64
	FileHandle    string // непрозрачная ссылка на payload, принадлежит только этой записи

	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt сообщает, истекла ли запись к моменту now (expiresAt <= now).
func (s *Share) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// IsFile reports whether the share references a backing payload.
func (s *Share) IsFile() bool {
	return s.Kind == KindFile && s.FileHandle != ""
}
