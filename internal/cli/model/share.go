package model

import "time"

// HistoryEntry — локальная запись о загрузке, сделанной этим клиентом.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"not null;index"`
	Kind      string    `gorm:"not null"`
	Label     string    // имя файла или начало текста
	SizeBytes int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// UploadResult — данные ответа на загрузку.
type UploadResult struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Expires переводит миллисекунды Unix в time.Time.
func (r UploadResult) Expires() time.Time { return time.UnixMilli(r.ExpiresAt) }

// Shared — описание записи, полученное по коду.
type Shared struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	FileSize  *int64 `json:"fileSize,omitempty"`
	FileURL   string `json:"fileUrl,omitempty"`
	ExpiresAt int64  `json:"expiresAt"`
}

func (s Shared) Expires() time.Time { return time.UnixMilli(s.ExpiresAt) }

// Health — ответ /api/health.
type Health struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
