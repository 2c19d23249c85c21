package handlers

import (
	"TempShare/internal/config"
	"TempShare/internal/model"
	"TempShare/internal/service"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// запас на заголовки и границы multipart сверх лимита файла
const multipartOverhead = 1 << 20

// ShareHandler обрабатывает загрузку и выдачу контента.
type ShareHandler struct {
	ShareService *service.ShareService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

// NewShareHandler создаёт хендлер
func NewShareHandler(shareService *service.ShareService, logger *zap.SugaredLogger, cfg *config.Config) *ShareHandler {
	return &ShareHandler{ShareService: shareService, Logger: logger, Config: cfg}
}

// UploadTextRequest — тело POST /api/upload/text.
type UploadTextRequest struct {
	Content string `json:"content"`
}

// UploadResponse — код доступа и срок жизни.
type UploadResponse struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// RetrieveResponse — описание записи. Для текста заполнен Content, для файла — поля File*.
type RetrieveResponse struct {
	Type      model.Kind `json:"type"`
	Content   string     `json:"content,omitempty"`
	FileName  string     `json:"fileName,omitempty"`
	FileType  string     `json:"fileType,omitempty"`
	FileSize  *int64     `json:"fileSize,omitempty"`
	FileURL   string     `json:"fileUrl,omitempty"`
	ExpiresAt int64      `json:"expiresAt"`
}

// UploadFile принимает multipart с единственным файловым полем "file".
// Файл читается потоком, без буферизации всего тела в памяти.
func (h *ShareHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes()+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		h.Logger.Warnw("UploadFile: not a multipart request", "error", err)
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			h.Logger.Warnw("UploadFile: invalid multipart body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		sh, err := h.ShareService.UploadFile(r.Context(), part, part.FileName(), part.Header.Get("Content-Type"))
		_ = part.Close()
		if err != nil {
			h.writeServiceError(w, "UploadFile", err, "Server error during file upload")
			return
		}
		writeData(w, UploadResponse{Code: sh.Code, ExpiresAt: unixMilli(sh.ExpiresAt)})
		return
	}

	h.Logger.Warnw("UploadFile: missing file field")
	writeError(w, http.StatusBadRequest, "No file uploaded")
}

// UploadText сохраняет текст из JSON {"content": "..."}.
func (h *ShareHandler) UploadText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes())

	var req UploadTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Content too large")
			return
		}
		h.Logger.Warnw("UploadText: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sh, err := h.ShareService.UploadText(r.Context(), req.Content)
	if err != nil {
		h.writeServiceError(w, "UploadText", err, "Server error during text save")
		return
	}
	writeData(w, UploadResponse{Code: sh.Code, ExpiresAt: unixMilli(sh.ExpiresAt)})
}

// Retrieve отдаёт описание записи по коду.
func (h *ShareHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	sh, err := h.ShareService.Retrieve(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, "Retrieve", err, "Server error during retrieval")
		return
	}

	resp := RetrieveResponse{Type: sh.Kind, ExpiresAt: unixMilli(sh.ExpiresAt)}
	switch sh.Kind {
	case model.KindText:
		resp.Content = sh.Content
	case model.KindFile:
		size := sh.FileSizeBytes
		resp.FileName = sh.FileName
		resp.FileType = sh.FileMediaType
		resp.FileSize = &size
		resp.FileURL = downloadURL(r, sh.Code)
	}
	writeData(w, resp)
}

// Download отдаёт содержимое файла с исходным именем в Content-Disposition.
func (h *ShareHandler) Download(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	sh, payload, err := h.ShareService.Download(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.writeServiceError(w, "Download", err, "Server error during download")
		return
	}
	defer func() {
		if err := payload.Close(); err != nil {
			h.Logger.Warnw("Download: failed to close payload", "code", sh.Code, "error", err)
		}
	}()

	mediaType := sh.FileMediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": sh.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, "", sh.CreatedAt, payload)
}

func (h *ShareHandler) writeServiceError(w http.ResponseWriter, op string, err error, internalMsg string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrTooLarge), errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "No content provided")
	case errors.Is(err, service.ErrNoFile):
		writeError(w, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Content not found or has expired")
	default:
		h.Logger.Errorw(op+": service error", "error", err)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

// downloadURL строит абсолютный URL скачивания по схеме и хосту запроса.
func downloadURL(r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + "/api/download/" + code
}
