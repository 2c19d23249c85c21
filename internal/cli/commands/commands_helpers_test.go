package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"TempShare/internal/config"
)

// withTempConfig возвращает конфиг, у которого локальная БД истории лежит в temp,
// а сервер — переданный httptest.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: filepath.Join(t.TempDir(), "tscli.db"),
	}
}

// shareServer — минимальная in-memory имитация API сервера.
type shareServer struct {
	mu    sync.Mutex
	texts map[string]string
	files map[string][]byte
	seq   int
}

func newShareServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := &shareServer{texts: map[string]string{}, files: map[string][]byte{}}
	exp := time.Now().Add(24 * time.Hour).UnixMilli()
	writeOK := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}
	notFound := func(w http.ResponseWriter, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload/text", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.seq++
		code := "TXT0" + string(rune('0'+s.seq%10))
		s.texts[code] = strings.TrimSpace(req.Content)
		s.mu.Unlock()
		writeOK(w, map[string]any{"code": code, "expiresAt": exp})
	})
	mux.HandleFunc("/api/upload/file", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"No file uploaded"}`))
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		s.mu.Lock()
		s.seq++
		code := "FIL0" + string(rune('0'+s.seq%10))
		s.files[code] = b
		s.mu.Unlock()
		writeOK(w, map[string]any{"code": code, "expiresAt": exp})
	})
	mux.HandleFunc("/api/retrieve/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/retrieve/")
		s.mu.Lock()
		defer s.mu.Unlock()
		if txt, ok := s.texts[code]; ok {
			writeOK(w, map[string]any{"type": "text", "content": txt, "expiresAt": exp})
			return
		}
		if b, ok := s.files[code]; ok {
			writeOK(w, map[string]any{
				"type": "file", "fileName": "a.txt", "fileType": "text/plain",
				"fileSize": len(b), "fileUrl": "http://" + r.Host + "/api/download/" + code, "expiresAt": exp,
			})
			return
		}
		notFound(w, "Content not found or has expired")
	})
	mux.HandleFunc("/api/download/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/download/")
		s.mu.Lock()
		b, ok := s.files[code]
		s.mu.Unlock()
		if !ok {
			notFound(w, "File not found")
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="a.txt"`)
		_, _ = w.Write(b)
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"Server is running","timestamp":"2030-01-01T00:00:00Z"}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}
