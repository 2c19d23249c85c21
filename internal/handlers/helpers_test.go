package handlers_test

import (
	"TempShare/internal/codegen"
	"TempShare/internal/config"
	"TempShare/internal/handlers"
	"TempShare/internal/repo"
	"TempShare/internal/service"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	router   http.Handler
	clock    *testClock
	payloads repo.PayloadRepository
	fs       afero.Fs
}

func newTestServer(t *testing.T, maxUploadMB int) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()
	cfg := &config.Config{MaxUploadMB: maxUploadMB, CORSOrigin: "*"}

	fs := afero.NewMemMapFs()
	payloads, err := repo.NewPayloadRepository(fs, "/uploads", cfg.MaxUploadBytes())
	require.NoError(t, err)

	clock := &testClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := service.NewStore(repo.NewShareRepository(0), payloads, codegen.NewRandom(), service.DefaultTTL, logger, service.WithClock(clock.Now))
	svc := service.NewShareService(store, payloads, logger)

	h := handlers.NewHandler(svc, logger, cfg)
	return &testServer{router: h.Router, clock: clock, payloads: payloads, fs: fs}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, field, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.True(t, env.Success, env.Message)
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
