package handlers

import (
	"TempShare/internal/config"
	"TempShare/internal/middleware"
	"TempShare/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	shareService *service.ShareService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithCORS(config.CORSOrigin))
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	// Handlers
	shareHandler := NewShareHandler(shareService, logger, config)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload/file", shareHandler.UploadFile)
		r.Post("/upload/text", shareHandler.UploadText)
		r.Get("/retrieve/{code}", shareHandler.Retrieve)
		r.Get("/download/{code}", shareHandler.Download)
		r.Get("/health", Health)
	})

	return &Handler{Router: r}
}
