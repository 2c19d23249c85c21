package main

import (
	"TempShare/internal/codegen"
	"TempShare/internal/config"
	"TempShare/internal/handlers"
	"TempShare/internal/middleware"
	"TempShare/internal/repo"
	"TempShare/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorw("Server stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, sugar *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	payloads, err := repo.NewPayloadRepository(afero.NewOsFs(), cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		return err
	}
	// записи живут только в памяти, поэтому файлы прошлого запуска недостижимы
	if n, err := payloads.Purge(); err != nil {
		sugar.Warnw("Failed to purge stale uploads", "dir", cfg.UploadDir, "error", err)
	} else if n > 0 {
		sugar.Infow("Purged stale uploads", "dir", cfg.UploadDir, "count", n)
	}

	store := service.NewStore(repo.NewShareRepository(0), payloads, codegen.NewRandom(), cfg.ItemTTL, sugar)
	shareService := service.NewShareService(store, payloads, sugar)
	sweeper := service.NewSweeper(store, cfg.SweepInterval, sugar)

	h := handlers.NewHandler(shareService, sugar, cfg)
	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"UploadDir", cfg.UploadDir,
		"ItemTTL", cfg.ItemTTL,
		"SweepInterval", cfg.SweepInterval,
		"MaxUpload", humanize.IBytes(uint64(cfg.MaxUploadBytes())),
		"CORSOrigin", cfg.CORSOrigin,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	g.Go(func() error {
		sugar.Infow("Starting server", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		sugar.Infow("Shutting down server")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	return g.Wait()
}
