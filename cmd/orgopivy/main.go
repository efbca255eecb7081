package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orgopivy/internal/answerer"
	"orgopivy/internal/chunker"
	"orgopivy/internal/config"
	"orgopivy/internal/index/disk"
	"orgopivy/internal/scorer"
	"orgopivy/internal/server"
	"orgopivy/internal/service"
	"orgopivy/internal/storage"
	"orgopivy/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/orgopivy/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Assemble components
	uploads, err := storage.NewUploadStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("upload store init failed: %v", err)
	}
	idx, err := disk.NewStore(cfg.Storage.IndexDir)
	if err != nil {
		log.Fatalf("index store init failed: %v", err)
	}

	svc := service.NewQAService(
		uploads,
		idx,
		chunker.NewWindowChunker(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars),
		scorer.NewTermScorer(),
		answerer.NewExtractiveAnswerer(),
		cfg.Answerer.MaxSentences,
		cfg.Answerer.QuantitativeThreshold,
	)

	srv := server.New(uploads, svc, logger, server.Config{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.WatchUploads {
		w := watcher.New(logger, cfg.Storage.UploadDir, watcher.DefaultDebounce, svc)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Handler()}
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
