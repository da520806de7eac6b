package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/server"
	"docchat/internal/util"
	"docchat/pkg/ai"
	"docchat/pkg/auth"
	"docchat/pkg/corpus"
	"docchat/pkg/extract"
	"docchat/pkg/storage"
	"docchat/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	appCfg := app.Config{
		Store:           st,
		Corpus:          corpus.New(st, cfg.MaxCorpusBytes),
		Extractor:       extract.New(),
		Generator:       ai.NewOpenAICompatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.ParseAnswerTimeout()),
		AdminEmail:      cfg.AdminEmail,
		MaxContextChars: cfg.MaxContextChars,
		AnswerTimeout:   cfg.ParseAnswerTimeout(),
		HistoryLimit:    cfg.HistoryLimit,
	}
	if cfg.MinioEndpoint != "" {
		archive, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init upload archive: %v", err)
		}
		appCfg.Archive = archive
	}
	appCore, err := app.New(appCfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	sessions, err := auth.NewSessions(cfg.JWTSecret, cfg.ParseSessionTTL())
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Sessions:                   sessions,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		MaxUploadBytes:             cfg.MaxUploadBytes,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		QueryRateLimitPerMinute:    cfg.QueryRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
