package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/atcdesk/radioscribe/cmd/mainconfig"
	"github.com/atcdesk/radioscribe/internal/api/router"
	"github.com/atcdesk/radioscribe/internal/assistant"
	appconfig "github.com/atcdesk/radioscribe/internal/config"
	"github.com/atcdesk/radioscribe/internal/contentcache"
	"github.com/atcdesk/radioscribe/internal/extract"
	"github.com/atcdesk/radioscribe/internal/http/handlers"
	"github.com/atcdesk/radioscribe/internal/observability/metrics"
	"github.com/atcdesk/radioscribe/internal/pipeline"
	"github.com/atcdesk/radioscribe/internal/scheduling"
	"github.com/atcdesk/radioscribe/internal/search"
	"github.com/atcdesk/radioscribe/internal/session"
	"github.com/atcdesk/radioscribe/internal/transcribe"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting radioscribe API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
	}

	var cache contentcache.Store
	var sessions session.Store
	if redisClient != nil {
		cache = contentcache.NewRedisStore(redisClient, cfg.CacheTTL, logger)
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		fileCache, err := contentcache.NewFileStore(cfg.CacheDir, logger)
		if err != nil {
			logger.Error("failed to open cache directory", "dir", cfg.CacheDir, "error", err)
			os.Exit(1)
		}
		cache = fileCache
		sessions = session.NewMemoryStore()
	}

	var audioStore transcribe.AudioStore
	if cfg.AudioStoreBackend == "s3" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		audioStore = transcribe.NewS3Store(s3.NewFromConfig(awsCfg), cfg.AudioBucket)
	} else {
		localStore, err := transcribe.NewLocalStore(cfg.AudioPersistDir)
		if err != nil {
			logger.Error("failed to open audio directory", "dir", cfg.AudioPersistDir, "error", err)
			os.Exit(1)
		}
		audioStore = localStore
	}

	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)
	transcriber := transcribe.NewService(
		transcribe.NewOpenAIClient(openaiClient, cfg.WhisperModel),
		cache, audioStore, logger, pipelineMetrics,
	)

	var llm extract.LLMClient = extract.NewOpenAILLMClient(openaiClient, cfg.OpenAIChatModel)
	if cfg.GeminiAPIKey != "" {
		gemini, err := extract.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		llm = extract.NewFallbackClient(llm, gemini, logger)
	}
	extractor := extract.NewService(llm, cache, logger, pipelineMetrics)

	pipe := pipeline.New(transcriber, extractor, logger)

	assistants := assistant.NewRegistry(logger)
	health := scheduling.NewAssistant(scheduling.NewStaticSlotSource(), scheduling.StaticLabResultSource{}, logger)
	assistants.Register(health.Descriptor())

	var searcher search.Searcher
	if cfg.SearchAPIKey != "" {
		searcher = search.NewTavilyClient(cfg.SearchAPIKey)
	}

	dispatcher := assistant.NewDispatcher(assistant.DispatcherDeps{
		Registry: assistants,
		Sessions: sessions,
		Audio:    pipe,
		Searcher: searcher,
		Fallback: pipeline.NewChatFallback(llm, sessions, logger),
		Logger:   logger,
		Metrics:  pipelineMetrics,
	})

	r := router.New(&router.Config{
		Logger:          logger,
		AudioHandler:    handlers.NewAudioHandler(pipe, int64(cfg.MaxUploadBytes), logger),
		MessagesHandler: handlers.NewMessagesHandler(dispatcher, logger),
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
