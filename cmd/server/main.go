package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"estatecore/internal/adapter"
	"estatecore/internal/analyzer"
	"estatecore/internal/config"
	"estatecore/internal/fusion"
	"estatecore/internal/handler"
	"estatecore/internal/orchestrator"
	"estatecore/internal/repository"
	"estatecore/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("estate context engine starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	var openaiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		openaiClient = service.NewOpenAIClient(&cfg.OpenAI)
		logger.Info("openai client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel))
	} else {
		logger.Warn("openai disabled; responses will degrade to retrieved context and document search will use full-text ranking")
	}

	adapters := []adapter.SourceAdapter{
		adapter.NewRelationalAdapter(repo, logger, cfg.Sources.RelationalEnabled, cfg.Sources.RelationalTimeout),
		adapter.NewDocumentAdapter(repo, openaiClient, logger, cfg.Sources.DocumentsEnabled, cfg.Sources.DocumentsTimeout),
		adapter.NewExternalListingsAdapter(
			cfg.Sources.ListingsBaseURL,
			cfg.Sources.ListingsAPIKey,
			logger,
			cfg.Sources.ListingsEnabled,
			cfg.Sources.ListingsTimeout,
			cfg.Sources.ListingsRetryMax,
		),
	}

	engine := fusion.NewEngine(
		cfg.Fusion.WeightRelational,
		cfg.Fusion.WeightListings,
		cfg.Fusion.WeightDocuments,
		cfg.Fusion.BudgetUnit,
	)
	serializer := fusion.NewSerializer(cfg.Fusion.HardCeiling)

	orch := orchestrator.New(
		analyzer.New(),
		adapters,
		engine,
		serializer,
		openaiClient,
		repo,
		logger,
		cfg.Server.RequestTimeout,
		cfg.Sources.FetchLimit,
		cfg.Fusion.Budget,
	)
	chatHandler := handler.NewChatHandler(orch)
	embeddingHandler := handler.NewEmbeddingHandler(service.NewDocumentIndexer(repo, openaiClient, logger))
	logger.Info("services initialized")

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "estate-context-engine",
			"version": Version,
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/embeddings/reindex", embeddingHandler.Reindex)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newLogger builds a zap logger from config.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	if err := zcfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return zcfg.Build()
}
