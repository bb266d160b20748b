package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/game"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/indexer"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/ingestion"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/ledger"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/config"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/dice-ledger-backend/pkg/firebase"
	authmiddleware "github.com/kollektive-hackathon/dice-ledger-backend/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	setupZerolog()

	cfg, err := config.Load("./.env")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := setupDb(cfg)

	client := indexer.NewClient(cfg.IndexerUrl, cfg.FetchTimeout())
	service, err := ingestion.NewService(*cfg, client, ledger.NewRepository(db), game.NewRepository(db))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build ingestion service")
	}
	// Fetches run in parallel; the rest covers sequencing retries.
	runner := ingestion.NewRunner(service, 2*cfg.FetchTimeout())

	if err := runner.Start(cfg.IngestCron); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.IngestCron).Msg("Failed to schedule ingestion")
	}
	defer runner.Stop()

	if cfg.IngestTriggerSubscription != "" {
		if err := pubsub.InitPubSub(ctx, cfg.GoogleProjectId); err != nil {
			log.Fatal().Err(err).Msg("Error initializing pub sub connection")
		}
		defer pubsub.CloseClient()
		go pubsub.Subscribe(ctx, ingestion.TriggerSubscription(cfg.IngestTriggerSubscription, runner))
	}

	var guards []gin.HandlerFunc
	if cfg.AuthEnabled {
		if err := firebase.InitFirebaseSdk(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing firebase")
		}
		guards = append(guards, authmiddleware.VerifyAuthToken)
	}

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      setupApiRouter(cfg, db, runner, guards),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.FetchTimeout() + 10*time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
}

func setupDb(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DbUrl), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	if err := db.AutoMigrate(&model.Transaction{}, &model.Game{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	sqlDb, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access database pool")
	}
	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	return db
}

func setupApiRouter(cfg *config.Config, db *gorm.DB, runner *ingestion.Runner, guards []gin.HandlerFunc) *gin.Engine {
	apiRouter := gin.New()
	middleware.RegisterGlobalMiddleware(apiRouter, cfg.CorsOrigins())

	apiRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	apiRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routerGroup := apiRouter.Group("/dice-ledger-api")
	ledger.RegisterRoutes(routerGroup, db)
	game.RegisterRoutes(routerGroup, db)
	ingestion.RegisterRoutes(routerGroup, runner, guards...)

	return apiRouter
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
