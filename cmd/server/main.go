package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/residenza/service-facility/internal/application"
	"github.com/residenza/service-facility/internal/config"
	facilityEvents "github.com/residenza/service-facility/internal/events"
	"github.com/residenza/service-facility/internal/handler"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/blob"
	"github.com/residenza/service-facility/internal/platform/cache"
	"github.com/residenza/service-facility/internal/platform/database"
	"github.com/residenza/service-facility/internal/platform/health"
	"github.com/residenza/service-facility/internal/platform/kafka"
	"github.com/residenza/service-facility/internal/platform/logger"
	"github.com/residenza/service-facility/internal/platform/middleware"
	"github.com/residenza/service-facility/internal/platform/validation"
	"github.com/residenza/service-facility/internal/repository"
)

const serviceName = "service-facility"

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("FACILITY_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.App.Env, cfg.App.LogLevel, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.Int("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	// Connect to database and apply migrations
	db, err := database.Connect(cfg.Postgres(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database pool", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := validation.Register(); err != nil {
		log.Fatal("failed to register request validators", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// Initialize Kafka producer
	var producer kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		producer = kafkaProducer
	} else {
		log.Warn("kafka brokers not configured, domain events are discarded")
	}

	healthHandler := health.NewHandler(db, serviceName)

	// Initialize repositories. The facility registry is read through Redis when
	// configured and through an in-process cache otherwise. Entries are only
	// invalidated by facility events, so without Kafka nothing is cached.
	facilityTTL := cfg.Redis.FacilityTTL
	if !cfg.Kafka.Enabled() {
		facilityTTL = 0
	}
	var facilityStore cache.Store = cache.NewMemory()
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewClient(cfg.Cache(), log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		healthHandler.AddChecker("redis", redisClient.Ping)
		facilityStore = redisClient
	}
	facilityCache := repository.NewCachedFacilityRepository(
		repository.NewGormFacilityRepository(db),
		facilityStore,
		facilityTTL,
		log,
	)

	bookingRepo := repository.NewGormBookingRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	complaintRepo := repository.NewGormComplaintRepository(db)
	attachmentRepo := repository.NewGormAttachmentRepository(db)

	var blobStore blob.Store
	if cfg.Blob.Bucket != "" {
		s3Store, err := blob.NewS3Store(context.Background(), cfg.BlobStore(), log)
		if err != nil {
			log.Fatal("failed to initialize blob storage", zap.Error(err))
		}
		blobStore = s3Store
	} else {
		log.Warn("blob bucket not configured, complaint attachments are disabled")
	}

	// Initialize application services
	facilityService := application.NewFacilityService(facilityCache, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		facilityCache,
		userRepo,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Location(),
		log,
	)
	complaintService := application.NewComplaintService(
		complaintRepo,
		attachmentRepo,
		blobStore,
		userRepo,
		producer,
		cfg.Kafka.ComplaintTopic,
		log,
	)

	// Start the facility event consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled() {
		facilityConsumer := facilityEvents.NewFacilityEventConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.GroupPrefix+serviceName,
			cfg.Kafka.FacilityTopic,
			facilityCache,
			log,
		)
		defer func() { _ = facilityConsumer.Close() }()

		go func() {
			log.Info("starting facility event consumer", zap.String("topic", cfg.Kafka.FacilityTopic))
			if err := facilityConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("facility event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.HTTP.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.BodyLimitMiddleware(cfg.HTTP.BodyLimitBytes))

	healthHandler.RegisterRoutes(router)

	api := router.Group("/api/v1")
	handler.NewFacilityHandler(facilityService, bookingService).RegisterRoutes(api, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(api, jwtManager)
	handler.NewComplaintHandler(complaintService).RegisterRoutes(api, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop consuming before draining HTTP
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
