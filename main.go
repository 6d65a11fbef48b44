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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fisiocal/config"
	"fisiocal/internal/repository"
	"fisiocal/internal/scheduler"
	"fisiocal/internal/service"
	"fisiocal/internal/storage"
	"fisiocal/internal/transport/rest"
	"fisiocal/internal/transport/websocket"
	"fisiocal/pkg/database"
	"fisiocal/pkg/logger"
	"fisiocal/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, "./migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
		fileStorage = s3Storage
		log.Info("S3 storage initialized", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		log.Warn("S3 storage not configured, calendar export archiving is disabled")
	}

	schedulingMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)

	repos := repository.NewRepositories(db)

	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(service.Deps{
		Repos:       repos,
		Logger:      log,
		Config:      cfg,
		FileStorage: fileStorage,
		Metrics:     schedulingMetrics,
		Notifier:    hub,
	})

	jobs := scheduler.NewScheduler(services, cfg.Jobs, log)
	if err := jobs.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	handler := rest.NewHandler(services, log, cfg, hub, schedulingMetrics)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler.InitRoutes(router)

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	jobs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("failed to stop server", zap.Error(err))
	}

	log.Info("server stopped")
}
