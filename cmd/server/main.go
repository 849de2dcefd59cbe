package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/filevault/internal/conf"
	"github.com/lk2023060901/filevault/internal/data"
	"github.com/lk2023060901/filevault/internal/file/biz"
	filedata "github.com/lk2023060901/filevault/internal/file/data"
	"github.com/lk2023060901/filevault/internal/file/service"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
	"github.com/lk2023060901/filevault/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Wire the file domain
	fileRepo := filedata.NewFileRepo(d.DB)
	objectStore := filedata.NewMinIOObjectStore(d.MinIOClient, config.MinIO.Bucket)
	fileUseCase := biz.NewFileUseCase(fileRepo, objectStore, config.MinIO.PresignExpiry, log.Logger)
	fileService := service.NewFileService(fileUseCase, log)

	// Start HTTP server
	httpServer := server.NewHTTPServer(config, log, fileService,
		server.HealthCheck{Name: "database", Check: d.DB.HealthCheck},
		server.HealthCheck{Name: "objectstore", Check: d.MinIOClient.Ping},
	)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started",
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
