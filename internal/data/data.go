package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/filevault/internal/conf"
	filedata "github.com/lk2023060901/filevault/internal/file/data"
	"github.com/lk2023060901/filevault/internal/pkg/database"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
	pkgminio "github.com/lk2023060901/filevault/internal/pkg/minio"
	"go.uber.org/zap"
)

// Data holds the shared infrastructure handles: the metadata database and
// the object store client.
type Data struct {
	DB          *database.DB
	MinIOClient *pkgminio.Client
	Logger      *logger.Logger
}

// NewData connects to Postgres and MinIO, runs migrations and makes sure the
// configured bucket exists. The returned cleanup closes both connections.
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := initDB(config, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	minioClient, err := initMinIO(config, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	d := &Data{
		DB:          db,
		MinIOClient: minioClient,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if err := minioClient.Close(); err != nil {
			log.Warn("failed to close minio client", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}

	return d, cleanup, nil
}

func initDB(config *conf.Config, log *logger.Logger) (*database.DB, error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&filedata.FilePO{}); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database initialized successfully")
	return db, nil
}

func initMinIO(config *conf.Config, log *logger.Logger) (*pkgminio.Client, error) {
	cfg := pkgminio.DefaultConfig()
	cfg.Endpoint = config.MinIO.Endpoint
	cfg.AccessKeyID = config.MinIO.AccessKey
	cfg.SecretAccessKey = config.MinIO.SecretKey
	cfg.UseSSL = config.MinIO.UseSSL

	client, err := pkgminio.NewClient(cfg, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.EnsureBucket(ctx, config.MinIO.Bucket); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure bucket %q: %w", config.MinIO.Bucket, err)
	}

	log.Info("minio initialized successfully",
		zap.String("endpoint", config.MinIO.Endpoint),
		zap.String("bucket", config.MinIO.Bucket))
	return client, nil
}
