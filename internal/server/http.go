package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/filevault/internal/conf"
	"github.com/lk2023060901/filevault/internal/file/service"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
)

// HealthCheck names one backend liveness probe run by the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HTTPServer struct {
	server      *http.Server
	logger      *logger.Logger
	fileService *service.FileService
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	fileService *service.FileService,
	checks ...HealthCheck,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(cors.Default())

	// Multipart batches are buffered in memory up to this limit before
	// spilling to disk.
	router.MaxMultipartMemory = int64(config.Upload.MultipartMemoryMB) << 20

	router.GET("/health", healthHandler(log, checks))

	api := router.Group("/api")
	fileService.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger:      log,
		fileService: fileService,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// healthHandler pings every registered backend. Any failing check turns the
// response into a 503 so load balancers stop routing here.
func healthHandler(log *logger.Logger, checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for _, chk := range checks {
			if err := chk.Check(ctx); err != nil {
				log.Warn("health check failed",
					zap.String("component", chk.Name),
					zap.Error(err))
				components[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			components[chk.Name] = "ok"
		}

		body := gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}
		if status != http.StatusOK {
			body["status"] = "unavailable"
		}
		if len(components) > 0 {
			body["components"] = components
		}
		c.JSON(status, body)
	}
}
