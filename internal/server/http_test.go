package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/filevault/internal/conf"
	"github.com/lk2023060901/filevault/internal/file/biz"
	"github.com/lk2023060901/filevault/internal/file/service"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
)

func newTestServer(t *testing.T, checks ...HealthCheck) *HTTPServer {
	t.Helper()
	config := &conf.Config{
		Server: conf.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Upload: conf.UploadConfig{MultipartMemoryMB: 32},
	}
	svc := service.NewFileService(biz.NewFileUseCase(nil, nil, time.Hour, nil), nil)
	return NewHTTPServer(config, logger.Nop(), svc, checks...)
}

func getHealth(t *testing.T, s *HTTPServer) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("all backends healthy", func(t *testing.T) {
		s := newTestServer(t,
			HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "objectstore", Check: func(context.Context) error { return nil }},
		)

		w, body := getHealth(t, s)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body["status"])

		components, ok := body["components"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "ok", components["objectstore"])
	})

	t.Run("failing backend turns the response into a 503", func(t *testing.T) {
		s := newTestServer(t,
			HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "objectstore", Check: func(context.Context) error {
				return errors.New("connection refused")
			}},
		)

		w, body := getHealth(t, s)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unavailable", body["status"])

		components, ok := body["components"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "unavailable", components["objectstore"])
	})

	t.Run("no registered checks still reports ok", func(t *testing.T) {
		s := newTestServer(t)

		w, body := getHealth(t, s)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body["status"])
		assert.NotContains(t, body, "components")
	})
}
