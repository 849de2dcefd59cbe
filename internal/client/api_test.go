package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeReadServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]FileInfo{
			{ID: "id-1", Bucket: "b", FileName: "ab1cd-a.txt", OriginalName: "a.txt", Size: 5, CreatedAt: time.Now()},
		})
	})
	mux.HandleFunc("GET /api/files/download/presignedUrl/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "id-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Item not found"})
			return
		}
		json.NewEncoder(w).Encode("https://store.example/get/ab1cd-a.txt")
	})
	mux.HandleFunc("GET /api/files/download/smallFiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="a.txt"`)
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("alpha"))
	})
	mux.HandleFunc("DELETE /api/files/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "id-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "File not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "File deleted successfully"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIList(t *testing.T) {
	srv := newFakeReadServer(t)
	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	files, err := api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].OriginalName)
}

func TestAPIDownload(t *testing.T) {
	srv := newFakeReadServer(t)
	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	name, data, err := api.Download(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name)
	assert.Equal(t, []byte("alpha"), data)
}

func TestAPIPresignedDownloadURL(t *testing.T) {
	srv := newFakeReadServer(t)
	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	url, err := api.PresignedDownloadURL(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Contains(t, url, "ab1cd-a.txt")

	_, err = api.PresignedDownloadURL(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Item not found")
}

func TestAPIDelete(t *testing.T) {
	srv := newFakeReadServer(t)
	api, err := NewAPI(srv.URL, nil)
	require.NoError(t, err)

	require.NoError(t, api.Delete(context.Background(), "id-1"))

	err = api.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found")
}
