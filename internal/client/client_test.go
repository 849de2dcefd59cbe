package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer emulates the upload endpoints plus a presigned store target.
type fakeServer struct {
	mu        sync.Mutex
	stored    map[string][]byte // key -> bytes PUT to the store
	committed []PresignedUrlProp
	failPuts  map[string]bool // original names whose store PUT fails

	srv *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		stored:   make(map[string][]byte),
		failPuts: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/files/upload/smallFiles", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": "No files to upload"})
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": "No files to upload"})
			return
		}
		for _, fh := range files {
			f, err := fh.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(f)
			f.Close()
			require.NoError(t, err)
			fs.mu.Lock()
			fs.stored[fh.Filename] = data
			fs.mu.Unlock()
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "Files were uploaded successfully"})
	})
	mux.HandleFunc("POST /api/files/upload/presignedUrl", func(w http.ResponseWriter, r *http.Request) {
		var props []ShortFileProp
		require.NoError(t, json.NewDecoder(r.Body).Decode(&props))
		if len(props) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "No files to upload"})
			return
		}
		descriptors := make([]PresignedUrlProp, 0, len(props))
		for i, p := range props {
			key := fmt.Sprintf("key%d-%s", i, p.OriginalFileName)
			descriptors = append(descriptors, PresignedUrlProp{
				FileNameInBucket: key,
				OriginalFileName: p.OriginalFileName,
				FileSize:         p.FileSize,
				URL:              fs.srv.URL + "/store/" + key,
			})
		}
		json.NewEncoder(w).Encode(descriptors)
	})
	mux.HandleFunc("PUT /store/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		name := key[strings.Index(key, "-")+1:]
		if fs.failPuts[name] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		fs.mu.Lock()
		fs.stored[key] = data
		fs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/files/upload/saveFileInfo", func(w http.ResponseWriter, r *http.Request) {
		var descriptors []PresignedUrlProp
		require.NoError(t, json.NewDecoder(r.Body).Decode(&descriptors))
		fs.mu.Lock()
		fs.committed = append(fs.committed, descriptors...)
		fs.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"message": "Files saved successfully"})
	})

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) storedContent(key string) ([]byte, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.stored[key]
	return data, ok
}

func (fs *fakeServer) committedNames() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	names := make([]string, 0, len(fs.committed))
	for _, d := range fs.committed {
		names = append(names, d.OriginalFileName)
	}
	return names
}

func TestUploaderStateMachine(t *testing.T) {
	fs := newFakeServer(t)
	u, err := NewUploader(Config{BaseURL: fs.srv.URL, Mode: ModeProxy})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, u.State())

	require.Error(t, u.SelectFiles(nil), "empty selection must be rejected")
	assert.Equal(t, StateIdle, u.State())

	require.NoError(t, u.SelectFiles([]File{{Name: "a.txt", Data: []byte("a")}}))
	assert.Equal(t, StateFilesSelected, u.State())

	require.NoError(t, u.Upload(context.Background()))
	assert.Equal(t, StateSucceeded, u.State())

	// A terminal state accepts a fresh batch.
	require.NoError(t, u.SelectFiles([]File{{Name: "b.txt", Data: []byte("b")}}))
	assert.Equal(t, StateFilesSelected, u.State())
}

func TestUploaderConfig(t *testing.T) {
	_, err := NewUploader(Config{})
	assert.Error(t, err, "base URL is required")

	_, err = NewUploader(Config{BaseURL: "http://localhost", Mode: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestValidateCeilings(t *testing.T) {
	fs := newFakeServer(t)

	t.Run("proxy batch over the ceiling fails locally", func(t *testing.T) {
		u, err := NewUploader(Config{
			BaseURL:       fs.srv.URL,
			Mode:          ModeProxy,
			MaxProxyBytes: 10,
		})
		require.NoError(t, err)
		require.NoError(t, u.SelectFiles([]File{
			{Name: "a.bin", Data: []byte("123456")},
			{Name: "b.bin", Data: []byte("678901")},
		}))

		err = u.Upload(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
		assert.Equal(t, StateFailed, u.State())

		_, ok := fs.storedContent("a.bin")
		assert.False(t, ok, "nothing may be sent when validation fails")
	})

	t.Run("presigned ceiling is independent", func(t *testing.T) {
		u, err := NewUploader(Config{
			BaseURL:           fs.srv.URL,
			Mode:              ModePresigned,
			MaxProxyBytes:     10,
			MaxPresignedBytes: 1 << 20,
		})
		require.NoError(t, err)
		require.NoError(t, u.SelectFiles([]File{
			{Name: "big.bin", Data: make([]byte, 100)},
		}))
		assert.NoError(t, u.Validate())
	})
}

func TestProxyUpload(t *testing.T) {
	fs := newFakeServer(t)

	var mu sync.Mutex
	var last Progress
	u, err := NewUploader(Config{
		BaseURL: fs.srv.URL,
		Mode:    ModeProxy,
		OnProgress: func(p Progress) {
			mu.Lock()
			last = p
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	require.NoError(t, u.SelectFiles([]File{
		{Name: "hello.txt", Data: []byte("hello")},
		{Name: "world.txt", Data: []byte("world")},
	}))
	require.NoError(t, u.Upload(context.Background()))
	assert.Equal(t, StateSucceeded, u.State())

	data, ok := fs.storedContent("hello.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "*", last.FileName, "proxy progress is batch-wide")
	assert.Equal(t, float64(100), last.Percent)
}

func TestPresignedUpload(t *testing.T) {
	t.Run("uploads directly and commits every descriptor", func(t *testing.T) {
		fs := newFakeServer(t)

		var mu sync.Mutex
		finished := make(map[string]float64)
		u, err := NewUploader(Config{
			BaseURL: fs.srv.URL,
			Mode:    ModePresigned,
			OnProgress: func(p Progress) {
				mu.Lock()
				finished[p.FileName] = p.Percent
				mu.Unlock()
			},
		})
		require.NoError(t, err)

		require.NoError(t, u.SelectFiles([]File{
			{Name: "a.txt", Data: []byte("alpha")},
			{Name: "b.txt", Data: []byte("bravo")},
		}))
		require.NoError(t, u.Upload(context.Background()))
		assert.Equal(t, StateSucceeded, u.State())

		data, ok := fs.storedContent("key0-a.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("alpha"), data)

		assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, fs.committedNames())

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, float64(100), finished["a.txt"], "per-file progress must reach 100")
		assert.Equal(t, float64(100), finished["b.txt"])
	})

	t.Run("duplicate names keep distinct contents", func(t *testing.T) {
		fs := newFakeServer(t)

		u, err := NewUploader(Config{BaseURL: fs.srv.URL, Mode: ModePresigned})
		require.NoError(t, err)

		require.NoError(t, u.SelectFiles([]File{
			{Name: "dup.txt", Data: []byte("FIRST")},
			{Name: "dup.txt", Data: []byte("SECOND")},
		}))
		require.NoError(t, u.Upload(context.Background()))
		assert.Equal(t, StateSucceeded, u.State())

		first, ok := fs.storedContent("key0-dup.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("FIRST"), first)

		second, ok := fs.storedContent("key1-dup.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("SECOND"), second)

		assert.ElementsMatch(t, []string{"dup.txt", "dup.txt"}, fs.committedNames())
	})

	t.Run("failed transfer is excluded from the commit", func(t *testing.T) {
		fs := newFakeServer(t)
		fs.failPuts["bad.txt"] = true

		u, err := NewUploader(Config{BaseURL: fs.srv.URL, Mode: ModePresigned})
		require.NoError(t, err)

		require.NoError(t, u.SelectFiles([]File{
			{Name: "good.txt", Data: []byte("fine")},
			{Name: "bad.txt", Data: []byte("doomed")},
		}))

		err = u.Upload(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.txt")
		assert.Equal(t, StateFailed, u.State())

		assert.ElementsMatch(t, []string{"good.txt"}, fs.committedNames())
	})
}
