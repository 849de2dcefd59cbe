// Package client is a Go client for the filevault HTTP API. It mirrors the
// browser upload flow: pick files, validate the batch against the mode's
// size ceiling, then transfer either through the server (proxy mode) or
// straight to the object store via presigned URLs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/filevault/internal/pkg/logger"
	pkgminio "github.com/lk2023060901/filevault/internal/pkg/minio"
)

// State is the upload lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateFilesSelected State = "filesSelected"
	StateValidating    State = "validating"
	StateUploading     State = "uploading"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)

// Mode selects the transfer path.
type Mode string

const (
	// ModeProxy sends bytes through the server's multipart endpoint.
	ModeProxy Mode = "proxy"
	// ModePresigned uploads directly to the object store via presigned URLs.
	ModePresigned Mode = "presigned"
)

// Default size ceilings per mode, reflecting the typical request-body limits
// of the two transport paths.
const (
	DefaultMaxProxyBytes     = 4 << 20
	DefaultMaxPresignedBytes = 100 << 20
)

// File is one file selected for upload.
type File struct {
	Name string
	Data []byte
}

// Progress reports transfer progress for one file. Proxy-mode progress is
// synthetic (the whole batch advances as a single unit named "*"); presigned
// progress is derived from actual bytes written per file.
type Progress struct {
	FileName string
	Percent  float64
}

// ProgressFunc receives progress updates. It must not block.
type ProgressFunc func(Progress)

// ShortFileProp mirrors the server's presigned-URL request entry.
type ShortFileProp struct {
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
}

// PresignedUrlProp mirrors the server's presigned-URL descriptor.
type PresignedUrlProp struct {
	FileNameInBucket string `json:"fileNameInBucket"`
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
	URL              string `json:"url"`
}

// Config configures an Uploader.
type Config struct {
	BaseURL           string
	Mode              Mode
	MaxProxyBytes     int64
	MaxPresignedBytes int64
	HTTPClient        *http.Client
	OnProgress        ProgressFunc
	Logger            *logger.Logger
}

// Uploader drives one upload batch through the state machine
// idle -> filesSelected -> validating -> uploading -> succeeded|failed.
// It is not safe for concurrent use; one Uploader serves one batch at a time.
type Uploader struct {
	baseURL           string
	mode              Mode
	maxProxyBytes     int64
	maxPresignedBytes int64
	httpClient        *http.Client
	onProgress        ProgressFunc
	log               *logger.Logger

	mu    sync.Mutex
	state State
	files []File
}

// NewUploader creates an Uploader in the idle state.
func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeProxy
	}
	if cfg.Mode != ModeProxy && cfg.Mode != ModePresigned {
		return nil, fmt.Errorf("client: unknown mode %q", cfg.Mode)
	}
	if cfg.MaxProxyBytes <= 0 {
		cfg.MaxProxyBytes = DefaultMaxProxyBytes
	}
	if cfg.MaxPresignedBytes <= 0 {
		cfg.MaxPresignedBytes = DefaultMaxPresignedBytes
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Uploader{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		mode:              cfg.Mode,
		maxProxyBytes:     cfg.MaxProxyBytes,
		maxPresignedBytes: cfg.MaxPresignedBytes,
		httpClient:        cfg.HTTPClient,
		onProgress:        cfg.OnProgress,
		log:               cfg.Logger,
		state:             StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *Uploader) setState(s State) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

// SelectFiles stages a batch for upload. Allowed from idle and from the
// terminal states, which resets the machine for the next batch.
func (u *Uploader) SelectFiles(files []File) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch u.state {
	case StateIdle, StateFilesSelected, StateSucceeded, StateFailed:
	default:
		return fmt.Errorf("client: cannot select files while %s", u.state)
	}
	if len(files) == 0 {
		return fmt.Errorf("client: no files selected")
	}
	u.files = files
	u.state = StateFilesSelected
	return nil
}

// ceiling returns the total-size limit for the configured mode.
func (u *Uploader) ceiling() int64 {
	if u.mode == ModePresigned {
		return u.maxPresignedBytes
	}
	return u.maxProxyBytes
}

// Validate checks the staged batch against the mode's total-size ceiling.
// Validation is purely local; nothing is sent.
func (u *Uploader) Validate() error {
	u.mu.Lock()
	if u.state != StateFilesSelected {
		u.mu.Unlock()
		return fmt.Errorf("client: no files staged")
	}
	u.state = StateValidating
	files := u.files
	u.mu.Unlock()

	var total int64
	for _, f := range files {
		total += int64(len(f.Data))
	}
	if total > u.ceiling() {
		u.setState(StateFilesSelected)
		return fmt.Errorf("client: batch size %s exceeds %s limit of %s",
			pkgminio.FormatBytes(total), u.mode, pkgminio.FormatBytes(u.ceiling()))
	}

	u.setState(StateFilesSelected)
	return nil
}

// Upload validates and transfers the staged batch. On return the state is
// StateSucceeded or StateFailed; either way a new batch can be selected.
func (u *Uploader) Upload(ctx context.Context) error {
	if err := u.Validate(); err != nil {
		u.setState(StateFailed)
		return err
	}

	u.mu.Lock()
	files := u.files
	u.mu.Unlock()
	u.setState(StateUploading)

	var err error
	if u.mode == ModePresigned {
		err = u.uploadPresigned(ctx, files)
	} else {
		err = u.uploadProxy(ctx, files)
	}

	if err != nil {
		u.setState(StateFailed)
		return err
	}
	u.setState(StateSucceeded)
	return nil
}

// uploadProxy posts the whole batch as one multipart request. The request
// primitive exposes no transfer progress, so a synthetic percentage ticks up
// while the request is in flight.
func (u *Uploader) uploadProxy(ctx context.Context, files []File) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile("file", f.Name)
		if err != nil {
			return fmt.Errorf("client: build multipart: %w", err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("client: build multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("client: build multipart: %w", err)
	}

	stopTicker := u.startSyntheticProgress()
	defer stopTicker()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.baseURL+"/api/files/upload/smallFiles", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: proxy upload: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("client: proxy upload: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("client: proxy upload failed: %s", body.Message)
	}

	u.report("*", 100)
	return nil
}

// startSyntheticProgress emits an incrementing batch-wide percentage until
// the returned stop function is called. It caps below 100; the caller reports
// completion.
func (u *Uploader) startSyntheticProgress() func() {
	if u.onProgress == nil {
		return func() {}
	}
	done := make(chan struct{})
	var once sync.Once
	go func() {
		percent := 0.0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if percent < 95 {
					percent += 5
				}
				u.report("*", percent)
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// uploadPresigned runs the two-phase flow: mint URLs, PUT every file
// directly to the store in parallel, then commit metadata for the files
// whose transfer succeeded. Files that fail to transfer are excluded from
// the commit; if any file failed the batch is reported as failed even
// though the successful subset was committed.
func (u *Uploader) uploadPresigned(ctx context.Context, files []File) error {
	props := make([]ShortFileProp, 0, len(files))
	for _, f := range files {
		props = append(props, ShortFileProp{
			OriginalFileName: f.Name,
			FileSize:         int64(len(f.Data)),
		})
	}

	descriptors, err := u.requestPresignedURLs(ctx, props)
	if err != nil {
		return err
	}

	type result struct {
		descriptor PresignedUrlProp
		err        error
	}
	results := make([]result, len(descriptors))

	// Each file is independent; one failed transfer must not cancel the
	// others, so no errgroup here. Descriptors come back in request order,
	// so files pair with them by index; names cannot pair them since a
	// batch may hold duplicates.
	var wg sync.WaitGroup
	for i, d := range descriptors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = result{descriptor: d, err: u.putToStore(ctx, d, files[i])}
		}()
	}
	wg.Wait()

	succeeded := make([]PresignedUrlProp, 0, len(results))
	var failed []string
	for _, res := range results {
		if res.err != nil {
			u.log.Warn("presigned transfer failed",
				zap.String("file", res.descriptor.OriginalFileName),
				zap.Error(res.err))
			failed = append(failed, res.descriptor.OriginalFileName)
			continue
		}
		succeeded = append(succeeded, res.descriptor)
	}

	if len(succeeded) > 0 {
		if err := u.saveFileInfo(ctx, succeeded); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("client: %d of %d transfers failed: %s",
			len(failed), len(descriptors), strings.Join(failed, ", "))
	}
	return nil
}

func (u *Uploader) requestPresignedURLs(ctx context.Context, props []ShortFileProp) ([]PresignedUrlProp, error) {
	var descriptors []PresignedUrlProp
	if err := u.postJSON(ctx, "/api/files/upload/presignedUrl", props, &descriptors); err != nil {
		return nil, fmt.Errorf("client: request presigned urls: %w", err)
	}
	if len(descriptors) != len(props) {
		return nil, fmt.Errorf("client: expected %d descriptors, got %d", len(props), len(descriptors))
	}
	return descriptors, nil
}

// putToStore uploads one file's bytes directly to its presigned URL,
// reporting real per-file progress.
func (u *Uploader) putToStore(ctx context.Context, d PresignedUrlProp, f File) error {
	size := int64(len(f.Data))
	var body io.Reader = bytes.NewReader(f.Data)
	if u.onProgress != nil {
		body = pkgminio.NewProgressReader(body, size, func(transferred, total int64) {
			if total > 0 {
				u.report(f.Name, float64(transferred)/float64(total)*100)
			}
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.URL, body)
	if err != nil {
		return err
	}
	req.ContentLength = size

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store returned %s", resp.Status)
	}
	return nil
}

func (u *Uploader) saveFileInfo(ctx context.Context, descriptors []PresignedUrlProp) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := u.postJSON(ctx, "/api/files/upload/saveFileInfo", descriptors, &body); err != nil {
		return fmt.Errorf("client: save file info: %w", err)
	}
	return nil
}

func (u *Uploader) postJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, msg.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (u *Uploader) report(name string, percent float64) {
	if u.onProgress != nil {
		u.onProgress(Progress{FileName: name, Percent: percent})
	}
}
