package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// FileInfo is one row of the server's file listing.
type FileInfo struct {
	ID           string    `json:"id"`
	Bucket       string    `json:"bucket"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

// API is a thin client for the read and delete endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates an API client. A nil httpClient falls back to a client with
// a 5 minute timeout.
func NewAPI(baseURL string, httpClient *http.Client) (*API, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// List fetches all file records.
func (a *API) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	if err := a.getJSON(ctx, "/api/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// PresignedDownloadURL fetches a signed GET URL for the file.
func (a *API) PresignedDownloadURL(ctx context.Context, id string) (string, error) {
	var url string
	if err := a.getJSON(ctx, "/api/files/download/presignedUrl/"+id, &url); err != nil {
		return "", err
	}
	return url, nil
}

// Download fetches a file inline through the server and returns its original
// name and content.
func (a *API) Download(ctx context.Context, id string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/api/files/download/smallFiles/"+id, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, a.responseError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	name := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = params["filename"]
		}
	}
	return name, data, nil
}

// Delete removes the file's object and metadata record.
func (a *API) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		a.baseURL+"/api/files/delete/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.responseError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (a *API) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.responseError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) responseError(resp *http.Response) error {
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, msg.Message)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
