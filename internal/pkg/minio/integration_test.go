package minio

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupLiveClient connects to a real MinIO server. Gated on
// MINIO_TEST_ENDPOINT so the suite stays green without one.
func setupLiveClient(t *testing.T) *Client {
	t.Helper()
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set, skipping live MinIO tests")
	}

	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.AccessKeyID = envOr("MINIO_TEST_ACCESS_KEY", "minioadmin")
	cfg.SecretAccessKey = envOr("MINIO_TEST_SECRET_KEY", "minioadmin")
	cfg.UseSSL = false

	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestLiveObjectRoundTrip(t *testing.T) {
	client := setupLiveClient(t)
	ctx := context.Background()
	bucket := "filevault-it"

	require.NoError(t, client.EnsureBucket(ctx, bucket))

	content := []byte("integration round trip")
	_, err := client.PutObject(ctx, bucket, "it/round-trip.txt",
		bytes.NewReader(content), int64(len(content)), PutObjectOptions{
			ContentType: "text/plain",
		})
	require.NoError(t, err)

	obj, err := client.GetObject(ctx, bucket, "it/round-trip.txt", GetObjectOptions{})
	require.NoError(t, err)
	got, err := io.ReadAll(obj)
	obj.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := client.StatObject(ctx, bucket, "it/round-trip.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), info.Size)

	require.NoError(t, client.RemoveObject(ctx, bucket, "it/round-trip.txt", RemoveObjectOptions{}))

	_, err = client.StatObject(ctx, bucket, "it/round-trip.txt")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLivePresignedURLs(t *testing.T) {
	client := setupLiveClient(t)
	ctx := context.Background()
	bucket := "filevault-it"

	require.NoError(t, client.EnsureBucket(ctx, bucket))

	putURL, err := client.PresignedPutObject(ctx, bucket, "it/presigned.bin", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, putURL.String(), "it/presigned.bin")

	getURL, err := client.PresignedGetObject(ctx, bucket, "it/presigned.bin", time.Hour, nil)
	require.NoError(t, err)
	assert.Contains(t, getURL.String(), "it/presigned.bin")
}
