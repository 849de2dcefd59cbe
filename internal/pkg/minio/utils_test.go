package minio

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestValidateBucketName(t *testing.T) {
	valid := []string{"files", "my-bucket", "bucket123", "a1b"}
	for _, name := range valid {
		if err := ValidateBucketName(name); err != nil {
			t.Errorf("ValidateBucketName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"ab",
		strings.Repeat("a", 64),
		"MyBucket",
		"-bucket",
		"bucket-",
		"bucket--name",
		"xn--bucket",
		"bucket-s3alias",
		"192.168.1.1",
	}
	for _, name := range invalid {
		if err := ValidateBucketName(name); err == nil {
			t.Errorf("ValidateBucketName(%q) = nil, want error", name)
		}
	}
}

func TestValidateObjectName(t *testing.T) {
	if err := ValidateObjectName("aB3x9-report.pdf"); err != nil {
		t.Errorf("ValidateObjectName() = %v, want nil", err)
	}

	if err := ValidateObjectName(""); err == nil {
		t.Error("empty object name should be rejected")
	}

	if err := ValidateObjectName(strings.Repeat("a", 1025)); err == nil {
		t.Error("overlong object name should be rejected")
	}

	if err := ValidateObjectName("bad\x00name"); err == nil {
		t.Error("object name with null byte should be rejected")
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", "application/pdf"},
		{"notes.txt", "text/plain; charset=utf-8"},
		{"archive", "application/octet-stream"},
		{"blob.unknownext", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := DetectContentType(tt.path); got != tt.want {
			t.Errorf("DetectContentType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestProgressReader(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)

	var lastCurrent, lastTotal int64
	reader := NewProgressReader(bytes.NewReader(payload), int64(len(payload)), func(current, total int64) {
		lastCurrent = current
		lastTotal = total
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if len(data) != len(payload) {
		t.Errorf("read %d bytes, want %d", len(data), len(payload))
	}
	if lastCurrent != int64(len(payload)) {
		t.Errorf("final progress = %d, want %d", lastCurrent, len(payload))
	}
	if lastTotal != int64(len(payload)) {
		t.Errorf("reported total = %d, want %d", lastTotal, len(payload))
	}
}

func TestProgressReaderNilCallback(t *testing.T) {
	src := strings.NewReader("abc")
	if got := NewProgressReader(src, 3, nil); got != src {
		t.Error("nil callback should return the reader unchanged")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{4 << 20, "4.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
