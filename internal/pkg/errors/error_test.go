package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrFileNotFound)
	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %d, want %d", err.Code, ErrFileNotFound)
	}
	if err.Message != "File not found" {
		t.Errorf("Message = %q, want %q", err.Message, "File not found")
	}
	if err.HTTPStatus() != http.StatusNotFound {
		t.Errorf("HTTPStatus() = %d, want %d", err.HTTPStatus(), http.StatusNotFound)
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrFileStorage)

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match the cause via errors.Is")
	}
	if ExtractCode(err) != ErrFileStorage {
		t.Errorf("ExtractCode() = %d, want %d", ExtractCode(err), ErrFileStorage)
	}
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := New(ErrObjectNotFound)
	outer := Wrap(fmt.Errorf("get object: %w", inner), ErrFileStorage)

	if outer.Code != ErrObjectNotFound {
		t.Errorf("Code = %d, want inner code %d", outer.Code, ErrObjectNotFound)
	}
}

func TestExtractCodeDefaultsToInternal(t *testing.T) {
	if code := ExtractCode(errors.New("plain")); code != ErrInternalServer {
		t.Errorf("ExtractCode(plain error) = %d, want %d", code, ErrInternalServer)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		code   int
		client bool
		server bool
	}{
		{ErrFileEmptyBatch, true, false},
		{ErrFileMissingID, true, false},
		{ErrFileNotFound, true, false},
		{ErrFileStorage, false, true},
		{ErrInternalServer, false, true},
	}

	for _, tt := range tests {
		if got := IsClientError(tt.code); got != tt.client {
			t.Errorf("IsClientError(%d) = %v, want %v", tt.code, got, tt.client)
		}
		if got := IsServerError(tt.code); got != tt.server {
			t.Errorf("IsServerError(%d) = %v, want %v", tt.code, got, tt.server)
		}
	}
}

func TestFormatError(t *testing.T) {
	got := FormatError(ErrFileMissingID, "id param")
	want := "Missing or invalid id: id param"
	if got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}

	if got := FormatError(ErrFileEmptyBatch); got != "No files to upload" {
		t.Errorf("FormatError() = %q, want %q", got, "No files to upload")
	}
}
