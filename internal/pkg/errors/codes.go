package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1003

	// File errors (2000-2999)
	ErrFileNotFound    = 2000
	ErrFileEmptyBatch  = 2001
	ErrFileTooLarge    = 2002
	ErrFileStorage     = 2003
	ErrFileMissingID   = 2004
	ErrObjectNotFound  = 2005
	ErrMetadataFailure = 2006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},

	// File errors
	ErrFileNotFound:    {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrFileEmptyBatch:  {ErrFileEmptyBatch, http.StatusBadRequest, "No files to upload"},
	ErrFileTooLarge:    {ErrFileTooLarge, http.StatusBadRequest, "File size exceeds limit"},
	ErrFileStorage:     {ErrFileStorage, http.StatusInternalServerError, "Storage operation failed"},
	ErrFileMissingID:   {ErrFileMissingID, http.StatusBadRequest, "Missing or invalid id"},
	ErrObjectNotFound:  {ErrObjectNotFound, http.StatusNotFound, "Item not found"},
	ErrMetadataFailure: {ErrMetadataFailure, http.StatusInternalServerError, "Metadata operation failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
