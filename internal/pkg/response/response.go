package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/filevault/internal/pkg/errors"
)

// MessageResponse is the `{message}` body used by the metadata and delete
// endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is the `{status, message}` body used by the proxy upload
// endpoint. Status is either "ok" or "fail".
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON sends an arbitrary payload with HTTP 200
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Message sends a `{message}` body with the given HTTP status
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

// OK sends a `{message}` body with HTTP 200
func OK(c *gin.Context, message string) {
	Message(c, http.StatusOK, message)
}

// UploadOK sends a `{status: "ok", message}` body with HTTP 200
func UploadOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Message: message})
}

// UploadFail sends a `{status: "fail", message}` body with the given status
func UploadFail(c *gin.Context, status int, message string) {
	c.JSON(status, StatusResponse{Status: "fail", Message: message})
}

// BadRequest sends a 400 `{message}` body
func BadRequest(c *gin.Context, message string) {
	Message(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 `{message}` body
func NotFound(c *gin.Context, message string) {
	Message(c, http.StatusNotFound, message)
}

// InternalError sends a 500 `{message}` body
func InternalError(c *gin.Context, message string) {
	Message(c, http.StatusInternalServerError, message)
}

// HandleError maps an application error to its HTTP status and `{message}`
// body. Unrecognized errors become a generic 500; details stay in the logs.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	status := apperrors.GetHTTPStatus(code)

	message := apperrors.GetMessage(code)
	if code == apperrors.ErrInternalServer {
		message = "Internal server error"
	}

	Message(c, status, message)
}
