package service

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/filevault/internal/file/biz"
	"github.com/lk2023060901/filevault/internal/file/types"
	apperrors "github.com/lk2023060901/filevault/internal/pkg/errors"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
	"github.com/lk2023060901/filevault/internal/pkg/response"
)

// FileService exposes the upload, download, listing and delete endpoints.
type FileService struct {
	uc  *biz.FileUseCase
	log *logger.Logger
}

// NewFileService creates a FileService.
func NewFileService(uc *biz.FileUseCase, log *logger.Logger) *FileService {
	if log == nil {
		log = logger.Nop()
	}
	return &FileService{
		uc:  uc,
		log: log,
	}
}

// RegisterRoutes mounts the file endpoints under the given group.
func (s *FileService) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.GET("", s.ListFiles)
		files.POST("/upload/presignedUrl", s.GeneratePresignedURLs)
		files.POST("/upload/saveFileInfo", s.SaveFileInfo)
		files.POST("/upload/smallFiles", s.UploadSmallFiles)
		files.GET("/download/presignedUrl/:id", s.PresignedDownloadURL)
		files.GET("/download/smallFiles/:id", s.DownloadSmallFile)
		files.DELETE("/delete/:id", s.DeleteFile)
	}
}

// GeneratePresignedURLs mints one upload URL per requested file and returns
// the descriptors as a bare JSON array.
func (s *FileService) GeneratePresignedURLs(c *gin.Context) {
	var req []ShortFilePropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "No files to upload")
		return
	}
	if len(req) == 0 {
		response.BadRequest(c, "No files to upload")
		return
	}

	props := make([]types.ShortFileProp, 0, len(req))
	for _, f := range req {
		props = append(props, types.ShortFileProp{
			OriginalFileName: f.OriginalFileName,
			FileSize:         f.FileSize,
		})
	}

	uploads, err := s.uc.GeneratePresignedUploads(c.Request.Context(), props)
	if err != nil {
		s.log.Error("failed to generate presigned urls", zap.Int("files", len(props)), zap.Error(err))
		response.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPresignedUrlProps(uploads))
}

// SaveFileInfo records metadata for files the client uploaded through
// presigned URLs. An empty list commits nothing and still succeeds.
func (s *FileService) SaveFileInfo(c *gin.Context) {
	var req []PresignedUrlProp
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "No files to upload")
		return
	}

	uploads := make([]types.PresignedUpload, 0, len(req))
	for _, u := range req {
		uploads = append(uploads, types.PresignedUpload{
			FileNameInBucket: u.FileNameInBucket,
			OriginalFileName: u.OriginalFileName,
			FileSize:         u.FileSize,
			URL:              u.URL,
		})
	}

	if err := s.uc.SaveFileInfos(c.Request.Context(), uploads); err != nil {
		s.log.Error("failed to save file infos", zap.Int("files", len(uploads)), zap.Error(err))
		response.HandleError(c, err)
		return
	}

	response.OK(c, "Files saved successfully")
}

// UploadSmallFiles receives a multipart batch under the repeated form field
// "file", stores every file and records its metadata.
func (s *FileService) UploadSmallFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.UploadFail(c, http.StatusBadRequest, "No files to upload")
		return
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		response.UploadFail(c, http.StatusBadRequest, "No files to upload")
		return
	}

	files := make([]types.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.UploadFail(c, http.StatusInternalServerError, "Upload error")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.UploadFail(c, http.StatusInternalServerError, "Upload error")
			return
		}
		files = append(files, types.UploadedFile{
			OriginalName: fh.Filename,
			Data:         data,
		})
	}

	if err := s.uc.ProxyUpload(c.Request.Context(), files); err != nil {
		s.log.Error("proxy upload failed", zap.Int("files", len(files)), zap.Error(err))
		status := apperrors.GetHTTPStatus(apperrors.ExtractCode(err))
		message := "Upload error"
		if apperrors.Is(err, apperrors.ErrFileEmptyBatch) {
			message = "No files to upload"
		}
		response.UploadFail(c, status, message)
		return
	}

	response.UploadOK(c, "Files were uploaded successfully")
}

// PresignedDownloadURL returns a signed GET URL for the file's object as a
// JSON-encoded string.
func (s *FileService) PresignedDownloadURL(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Missing or invalid id")
		return
	}

	url, err := s.uc.PresignedDownload(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsClientError(apperrors.ExtractCode(err)) {
			s.notFoundOrBadRequest(c, err, "Item not found")
			return
		}
		s.log.Error("failed to create download url", zap.String("id", id), zap.Error(err))
		response.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}

// DownloadSmallFile streams the object back inline, fully buffered, with the
// original file name in the content-disposition header.
func (s *FileService) DownloadSmallFile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Invalid request")
		return
	}

	dl, err := s.uc.DownloadSmall(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsClientError(apperrors.ExtractCode(err)) {
			s.notFoundOrBadRequest(c, err, "Item not found")
			return
		}
		s.log.Error("small file download failed", zap.String("id", id), zap.Error(err))
		response.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+dl.OriginalName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", dl.Data)
}

// DeleteFile removes the object from the store first and the metadata record
// second. A store failure leaves the record in place.
func (s *FileService) DeleteFile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Missing or invalid id")
		return
	}

	if err := s.uc.Delete(c.Request.Context(), id); err != nil {
		code := apperrors.ExtractCode(err)
		switch {
		case code == apperrors.ErrFileMissingID:
			response.BadRequest(c, "Missing or invalid id")
		case code == apperrors.ErrFileNotFound:
			response.NotFound(c, "File not found")
		case code == apperrors.ErrFileStorage:
			s.log.Error("store delete failed", zap.String("id", id), zap.Error(err))
			response.InternalError(c, "Failed to delete file from storage")
		default:
			s.log.Error("delete failed", zap.String("id", id), zap.Error(err))
			response.InternalError(c, "Internal server error")
		}
		return
	}

	response.OK(c, "File deleted successfully")
}

// ListFiles returns every stored file's metadata, newest first.
func (s *FileService) ListFiles(c *gin.Context) {
	records, err := s.uc.List(c.Request.Context())
	if err != nil {
		s.log.Error("file listing failed", zap.Error(err))
		response.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponses(records))
}

// notFoundOrBadRequest keeps the download endpoints' distinction between a
// missing id (400) and a missing file or object (404).
func (s *FileService) notFoundOrBadRequest(c *gin.Context, err error, notFoundMsg string) {
	code := apperrors.ExtractCode(err)
	if code == apperrors.ErrFileMissingID {
		response.BadRequest(c, "Missing or invalid id")
		return
	}
	response.Message(c, apperrors.GetHTTPStatus(code), notFoundMsg)
}
