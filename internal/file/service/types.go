package service

import (
	"time"

	"github.com/lk2023060901/filevault/internal/file/types"
)

// ShortFilePropRequest describes one file the client wants a presigned
// upload URL for.
type ShortFilePropRequest struct {
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
}

// PresignedUrlProp is the descriptor exchanged by both phases of the
// presigned upload flow: the server returns it from the URL-minting
// endpoint and the client echoes it back to commit metadata.
type PresignedUrlProp struct {
	FileNameInBucket string `json:"fileNameInBucket"`
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
	URL              string `json:"url"`
}

// FileResponse is one row of the file listing.
type FileResponse struct {
	ID           string    `json:"id"`
	Bucket       string    `json:"bucket"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toPresignedUrlProps(uploads []types.PresignedUpload) []PresignedUrlProp {
	out := make([]PresignedUrlProp, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, PresignedUrlProp{
			FileNameInBucket: u.FileNameInBucket,
			OriginalFileName: u.OriginalFileName,
			FileSize:         u.FileSize,
			URL:              u.URL,
		})
	}
	return out
}

func toFileResponses(records []*types.FileRecord) []FileResponse {
	out := make([]FileResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, FileResponse{
			ID:           rec.ID,
			Bucket:       rec.Bucket,
			FileName:     rec.FileName,
			OriginalName: rec.OriginalName,
			Size:         rec.Size,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out
}
