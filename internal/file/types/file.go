package types

import "time"

// FileRecord is the persisted metadata row describing one stored object.
// A record exists if and only if, at the time of the last successful write,
// the object existed in Bucket under FileName. Partial failures can violate
// this temporarily; nothing repairs it automatically.
type FileRecord struct {
	ID           string    `json:"id"`
	Bucket       string    `json:"bucket"`
	FileName     string    `json:"fileName"`     // storage key inside the bucket
	OriginalName string    `json:"originalName"` // presentation and content-disposition only
	Size         int64     `json:"size"`         // client-declared, not re-verified
	CreatedAt    time.Time `json:"createdAt"`
}

// ShortFileProp is the minimal descriptor a client sends when requesting a
// presigned upload URL.
type ShortFileProp struct {
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
}

// PresignedUpload pairs a generated storage key with its signed upload URL.
// It is transient: produced by the server, consumed by the client within the
// URL expiry window, never persisted. Stale URLs are rejected by the store
// itself.
type PresignedUpload struct {
	FileNameInBucket string `json:"fileNameInBucket"`
	OriginalFileName string `json:"originalFileName"`
	FileSize         int64  `json:"fileSize"`
	URL              string `json:"url"`
}

// UploadedFile is one file of a proxy-mode upload batch, fully buffered.
type UploadedFile struct {
	OriginalName string
	Data         []byte
}

// DownloadedFile is the result of the inline (small-file) download path.
type DownloadedFile struct {
	OriginalName string
	Data         []byte
}
