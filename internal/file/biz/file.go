package biz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/filevault/internal/file/types"
	apperrors "github.com/lk2023060901/filevault/internal/pkg/errors"
	"github.com/lk2023060901/filevault/internal/pkg/shortid"
)

// FileRepo persists file metadata records.
type FileRepo interface {
	Create(ctx context.Context, record *types.FileRecord) error
	CreateBatch(ctx context.Context, records []*types.FileRecord) error
	GetByID(ctx context.Context, id string) (*types.FileRecord, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*types.FileRecord, error)
}

// ObjectStore abstracts the object storage backend. Keys are opaque to the
// store; the use case owns key generation.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	PresignedPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// FileUseCase implements the upload, download, listing and delete flows.
type FileUseCase struct {
	repo          FileRepo
	store         ObjectStore
	presignExpiry time.Duration
	log           *zap.Logger
}

// NewFileUseCase creates a FileUseCase.
func NewFileUseCase(repo FileRepo, store ObjectStore, presignExpiry time.Duration, log *zap.Logger) *FileUseCase {
	if presignExpiry <= 0 {
		presignExpiry = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileUseCase{
		repo:          repo,
		store:         store,
		presignExpiry: presignExpiry,
		log:           log,
	}
}

// storageKey prepends a short random prefix so repeated uploads of the same
// file name never collide in the bucket.
func storageKey(originalName string) string {
	return fmt.Sprintf("%s-%s", shortid.MustNew(shortid.DefaultLength), originalName)
}

// ProxyUpload stores every file of the batch in the object store and records
// its metadata. Files are processed concurrently; the first failure cancels
// the remaining work and is returned. Files already stored when a sibling
// fails are not rolled back.
func (uc *FileUseCase) ProxyUpload(ctx context.Context, files []types.UploadedFile) error {
	if len(files) == 0 {
		return ErrEmptyBatch
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			return uc.storeOne(ctx, f)
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Error("proxy upload batch failed", zap.Int("files", len(files)), zap.Error(err))
		return err
	}
	return nil
}

func (uc *FileUseCase) storeOne(ctx context.Context, f types.UploadedFile) error {
	key := storageKey(f.OriginalName)
	size := int64(len(f.Data))

	if err := uc.store.Put(ctx, key, bytes.NewReader(f.Data), size, ""); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorage)
	}

	record := &types.FileRecord{
		Bucket:       uc.store.Bucket(),
		FileName:     key,
		OriginalName: f.OriginalName,
		Size:         size,
	}
	if err := uc.repo.Create(ctx, record); err != nil {
		// The object stays behind in the bucket; see SaveFileInfos for the
		// matching gap on the presigned path.
		return apperrors.Wrap(err, apperrors.ErrMetadataFailure)
	}

	uc.log.Info("stored file",
		zap.String("key", key),
		zap.String("originalName", f.OriginalName),
		zap.Int64("size", size))
	return nil
}

// GeneratePresignedUploads mints one signed PUT URL per requested file. No
// object or metadata is created here; the client uploads directly and then
// commits through SaveFileInfos. Results keep the order of the request.
func (uc *FileUseCase) GeneratePresignedUploads(ctx context.Context, props []types.ShortFileProp) ([]types.PresignedUpload, error) {
	if len(props) == 0 {
		return nil, ErrEmptyBatch
	}

	results := make([]types.PresignedUpload, len(props))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range props {
		g.Go(func() error {
			key := storageKey(p.OriginalFileName)
			url, err := uc.store.PresignedPut(ctx, key, uc.presignExpiry)
			if err != nil {
				return apperrors.Wrap(err, apperrors.ErrFileStorage)
			}
			results[i] = types.PresignedUpload{
				FileNameInBucket: key,
				OriginalFileName: p.OriginalFileName,
				FileSize:         p.FileSize,
				URL:              url,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveFileInfos records metadata for objects the client claims to have
// uploaded through presigned URLs. The claims are trusted as-is: nothing
// verifies the objects actually exist, so a client that commits without
// uploading leaves dangling records. An empty commit is a successful no-op,
// not a validation failure.
func (uc *FileUseCase) SaveFileInfos(ctx context.Context, uploads []types.PresignedUpload) error {
	if len(uploads) == 0 {
		return nil
	}

	records := make([]*types.FileRecord, 0, len(uploads))
	for _, u := range uploads {
		records = append(records, &types.FileRecord{
			Bucket:       uc.store.Bucket(),
			FileName:     u.FileNameInBucket,
			OriginalName: u.OriginalFileName,
			Size:         u.FileSize,
		})
	}
	if err := uc.repo.CreateBatch(ctx, records); err != nil {
		return apperrors.Wrap(err, apperrors.ErrMetadataFailure)
	}
	uc.log.Info("saved file infos", zap.Int("count", len(records)))
	return nil
}

// DownloadSmall fetches the object for the given record id and buffers it
// fully in memory. Intended for small files only; large files should go
// through PresignedDownload.
func (uc *FileUseCase) DownloadSmall(ctx context.Context, id string) (*types.DownloadedFile, error) {
	record, err := uc.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := uc.store.Get(ctx, record.FileName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrObjectNotFound)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// MinIO reads lazily, so a missing object often surfaces here
		// rather than at Get time.
		return nil, apperrors.Wrap(err, apperrors.ErrObjectNotFound)
	}

	return &types.DownloadedFile{
		OriginalName: record.OriginalName,
		Data:         data,
	}, nil
}

// PresignedDownload returns a signed GET URL for the record's object.
func (uc *FileUseCase) PresignedDownload(ctx context.Context, id string) (string, error) {
	record, err := uc.getRecord(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := uc.store.PresignedGet(ctx, record.FileName, uc.presignExpiry)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorage)
	}
	return url, nil
}

// Delete removes the object first and the metadata record second. If the
// store delete fails the record is kept, so the file stays visible and the
// delete can be retried. The reverse order would strand an unreachable
// object behind a missing record.
func (uc *FileUseCase) Delete(ctx context.Context, id string) error {
	record, err := uc.getRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.store.Remove(ctx, record.FileName); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorage)
	}
	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrMetadataFailure)
	}

	uc.log.Info("deleted file", zap.String("id", id), zap.String("key", record.FileName))
	return nil
}

// List returns all file records.
func (uc *FileUseCase) List(ctx context.Context) ([]*types.FileRecord, error) {
	records, err := uc.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMetadataFailure)
	}
	return records, nil
}

func (uc *FileUseCase) getRecord(ctx context.Context, id string) (*types.FileRecord, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	record, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMetadataFailure)
	}
	if record == nil {
		return nil, ErrFileNotFound
	}
	return record, nil
}
