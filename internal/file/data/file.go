package data

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lk2023060901/filevault/internal/file/biz"
	"github.com/lk2023060901/filevault/internal/file/types"
	"github.com/lk2023060901/filevault/internal/pkg/database"
)

// FilePO represents the database model
type FilePO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Bucket       string    `gorm:"size:63;not null"`
	FileName     string    `gorm:"size:512;not null;uniqueIndex:idx_files_file_name"`
	OriginalName string    `gorm:"size:512;not null"`
	Size         int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileRepo implements biz.FileRepo on Postgres via GORM.
type FileRepo struct {
	db *database.DB
}

func NewFileRepo(db *database.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, record *types.FileRecord) error {
	po := toPO(record)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	record.ID = po.ID
	record.CreatedAt = po.CreatedAt
	return nil
}

func (r *FileRepo) CreateBatch(ctx context.Context, records []*types.FileRecord) error {
	if len(records) == 0 {
		return nil
	}
	pos := make([]*FilePO, 0, len(records))
	for _, rec := range records {
		pos = append(pos, toPO(rec))
	}
	if err := r.db.WithContext(ctx).Create(&pos).Error; err != nil {
		return err
	}
	for i, po := range pos {
		records[i].ID = po.ID
		records[i].CreatedAt = po.CreatedAt
	}
	return nil
}

// GetByID returns (nil, nil) when no record matches so callers can
// distinguish absence from failure.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*types.FileRecord, error) {
	var po FilePO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return toRecord(&po), nil
}

func (r *FileRepo) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&FilePO{}).Error
}

func (r *FileRepo) List(ctx context.Context) ([]*types.FileRecord, error) {
	var pos []FilePO
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, err
	}
	records := make([]*types.FileRecord, 0, len(pos))
	for i := range pos {
		records = append(records, toRecord(&pos[i]))
	}
	return records, nil
}

func toPO(rec *types.FileRecord) *FilePO {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &FilePO{
		ID:           id,
		Bucket:       rec.Bucket,
		FileName:     rec.FileName,
		OriginalName: rec.OriginalName,
		Size:         rec.Size,
	}
}

func toRecord(po *FilePO) *types.FileRecord {
	return &types.FileRecord{
		ID:           po.ID,
		Bucket:       po.Bucket,
		FileName:     po.FileName,
		OriginalName: po.OriginalName,
		Size:         po.Size,
		CreatedAt:    po.CreatedAt,
	}
}
