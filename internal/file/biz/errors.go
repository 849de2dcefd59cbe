package biz

import (
	apperrors "github.com/lk2023060901/filevault/internal/pkg/errors"
)

// Sentinel errors returned by the file use case. Handlers map these to
// HTTP statuses through their embedded codes.
var (
	ErrEmptyBatch      = apperrors.New(apperrors.ErrFileEmptyBatch)
	ErrFileNotFound    = apperrors.New(apperrors.ErrFileNotFound)
	ErrObjectNotFound  = apperrors.New(apperrors.ErrObjectNotFound)
	ErrMissingID       = apperrors.New(apperrors.ErrFileMissingID)
	ErrStorageFailure  = apperrors.New(apperrors.ErrFileStorage)
	ErrMetadataFailure = apperrors.New(apperrors.ErrMetadataFailure)
)
