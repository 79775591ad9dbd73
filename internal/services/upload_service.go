package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"realty_backend/internal/config"
	"realty_backend/internal/imageprocessor"
	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/storage"
	"realty_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// UploadService validates, stores and thumbnails listing images.
type UploadService struct {
	uploadRepo repositories.UploadRepository
	store      storage.Storage
	processor  *imageprocessor.Processor
}

func NewUploadService(uploadRepo repositories.UploadRepository, store storage.Storage, processor *imageprocessor.Processor) *UploadService {
	return &UploadService{
		uploadRepo: uploadRepo,
		store:      store,
		processor:  processor,
	}
}

// Upload stores one image and its thumbnail. The original bytes are read
// fully first so the thumbnail can be cut from the same buffer.
func (s *UploadService) Upload(ctx context.Context, userID, fileName, contentType string, size int64, reader io.Reader) (*models.Upload, error) {
	cfg := config.GetConfig()

	if size > cfg.Upload.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if !allowedType(contentType, cfg.Upload.AllowedTypes) {
		return nil, apperrors.ErrInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(reader, cfg.Upload.MaxSize+1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if int64(len(data)) > cfg.Upload.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(fileName))
	path := fmt.Sprintf("uploads/%s/%s%s", userID, id, ext)

	if err := s.store.Save(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	thumbPath := ""
	thumb, thumbType, err := s.processor.Thumbnail(bytes.NewReader(data), cfg.Upload.ThumbWidth)
	if err != nil {
		// A broken image already passed MIME validation; keep the original
		// and skip the thumbnail.
		logger.CtxWarn(ctx, "thumbnail generation failed", "file", fileName, "error", err.Error())
	} else {
		thumbPath = fmt.Sprintf("uploads/%s/%s_thumb%s", userID, id, ext)
		if err := s.store.Save(ctx, thumbPath, thumb, thumbType); err != nil {
			logger.CtxWarn(ctx, "thumbnail save failed", "path", thumbPath, "error", err.Error())
			thumbPath = ""
		}
	}

	upload := &models.Upload{
		UserID:      userID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Path:        path,
		ThumbPath:   thumbPath,
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.fillURLs(ctx, upload)

	logger.CtxInfo(ctx, "file uploaded", "upload_id", upload.ID, "size", upload.Size)
	return upload, nil
}

// Get streams a stored file.
func (s *UploadService) Get(ctx context.Context, id string) (*models.Upload, io.ReadCloser, error) {
	upload, err := s.uploadRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return nil, nil, apperrors.ErrNotFound(err)
		}
		return nil, nil, apperrors.InternalError(err)
	}

	rc, err := s.store.Get(ctx, upload.Path)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	return upload, rc, nil
}

// ListMine returns the caller's uploads with resolved URLs.
func (s *UploadService) ListMine(ctx context.Context, userID string, limit, offset int) ([]models.Upload, error) {
	uploads, err := s.uploadRepo.FindByUser(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for i := range uploads {
		s.fillURLs(ctx, &uploads[i])
	}
	return uploads, nil
}

// Delete removes the file, its thumbnail and the record. Owner or admin.
func (s *UploadService) Delete(ctx context.Context, userID string, role models.UserRole, id string) error {
	upload, err := s.uploadRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if upload.UserID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.store.Delete(ctx, upload.Path); err != nil {
		logger.CtxWarn(ctx, "file delete failed", "path", upload.Path, "error", err.Error())
	}
	if upload.ThumbPath != "" {
		if err := s.store.Delete(ctx, upload.ThumbPath); err != nil {
			logger.CtxWarn(ctx, "thumbnail delete failed", "path", upload.ThumbPath, "error", err.Error())
		}
	}
	if err := s.uploadRepo.Delete(id); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UploadService) fillURLs(ctx context.Context, upload *models.Upload) {
	if url, err := s.store.GetURL(ctx, upload.Path); err == nil {
		upload.URL = url
	}
	if upload.ThumbPath != "" {
		if url, err := s.store.GetURL(ctx, upload.ThumbPath); err == nil {
			upload.ThumbURL = url
		}
	}
}

// SignedURL returns a short-lived direct link, for private buckets.
func (s *UploadService) SignedURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	upload, err := s.uploadRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return "", apperrors.ErrNotFound(err)
		}
		return "", apperrors.InternalError(err)
	}
	url, err := s.store.GetSignedURL(ctx, upload.Path, expiry)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}
