package repositories

import (
	"errors"

	"realty_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository interface {
	Create(upload *models.Upload) error
	FindByID(id string) (*models.Upload, error)
	FindByUser(userID string, limit, offset int) ([]models.Upload, error)
	Delete(id string) error
	TotalSizeByUser(userID string) (int64, error)
}

type UploadRepositoryImpl struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &UploadRepositoryImpl{db: db}
}

func (r *UploadRepositoryImpl) Create(upload *models.Upload) error {
	return r.db.Create(upload).Error
}

func (r *UploadRepositoryImpl) FindByID(id string) (*models.Upload, error) {
	var upload models.Upload
	err := r.db.First(&upload, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepositoryImpl) FindByUser(userID string, limit, offset int) ([]models.Upload, error) {
	var uploads []models.Upload
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepositoryImpl) Delete(id string) error {
	return r.db.Delete(&models.Upload{}, "id = ?", id).Error
}

func (r *UploadRepositoryImpl) TotalSizeByUser(userID string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Upload{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").Scan(&total).Error
	return total, err
}
