package repositories

import (
	"errors"

	"realty_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository interface {
	// Upsert inserts the review or, when the (user, listing) pair already
	// has one, overwrites rating and comment in place.
	Upsert(review *models.Review) error
	FindByID(id string) (*models.Review, error)
	FindByListing(listingID string, limit, offset int) ([]models.Review, int64, error)
	FindByUserAndListing(userID, listingID string) (*models.Review, error)
	Delete(id string) error
	AverageRating(listingID string) (float64, int64, error)
}

type ReviewRepositoryImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

func (r *ReviewRepositoryImpl) Upsert(review *models.Review) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByID(id string) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("User").First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByListing(listingID string, limit, offset int) ([]models.Review, int64, error) {
	base := r.db.Model(&models.Review{}).Where("listing_id = ?", listingID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := base.Preload("User").Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepositoryImpl) FindByUserAndListing(userID, listingID string) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, "user_id = ? AND listing_id = ?", userID, listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) AverageRating(listingID string) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("listing_id = ?", listingID).
		Scan(&result).Error
	return result.Avg, result.Count, err
}
