package repositories

import (
	"errors"

	"realty_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSavedListingNotFound = errors.New("saved listing not found")

type SavedListingRepository interface {
	Save(userID, listingID string) error
	Remove(userID, listingID string) error
	FindByUser(userID string, limit, offset int) ([]models.SavedListing, int64, error)
	IsSaved(userID, listingID string) (bool, error)
}

type SavedListingRepositoryImpl struct {
	db *gorm.DB
}

func NewSavedListingRepository(db *gorm.DB) SavedListingRepository {
	return &SavedListingRepositoryImpl{db: db}
}

// Save is idempotent: saving twice is not an error.
func (r *SavedListingRepositoryImpl) Save(userID, listingID string) error {
	saved := models.SavedListing{UserID: userID, ListingID: listingID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&saved).Error
}

func (r *SavedListingRepositoryImpl) Remove(userID, listingID string) error {
	result := r.db.Delete(&models.SavedListing{}, "user_id = ? AND listing_id = ?", userID, listingID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedListingNotFound
	}
	return nil
}

func (r *SavedListingRepositoryImpl) FindByUser(userID string, limit, offset int) ([]models.SavedListing, int64, error) {
	base := r.db.Model(&models.SavedListing{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var saved []models.SavedListing
	err := base.Preload("Listing").Preload("Listing.Owner").
		Limit(limit).Offset(offset).Find(&saved).Error
	if err != nil {
		return nil, 0, err
	}
	return saved, total, nil
}

func (r *SavedListingRepositoryImpl) IsSaved(userID, listingID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&count).Error
	return count > 0, err
}
