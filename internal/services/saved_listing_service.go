package services

import (
	"context"
	"errors"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/repositories"
	"realty_backend/pkg/apperrors"
)

// SavedListingService owns the user's saved-listings collection.
type SavedListingService struct {
	savedRepo   repositories.SavedListingRepository
	listingRepo repositories.ListingRepository
}

func NewSavedListingService(savedRepo repositories.SavedListingRepository, listingRepo repositories.ListingRepository) *SavedListingService {
	return &SavedListingService{savedRepo: savedRepo, listingRepo: listingRepo}
}

// Save bookmarks a listing. Idempotent: saving twice is a no-op success.
func (s *SavedListingService) Save(ctx context.Context, userID, listingID string) error {
	if _, err := s.listingRepo.FindByID(listingID); err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if err := s.savedRepo.Save(userID, listingID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SavedListingService) Remove(ctx context.Context, userID, listingID string) error {
	if err := s.savedRepo.Remove(userID, listingID); err != nil {
		if errors.Is(err, repositories.ErrSavedListingNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// List returns the saved listings as full listing payloads. Bookmarks
// whose listing has since been deleted are skipped.
func (s *SavedListingService) List(ctx context.Context, userID string, limit, offset int) ([]listingquery.ListingPayload, int64, error) {
	saved, total, err := s.savedRepo.FindByUser(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	payloads := make([]listingquery.ListingPayload, 0, len(saved))
	for i := range saved {
		if saved[i].Listing == nil {
			continue
		}
		payloads = append(payloads, listingquery.ShapeModel(saved[i].Listing))
	}
	return payloads, total, nil
}

func (s *SavedListingService) IsSaved(ctx context.Context, userID, listingID string) (bool, error) {
	saved, err := s.savedRepo.IsSaved(userID, listingID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return saved, nil
}
