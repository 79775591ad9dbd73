package services

import (
	"context"
	"errors"

	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"
)

// ReviewService owns listing reviews. A user holds at most one review per
// listing; submitting again overwrites it.
type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	listingRepo repositories.ListingRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, listingRepo repositories.ListingRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, listingRepo: listingRepo}
}

// Upsert stores or overwrites the caller's review. Owners cannot review
// their own listings.
func (s *ReviewService) Upsert(ctx context.Context, userID string, req *dto.UpsertReviewRequest) (*dto.ReviewResponse, error) {
	listing, err := s.listingRepo.FindByID(req.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if listing.OwnerID == userID {
		return nil, apperrors.ErrInvalidOperation("review", "You cannot review your own listing")
	}

	review := &models.Review{
		UserID:    userID,
		ListingID: req.ListingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Upsert(review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// The upsert may have kept the existing row's id; read it back.
	stored, err := s.reviewRepo.FindByUserAndListing(userID, req.ListingID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "review saved", "listing_id", req.ListingID, "user_id", userID)

	resp := toReviewResponse(stored)
	return &resp, nil
}

// ListForListing returns one page of reviews with the aggregate rating.
func (s *ReviewService) ListForListing(ctx context.Context, listingID string, limit, offset int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.FindByListing(listingID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	avg, _, err := s.reviewRepo.AverageRating(listingID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	return &dto.ReviewListResponse{
		Reviews:       out,
		Total:         total,
		AverageRating: avg,
	}, nil
}

// Delete removes a review. Author or admin only.
func (s *ReviewService) Delete(ctx context.Context, userID string, role models.UserRole, reviewID string) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if review.UserID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func toReviewResponse(r *models.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:        r.ID,
		ListingID: r.ListingID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	return resp
}
