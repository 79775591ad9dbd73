package dto

import "time"

type UpsertReviewRequest struct {
	ListingID string `json:"listingId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=5000"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReviewListResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	Total         int64            `json:"total"`
	AverageRating float64          `json:"averageRating"`
}
