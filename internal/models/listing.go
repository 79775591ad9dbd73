package models

import (
	"github.com/lib/pq"
)

type Listing struct {
	BaseModel
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Type        ListingType     `gorm:"type:varchar(10);not null;index" json:"type"`
	Category    ListingCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Price       float64         `gorm:"not null;index" json:"price"`
	Currency    string          `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Address     string          `json:"address"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Area        *float64        `json:"area,omitempty"`
	Rooms       *int            `json:"rooms,omitempty"`
	Images      pq.StringArray  `gorm:"type:text[]" json:"images"`
	Amenities   pq.StringArray  `gorm:"type:text[]" json:"amenities"`
	Status      ListingStatus   `gorm:"type:varchar(20);not null;default:'PENDING_REVIEW';index" json:"status"`
	OwnerID     string          `gorm:"type:uuid;not null;index" json:"ownerId"`
	Views       int64           `gorm:"default:0" json:"views"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// SavedListing is a pure (user, listing) association.
type SavedListing struct {
	UserID    string `gorm:"type:uuid;primaryKey" json:"userId"`
	ListingID string `gorm:"type:uuid;primaryKey" json:"listingId"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}
