package models

// Review carries upsert semantics: a second review by the same user for the
// same listing overwrites the first (unique (user_id, listing_id)).
type Review struct {
	BaseModel
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_listing" json:"userId"`
	ListingID string `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_listing" json:"listingId"`
	Rating    int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string `json:"comment"`

	// Relations
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
}
