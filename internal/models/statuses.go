package models

type UserRole string
type ListingStatus string
type ListingType string
type ListingCategory string
type SubscriptionStatus string
type PaymentStatus string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleOwner UserRole = "OWNER"
	UserRoleAdmin UserRole = "ADMIN"
)

// Moderation workflow: every new listing starts at PENDING_REVIEW and is
// promoted to PUBLISHED or ARCHIVED by an admin.
const (
	ListingStatusDraft         ListingStatus = "DRAFT"
	ListingStatusPendingReview ListingStatus = "PENDING_REVIEW"
	ListingStatusPublished     ListingStatus = "PUBLISHED"
	ListingStatusArchived      ListingStatus = "ARCHIVED"
)

const (
	ListingTypeRent ListingType = "RENT"
	ListingTypeSale ListingType = "SALE"
)

const (
	CategoryApartment  ListingCategory = "APARTMENT"
	CategoryHouse      ListingCategory = "HOUSE"
	CategoryCommercial ListingCategory = "COMMERCIAL"
)

const (
	SubscriptionStatusPending SubscriptionStatus = "pending"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ValidListingStatus reports whether s is one of the four listing statuses.
func ValidListingStatus(s string) bool {
	switch ListingStatus(s) {
	case ListingStatusDraft, ListingStatusPendingReview, ListingStatusPublished, ListingStatusArchived:
		return true
	}
	return false
}

// ValidListingType reports whether s is RENT or SALE.
func ValidListingType(s string) bool {
	switch ListingType(s) {
	case ListingTypeRent, ListingTypeSale:
		return true
	}
	return false
}

// ValidListingCategory reports whether s names a known category.
func ValidListingCategory(s string) bool {
	switch ListingCategory(s) {
	case CategoryApartment, CategoryHouse, CategoryCommercial:
		return true
	}
	return false
}
