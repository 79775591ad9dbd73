package handlers

import (
	"realty_backend/internal/services"
	"realty_backend/internal/validator"
)

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ListingHandler *ListingHandler
	ReviewHandler  *ReviewHandler
	SavedHandler   *SavedListingHandler
	ChatHandler    *ChatHandler
	BillingHandler *BillingHandler
	UploadHandler  *UploadHandler
}

func NewAppHandlers(sc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		AuthHandler:    NewAuthHandler(base, sc.Auth),
		UserHandler:    NewUserHandler(base, sc.User),
		ListingHandler: NewListingHandler(base, sc.Listing),
		ReviewHandler:  NewReviewHandler(base, sc.Review),
		SavedHandler:   NewSavedListingHandler(base, sc.Saved),
		ChatHandler:    NewChatHandler(base, sc.Chat),
		BillingHandler: NewBillingHandler(base, sc.Billing),
		UploadHandler:  NewUploadHandler(base, sc.Upload),
	}
}
