package services

import (
	"realty_backend/internal/email"
	"realty_backend/internal/imageprocessor"
	"realty_backend/internal/payments"
	"realty_backend/internal/repositories"
	"realty_backend/internal/storage"

	"gorm.io/gorm"
)

// ServiceContainer wires every service once at startup.
type ServiceContainer struct {
	Auth    *AuthService
	User    *UserService
	Listing *ListingService
	Review  *ReviewService
	Saved   *SavedListingService
	Chat    *ChatService
	Billing *BillingService
	Upload  *UploadService
}

// Deps are the external edges the services need. Searcher and Notifier are
// optional; nil falls back to the ORM read path and no websocket pushes.
type Deps struct {
	DB       *gorm.DB
	Searcher ListingSearcher
	Store    storage.Storage
	Email    email.Provider
	Gateway  payments.Gateway
	Notifier ChatNotifier
}

func NewServiceContainer(deps Deps) *ServiceContainer {
	userRepo := repositories.NewUserRepository(deps.DB)
	listingRepo := repositories.NewListingRepository(deps.DB)
	reviewRepo := repositories.NewReviewRepository(deps.DB)
	savedRepo := repositories.NewSavedListingRepository(deps.DB)
	chatRepo := repositories.NewChatRepository(deps.DB)
	subRepo := repositories.NewSubscriptionRepository(deps.DB)
	tokenRepo := repositories.NewRefreshTokenRepository(deps.DB)
	uploadRepo := repositories.NewUploadRepository(deps.DB)

	return &ServiceContainer{
		Auth:    NewAuthService(userRepo, tokenRepo),
		User:    NewUserService(userRepo),
		Listing: NewListingService(listingRepo, userRepo, deps.Searcher, deps.Email),
		Review:  NewReviewService(reviewRepo, listingRepo),
		Saved:   NewSavedListingService(savedRepo, listingRepo),
		Chat:    NewChatService(chatRepo, deps.Notifier),
		Billing: NewBillingService(subRepo, listingRepo, userRepo, deps.Gateway),
		Upload:  NewUploadService(uploadRepo, deps.Store, imageprocessor.NewProcessor(85)),
	}
}
