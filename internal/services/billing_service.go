package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realty_backend/internal/config"
	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/payments"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"
)

// Plan is a purchasable featured-listing period.
type Plan struct {
	Code        string
	Description string
	Amount      float64
	Duration    time.Duration
}

var plans = map[string]Plan{
	"featured_30": {Code: "featured_30", Description: "Featured listing, 30 days", Amount: 19.99, Duration: 30 * 24 * time.Hour},
	"featured_90": {Code: "featured_90", Description: "Featured listing, 90 days", Amount: 49.99, Duration: 90 * 24 * time.Hour},
}

// BillingService owns listing subscriptions and their payment flow.
type BillingService struct {
	subRepo     repositories.SubscriptionRepository
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	gateway     payments.Gateway
}

func NewBillingService(
	subRepo repositories.SubscriptionRepository,
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
	gateway payments.Gateway,
) *BillingService {
	return &BillingService{
		subRepo:     subRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		gateway:     gateway,
	}
}

// Checkout opens a payment session for featuring a listing. The
// subscription is created pending and only activated by the webhook.
func (s *BillingService) Checkout(ctx context.Context, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, ok := plans[req.PlanCode]
	if !ok {
		return nil, apperrors.NewBadRequestError("Unknown plan")
	}

	listing, err := s.listingRepo.FindByID(req.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if listing.OwnerID != userID {
		return nil, apperrors.ErrNotListingOwner
	}
	if existing, err := s.subRepo.FindActiveByListing(req.ListingID); err == nil {
		// A lapsed subscription the hourly sweep has not flipped yet does
		// not block a new purchase.
		if !lapsed(existing, time.Now()) {
			return nil, apperrors.ErrConflict(nil, "billing", "Listing already has an active subscription")
		}
	} else if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, apperrors.InternalError(err)
	}

	sub := &models.ListingSubscription{
		ListingID: req.ListingID,
		UserID:    userID,
		PlanCode:  plan.Code,
		Status:    models.SubscriptionStatusPending,
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	currency := config.GetConfig().Stripe.Currency
	tx := models.NewPaymentTransaction(sub.ID, plan.Amount, currency)

	var customerEmail string
	if user, err := s.userRepo.FindByID(userID); err == nil {
		customerEmail = user.Email
	}

	description := fmt.Sprintf("%s: %s", plan.Description, listing.Title)
	sessionID, url, err := s.gateway.CreateCheckoutSession(tx.ID, description, currency, plan.Amount, customerEmail)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "payments")
	}

	tx.CheckoutSessionID = sessionID
	if err := s.subRepo.CreateTransaction(tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "checkout session created",
		"subscription_id", sub.ID, "listing_id", req.ListingID, "plan", plan.Code)
	return &dto.CheckoutResponse{
		SubscriptionID: sub.ID,
		CheckoutURL:    url,
	}, nil
}

// HandleWebhook verifies and applies a payment-provider event. Activation
// is idempotent: a redelivered event for an already-completed transaction
// is a no-op.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid webhook signature")
	}
	if event.Type != "checkout.session.completed" {
		logger.CtxDebug(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}

	tx, err := s.subRepo.FindTransactionBySession(event.SessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.CtxWarn(ctx, "webhook for unknown session", "session_id", event.SessionID)
			return nil
		}
		return apperrors.InternalError(err)
	}
	if tx.Status == models.PaymentStatusCompleted {
		return nil
	}

	sub, err := s.subRepo.FindByID(tx.SubscriptionID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	plan, ok := plans[sub.PlanCode]
	if !ok {
		return apperrors.InternalError(fmt.Errorf("subscription %s has unknown plan %s", sub.ID, sub.PlanCode))
	}

	if err := s.subRepo.UpdateTransactionStatus(tx.ID, models.PaymentStatusCompleted); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.subRepo.Activate(sub.ID, time.Now().Add(plan.Duration)); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription activated",
		"subscription_id", sub.ID, "listing_id", sub.ListingID, "plan", sub.PlanCode)
	return nil
}

// SubscriptionStatus reports the active subscription for a listing, if any.
func (s *BillingService) SubscriptionStatus(ctx context.Context, listingID string) (*models.ListingSubscription, error) {
	sub, err := s.subRepo.FindActiveByListing(listingID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if lapsed(sub, time.Now()) {
		return nil, apperrors.ErrNotFound(repositories.ErrSubscriptionNotFound)
	}
	return sub, nil
}

// lapsed reports a subscription whose paid window has ended, whether or
// not the expiry sweep has flipped its status yet.
func lapsed(sub *models.ListingSubscription, now time.Time) bool {
	return sub.ExpiresAt != nil && !sub.ExpiresAt.After(now)
}

// ExpireLapsed flips lapsed subscriptions to expired. Called by the
// background worker.
func (s *BillingService) ExpireLapsed(now time.Time) (int64, error) {
	return s.subRepo.ExpireLapsed(now)
}

// Plans exposes the purchasable plans for the pricing page.
func (s *BillingService) Plans() []Plan {
	out := make([]Plan, 0, len(plans))
	for _, code := range []string{"featured_30", "featured_90"} {
		out = append(out, plans[code])
	}
	return out
}
