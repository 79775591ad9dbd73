package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"realty_backend/internal/config"
	"realty_backend/internal/models"
	"realty_backend/internal/payments"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(sub *models.ListingSubscription) error {
	args := m.Called(sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) FindByID(id string) (*models.ListingSubscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindActiveByListing(listingID string) (*models.ListingSubscription, error) {
	args := m.Called(listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Activate(id string, expiresAt time.Time) error {
	args := m.Called(id, expiresAt)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ExpireLapsed(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CreateTransaction(tx *models.PaymentTransaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) FindTransactionBySession(sessionID string) (*models.PaymentTransaction, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentTransaction), args.Error(1)
}

func (m *MockSubscriptionRepository) UpdateTransactionStatus(id string, status models.PaymentStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// fakeGateway returns canned sessions and events without touching Stripe.
type fakeGateway struct {
	sessionID string
	url       string
	event     payments.CheckoutEvent
	verifyErr error
}

func (g *fakeGateway) CreateCheckoutSession(referenceID, description, currency string, amount float64, customerEmail string) (string, string, error) {
	return g.sessionID, g.url, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, sigHeader string) (payments.CheckoutEvent, error) {
	if g.verifyErr != nil {
		return payments.CheckoutEvent{}, g.verifyErr
	}
	return g.event, nil
}

func setBillingTestConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Stripe.Currency = "usd"
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

func TestCheckoutCreatesPendingSubscription(t *testing.T) {
	setBillingTestConfig(t)

	listingRepo := &MockListingRepository{}
	listing := &models.Listing{OwnerID: "u1", Title: "Loft"}
	listing.ID = "l1"
	listingRepo.On("FindByID", "l1").Return(listing, nil)

	subRepo := &MockSubscriptionRepository{}
	subRepo.On("FindActiveByListing", "l1").Return(nil, repositories.ErrSubscriptionNotFound)
	subRepo.On("Create", mock.AnythingOfType("*models.ListingSubscription")).
		Run(func(args mock.Arguments) {
			sub := args.Get(0).(*models.ListingSubscription)
			assert.Equal(t, models.SubscriptionStatusPending, sub.Status)
			sub.ID = "s1"
		}).Return(nil)
	subRepo.On("CreateTransaction", mock.MatchedBy(func(tx *models.PaymentTransaction) bool {
		return tx.SubscriptionID == "s1" && tx.CheckoutSessionID == "cs_123"
	})).Return(nil)

	svc := NewBillingService(subRepo, listingRepo, &stubUserRepo{}, &fakeGateway{sessionID: "cs_123", url: "https://pay.example/cs_123"})

	resp, err := svc.Checkout(context.Background(), "u1", checkoutReq("l1", "featured_30"))
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SubscriptionID)
	assert.Equal(t, "https://pay.example/cs_123", resp.CheckoutURL)
	subRepo.AssertExpectations(t)
}

func TestCheckoutRejectsNonOwner(t *testing.T) {
	setBillingTestConfig(t)

	listingRepo := &MockListingRepository{}
	listing := &models.Listing{OwnerID: "owner"}
	listing.ID = "l1"
	listingRepo.On("FindByID", "l1").Return(listing, nil)

	svc := NewBillingService(&MockSubscriptionRepository{}, listingRepo, &stubUserRepo{}, &fakeGateway{})

	_, err := svc.Checkout(context.Background(), "intruder", checkoutReq("l1", "featured_30"))
	assert.Error(t, err)
}

func TestCheckoutRejectsActiveSubscription(t *testing.T) {
	setBillingTestConfig(t)

	listingRepo := &MockListingRepository{}
	listing := &models.Listing{OwnerID: "u1", Title: "Loft"}
	listing.ID = "l1"
	listingRepo.On("FindByID", "l1").Return(listing, nil)

	expiry := time.Now().Add(10 * 24 * time.Hour)
	active := &models.ListingSubscription{ListingID: "l1", Status: models.SubscriptionStatusActive, ExpiresAt: &expiry}
	active.ID = "s0"
	subRepo := &MockSubscriptionRepository{}
	subRepo.On("FindActiveByListing", "l1").Return(active, nil)

	svc := NewBillingService(subRepo, listingRepo, &stubUserRepo{}, &fakeGateway{})

	_, err := svc.Checkout(context.Background(), "u1", checkoutReq("l1", "featured_30"))
	assert.Error(t, err)
	subRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCheckoutAllowsLapsedSubscriptionBeforeSweep(t *testing.T) {
	setBillingTestConfig(t)

	listingRepo := &MockListingRepository{}
	listing := &models.Listing{OwnerID: "u1", Title: "Loft"}
	listing.ID = "l1"
	listingRepo.On("FindByID", "l1").Return(listing, nil)

	// Expired by time but the hourly sweep has not flipped the status yet.
	expiry := time.Now().Add(-time.Hour)
	stale := &models.ListingSubscription{ListingID: "l1", Status: models.SubscriptionStatusActive, ExpiresAt: &expiry}
	stale.ID = "s0"
	subRepo := &MockSubscriptionRepository{}
	subRepo.On("FindActiveByListing", "l1").Return(stale, nil)
	subRepo.On("Create", mock.AnythingOfType("*models.ListingSubscription")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.ListingSubscription).ID = "s1"
		}).Return(nil)
	subRepo.On("CreateTransaction", mock.AnythingOfType("*models.PaymentTransaction")).Return(nil)

	svc := NewBillingService(subRepo, listingRepo, &stubUserRepo{}, &fakeGateway{sessionID: "cs_9", url: "https://pay.example/cs_9"})

	resp, err := svc.Checkout(context.Background(), "u1", checkoutReq("l1", "featured_30"))
	require.NoError(t, err, "a lapsed subscription must not block a new purchase")
	assert.Equal(t, "s1", resp.SubscriptionID)
	subRepo.AssertExpectations(t)
}

func TestSubscriptionStatusLapsedReportsNotFound(t *testing.T) {
	setBillingTestConfig(t)

	expiry := time.Now().Add(-time.Minute)
	stale := &models.ListingSubscription{ListingID: "l1", Status: models.SubscriptionStatusActive, ExpiresAt: &expiry}
	stale.ID = "s0"
	subRepo := &MockSubscriptionRepository{}
	subRepo.On("FindActiveByListing", "l1").Return(stale, nil)

	svc := NewBillingService(subRepo, &MockListingRepository{}, &stubUserRepo{}, &fakeGateway{})

	_, err := svc.SubscriptionStatus(context.Background(), "l1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestWebhookActivatesSubscription(t *testing.T) {
	setBillingTestConfig(t)

	subRepo := &MockSubscriptionRepository{}
	tx := &models.PaymentTransaction{ID: "t1", SubscriptionID: "s1", Status: models.PaymentStatusPending}
	subRepo.On("FindTransactionBySession", "cs_123").Return(tx, nil)
	sub := &models.ListingSubscription{ListingID: "l1", PlanCode: "featured_30"}
	sub.ID = "s1"
	subRepo.On("FindByID", "s1").Return(sub, nil)
	subRepo.On("UpdateTransactionStatus", "t1", models.PaymentStatusCompleted).Return(nil)
	subRepo.On("Activate", "s1", mock.MatchedBy(func(expiry time.Time) bool {
		return expiry.After(time.Now().Add(29 * 24 * time.Hour))
	})).Return(nil)

	gateway := &fakeGateway{event: payments.CheckoutEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_123",
	}}
	svc := NewBillingService(subRepo, &MockListingRepository{}, &stubUserRepo{}, gateway)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	subRepo.AssertExpectations(t)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	setBillingTestConfig(t)

	subRepo := &MockSubscriptionRepository{}
	tx := &models.PaymentTransaction{ID: "t1", SubscriptionID: "s1", Status: models.PaymentStatusCompleted}
	subRepo.On("FindTransactionBySession", "cs_123").Return(tx, nil)

	gateway := &fakeGateway{event: payments.CheckoutEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_123",
	}}
	svc := NewBillingService(subRepo, &MockListingRepository{}, &stubUserRepo{}, gateway)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	subRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	setBillingTestConfig(t)

	subRepo := &MockSubscriptionRepository{}
	gateway := &fakeGateway{event: payments.CheckoutEvent{Type: "invoice.paid"}}
	svc := NewBillingService(subRepo, &MockListingRepository{}, &stubUserRepo{}, gateway)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	subRepo.AssertNotCalled(t, "FindTransactionBySession", mock.Anything)
}

func TestWebhookBadSignature(t *testing.T) {
	setBillingTestConfig(t)

	gateway := &fakeGateway{verifyErr: errors.New("bad signature")}
	svc := NewBillingService(&MockSubscriptionRepository{}, &MockListingRepository{}, &stubUserRepo{}, gateway)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	assert.Error(t, err)
}

func checkoutReq(listingID, plan string) *dto.CheckoutRequest {
	return &dto.CheckoutRequest{ListingID: listingID, PlanCode: plan}
}

// stubUserRepo satisfies the user lookup for checkout emails.
type stubUserRepo struct{}

func (s *stubUserRepo) FindByID(id string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (s *stubUserRepo) FindByEmail(email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (s *stubUserRepo) FindByIDs(ids []string) ([]models.User, error) { return nil, nil }
func (s *stubUserRepo) Create(user *models.User) error                { return nil }
func (s *stubUserRepo) Update(user *models.User) error                { return nil }
func (s *stubUserRepo) UpdateRole(userID string, role models.UserRole) error {
	return nil
}
func (s *stubUserRepo) SetOwnerVerified(userID string, verified bool) error { return nil }
func (s *stubUserRepo) Delete(userID string) error                          { return nil }
func (s *stubUserRepo) FindAll(limit, offset int) ([]models.User, error)    { return nil, nil }
func (s *stubUserRepo) CountAll() (int64, error)                            { return 0, nil }
func (s *stubUserRepo) CountByRole(role models.UserRole) (int64, error)     { return 0, nil }
