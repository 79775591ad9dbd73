package repositories

import (
	"errors"
	"time"

	"realty_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	Create(sub *models.ListingSubscription) error
	FindByID(id string) (*models.ListingSubscription, error)
	FindActiveByListing(listingID string) (*models.ListingSubscription, error)
	Activate(id string, expiresAt time.Time) error
	ExpireLapsed(now time.Time) (int64, error)

	CreateTransaction(tx *models.PaymentTransaction) error
	FindTransactionBySession(sessionID string) (*models.PaymentTransaction, error)
	UpdateTransactionStatus(id string, status models.PaymentStatus) error
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) Create(sub *models.ListingSubscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) FindByID(id string) (*models.ListingSubscription, error) {
	var sub models.ListingSubscription
	err := r.db.First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindActiveByListing(listingID string) (*models.ListingSubscription, error) {
	var sub models.ListingSubscription
	err := r.db.First(&sub, "listing_id = ? AND status = ?", listingID, models.SubscriptionStatusActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Activate(id string, expiresAt time.Time) error {
	result := r.db.Model(&models.ListingSubscription{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.SubscriptionStatusActive,
			"expires_at": expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ExpireLapsed flips active subscriptions whose expiry has passed. Called
// by the background worker.
func (r *SubscriptionRepositoryImpl) ExpireLapsed(now time.Time) (int64, error) {
	result := r.db.Model(&models.ListingSubscription{}).
		Where("status = ? AND expires_at < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *SubscriptionRepositoryImpl) CreateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

func (r *SubscriptionRepositoryImpl) FindTransactionBySession(sessionID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.First(&tx, "checkout_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *SubscriptionRepositoryImpl) UpdateTransactionStatus(id string, status models.PaymentStatus) error {
	return r.db.Model(&models.PaymentTransaction{}).Where("id = ?", id).
		Update("status", status).Error
}
