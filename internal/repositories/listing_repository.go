package repositories

import (
	"errors"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/models"

	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepository interface {
	Create(listing *models.Listing) error
	FindByID(id string) (*models.Listing, error)
	Update(listing *models.Listing) error
	Delete(id string) error

	// Search applies a compiled filter and returns one page plus the total
	// match count. The owner relation is joined natively.
	Search(filter listingquery.Filter) ([]models.Listing, int64, error)

	FindByOwner(ownerID string, limit, offset int) ([]models.Listing, int64, error)
	IncrementViews(id string) error
	UpdateStatus(id string, status models.ListingStatus) error
}

type ListingRepositoryImpl struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &ListingRepositoryImpl{db: db}
}

func (r *ListingRepositoryImpl) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

func (r *ListingRepositoryImpl) FindByID(id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Owner").First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepositoryImpl) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

func (r *ListingRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Listing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepositoryImpl) Search(filter listingquery.Filter) ([]models.Listing, int64, error) {
	query := r.applyFilter(r.db.Model(&models.Listing{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "created_at"
	if filter.SortKey == listingquery.SortPrice {
		column = "price"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var listings []models.Listing
	err := query.
		Preload("Owner").
		Order(column + " " + direction).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *ListingRepositoryImpl) applyFilter(query *gorm.DB, filter listingquery.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinArea != nil {
		query = query.Where("area >= ?", *filter.MinArea)
	}
	if filter.MaxArea != nil {
		query = query.Where("area <= ?", *filter.MaxArea)
	}
	if filter.Rooms != nil {
		if filter.RoomsAtLeast {
			query = query.Where("rooms >= ?", *filter.Rooms)
		} else {
			query = query.Where("rooms = ?", *filter.Rooms)
		}
	}
	return query
}

func (r *ListingRepositoryImpl) FindByOwner(ownerID string, limit, offset int) ([]models.Listing, int64, error) {
	base := r.db.Model(&models.Listing{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// IncrementViews bumps the view counter in a single UPDATE. The counter is
// best-effort telemetry; no read-back is performed.
func (r *ListingRepositoryImpl) IncrementViews(id string) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *ListingRepositoryImpl) UpdateStatus(id string, status models.ListingStatus) error {
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}
