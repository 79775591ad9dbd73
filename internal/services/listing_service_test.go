package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(id string) (*models.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockListingRepository) Search(filter listingquery.Filter) ([]models.Listing, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) FindByOwner(ownerID string, limit, offset int) ([]models.Listing, int64, error) {
	args := m.Called(ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) IncrementViews(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateStatus(id string, status models.ListingStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// fakeSearcher serves canned pages without a backing store.
type fakeSearcher struct {
	listings   []listingquery.ListingPayload
	total      int64
	searchErr  error
	getErr     error
	incrErr    error
	lastFilter listingquery.Filter
	incremented []string
}

func (f *fakeSearcher) Search(ctx context.Context, filter listingquery.Filter) ([]listingquery.ListingPayload, int64, error) {
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return f.listings, f.total, nil
}

func (f *fakeSearcher) GetByID(ctx context.Context, id string) (*listingquery.ListingPayload, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.listings {
		if f.listings[i].ID == id {
			l := f.listings[i]
			return &l, nil
		}
	}
	return nil, repositories.ErrListingNotFound
}

func (f *fakeSearcher) IncrementViews(ctx context.Context, id string) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.incremented = append(f.incremented, id)
	return nil
}

func newListingService(repo *MockListingRepository, searcher ListingSearcher) *ListingService {
	return NewListingService(repo, nil, searcher, nil)
}

func TestSearchBuildsEnvelope(t *testing.T) {
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{{ID: "l1"}, {ID: "l2"}},
		total:    30,
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	page, err := svc.Search(context.Background(), url.Values{"page": {"2"}})
	require.NoError(t, err)

	assert.True(t, page.Success)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, listingquery.DefaultPageSize, page.PageSize)
	assert.Equal(t, int64(30), page.Total)
	assert.True(t, page.HasMore)
	assert.Len(t, page.Listings, 2)
}

func TestSearchEntityUnavailableIs503(t *testing.T) {
	searcher := &fakeSearcher{searchErr: listingquery.ErrEntityNotFound}
	svc := newListingService(&MockListingRepository{}, searcher)

	page, err := svc.Search(context.Background(), url.Values{"page": {"3"}, "limit": {"24"}})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPCode)
	assert.Equal(t, apperrors.CodeEntityUnavailable, appErr.Code)

	// The envelope survives failure with the requested paging echoed back.
	assert.False(t, page.Success)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 24, page.PageSize)
	assert.NotNil(t, page.Listings)
	assert.Empty(t, page.Listings)
}

func TestSearchUpstreamErrorIs500(t *testing.T) {
	searcher := &fakeSearcher{searchErr: errors.New("connection refused")}
	svc := newListingService(&MockListingRepository{}, searcher)

	_, err := svc.Search(context.Background(), url.Values{})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode)
}

func TestMapSearchDistanceSort(t *testing.T) {
	near, far := 10.0, 50.0
	lng := 20.0
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{
			{ID: "far", Latitude: &far, Longitude: &lng},
			{ID: "near", Latitude: &near, Longitude: &lng},
		},
		total: 2,
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	page, err := svc.MapSearch(context.Background(), url.Values{"near": {"10,20"}})
	require.NoError(t, err)

	require.Len(t, page.Listings, 2)
	assert.Equal(t, "near", page.Listings[0].ID)
	assert.Equal(t, mapPageSize, searcher.lastFilter.PageSize, "map surface uses one large page")
}

func TestMapSearchIgnoresMalformedNear(t *testing.T) {
	lat, lng := 10.0, 20.0
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{
			{ID: "a", Latitude: &lat, Longitude: &lng},
			{ID: "b", Latitude: &lat, Longitude: &lng},
		},
		total: 2,
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	page, err := svc.MapSearch(context.Background(), url.Values{"near": {"not-a-point"}})
	require.NoError(t, err)
	assert.Equal(t, "a", page.Listings[0].ID, "order untouched without a valid near point")
}

func TestMapSearchDropsListingsWithoutCoordinates(t *testing.T) {
	lat, lng := 10.0, 20.0
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{
			{ID: "placed", Latitude: &lat, Longitude: &lng},
			{ID: "no-point"},
			{ID: "placed-2", Latitude: &lat, Longitude: &lng},
		},
		total: 3,
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	page, err := svc.MapSearch(context.Background(), url.Values{})
	require.NoError(t, err)

	require.Len(t, page.Listings, 2)
	assert.Equal(t, "placed", page.Listings[0].ID)
	assert.Equal(t, "placed-2", page.Listings[1].ID)
	assert.Equal(t, int64(2), page.Total, "total excludes the rows the map cannot place")
	assert.False(t, page.HasMore)
}

func TestGetIncrementsViews(t *testing.T) {
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{{ID: "l1", Views: 7}},
		total:    1,
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	listing, err := svc.Get(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, []string{"l1"}, searcher.incremented)
	assert.Equal(t, int64(8), listing.Views)
}

func TestGetSurvivesIncrementFailure(t *testing.T) {
	searcher := &fakeSearcher{
		listings: []listingquery.ListingPayload{{ID: "l1", Views: 7}},
		total:    1,
		incrErr:  errors.New("write path down"),
	}
	svc := newListingService(&MockListingRepository{}, searcher)

	listing, err := svc.Get(context.Background(), "l1")
	require.NoError(t, err, "view counter is telemetry, not a failure mode")
	assert.Equal(t, int64(7), listing.Views)
}

func TestGetNotFound(t *testing.T) {
	svc := newListingService(&MockListingRepository{}, &fakeSearcher{})

	_, err := svc.Get(context.Background(), "ghost")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestCreateForcesPendingReview(t *testing.T) {
	repo := &MockListingRepository{}
	repo.On("Create", mock.AnythingOfType("*models.Listing")).
		Run(func(args mock.Arguments) {
			l := args.Get(0).(*models.Listing)
			assert.Equal(t, models.ListingStatusPendingReview, l.Status,
				"client-supplied status is never trusted")
			l.ID = "l-new"
		}).Return(nil)

	created := &models.Listing{Status: models.ListingStatusPendingReview, OwnerID: "u1"}
	created.ID = "l-new"
	repo.On("FindByID", "l-new").Return(created, nil)

	svc := newListingService(repo, &fakeSearcher{})

	req := &dto.CreateListingRequest{
		Title:    "Nice flat",
		Type:     "RENT",
		Category: "APARTMENT",
		Price:    1200,
		Status:   "PUBLISHED", // ignored
	}
	listing, err := svc.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, string(models.ListingStatusPendingReview), listing.Status)
	repo.AssertExpectations(t)
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	repo := &MockListingRepository{}
	existing := &models.Listing{OwnerID: "owner"}
	existing.ID = "l1"
	repo.On("FindByID", "l1").Return(existing, nil)

	svc := newListingService(repo, &fakeSearcher{})

	_, err := svc.Update(context.Background(), "intruder", models.UserRoleUser, "l1", &dto.UpdateListingRequest{})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPCode)
	repo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdateAdminMayEditAnyListing(t *testing.T) {
	repo := &MockListingRepository{}
	existing := &models.Listing{OwnerID: "owner", Status: models.ListingStatusPublished}
	existing.ID = "l1"
	repo.On("FindByID", "l1").Return(existing, nil)
	repo.On("Update", mock.AnythingOfType("*models.Listing")).Return(nil)

	svc := newListingService(repo, &fakeSearcher{})

	title := "Corrected title"
	listing, err := svc.Update(context.Background(), "admin", models.UserRoleAdmin, "l1", &dto.UpdateListingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Corrected title", listing.Title)
	assert.Equal(t, string(models.ListingStatusPublished), listing.Status,
		"admin edits do not reset moderation")
}

func TestOwnerEditResetsPublishedToPending(t *testing.T) {
	repo := &MockListingRepository{}
	existing := &models.Listing{OwnerID: "owner", Status: models.ListingStatusPublished}
	existing.ID = "l1"
	repo.On("FindByID", "l1").Return(existing, nil)
	repo.On("Update", mock.AnythingOfType("*models.Listing")).Return(nil)

	svc := newListingService(repo, &fakeSearcher{})

	price := 999.0
	listing, err := svc.Update(context.Background(), "owner", models.UserRoleUser, "l1", &dto.UpdateListingRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, string(models.ListingStatusPendingReview), listing.Status)
}

func TestParseNear(t *testing.T) {
	lat, lng, ok := parseNear("48.85, 2.35")
	require.True(t, ok)
	assert.Equal(t, 48.85, lat)
	assert.Equal(t, 2.35, lng)

	for _, raw := range []string{"", "48.85", "a,b", "99,0", "0,190"} {
		_, _, ok := parseNear(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}
