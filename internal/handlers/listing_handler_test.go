package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/services"
	"realty_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	listings []listingquery.ListingPayload
	total    int64
	err      error
}

func (s *stubSearcher) Search(ctx context.Context, filter listingquery.Filter) ([]listingquery.ListingPayload, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.listings, s.total, nil
}

func (s *stubSearcher) GetByID(ctx context.Context, id string) (*listingquery.ListingPayload, error) {
	if s.err != nil {
		return nil, s.err
	}
	l := s.listings[0]
	return &l, nil
}

func (s *stubSearcher) IncrementViews(ctx context.Context, id string) error {
	return nil
}

func newTestRouter(searcher services.ListingSearcher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewListingService(nil, nil, searcher, nil)
	handler := NewListingHandler(NewBaseHandler(validator.New()), svc)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func doSearch(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, listingquery.Page) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var page listingquery.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return w, page
}

func TestSearchEndpointReturnsEnvelope(t *testing.T) {
	router := newTestRouter(&stubSearcher{
		listings: []listingquery.ListingPayload{{ID: "l1"}, {ID: "l2"}},
		total:    50,
	})

	w, page := doSearch(t, router, "/api/v1/listings?page=2&limit=10")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, page.Success)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(50), page.Total)
	assert.True(t, page.HasMore)
	assert.Len(t, page.Listings, 2)
}

func TestSearchEndpointEntityUnavailable(t *testing.T) {
	router := newTestRouter(&stubSearcher{err: listingquery.ErrEntityNotFound})

	w, page := doSearch(t, router, "/api/v1/listings")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, page.Success)
	assert.NotEmpty(t, page.Error)
	require.NotNil(t, page.Listings, "clients destructure listings unconditionally")
	assert.Empty(t, page.Listings)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, listingquery.DefaultPageSize, page.PageSize)
}

func TestSearchEndpointUpstreamFailure(t *testing.T) {
	router := newTestRouter(&stubSearcher{err: assertableError("connection reset")})

	w, page := doSearch(t, router, "/api/v1/listings")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, page.Success)
	assert.NotNil(t, page.Listings)
}

func TestSearchEndpointIgnoresJunkParams(t *testing.T) {
	router := newTestRouter(&stubSearcher{total: 0})

	w, page := doSearch(t, router, "/api/v1/listings?minPrice=abc&rooms=lots&sortBy=sideways")

	assert.Equal(t, http.StatusOK, w.Code, "malformed filters never produce a 400")
	assert.True(t, page.Success)
}

func TestMapEndpointEnvelope(t *testing.T) {
	lat, lng := 10.0, 20.0
	router := newTestRouter(&stubSearcher{
		listings: []listingquery.ListingPayload{{ID: "l1", Latitude: &lat, Longitude: &lng}},
		total:    1,
	})

	w, page := doSearch(t, router, "/api/v1/listings/map?near=10,20")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, page.Success)
	assert.Len(t, page.Listings, 1)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
