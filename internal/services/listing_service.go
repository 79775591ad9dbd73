package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"realty_backend/internal/email"
	"realty_backend/internal/listingquery"
	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"
)

const mapPageSize = 500

// ListingSearcher is the read path for public listing queries. The REST
// reader implements it; when no REST endpoint is configured the service
// falls back to the ORM repository through ormSearcher.
type ListingSearcher interface {
	Search(ctx context.Context, filter listingquery.Filter) ([]listingquery.ListingPayload, int64, error)
	GetByID(ctx context.Context, id string) (*listingquery.ListingPayload, error)
	IncrementViews(ctx context.Context, id string) error
}

// ListingService owns listing reads, writes and moderation.
type ListingService struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	searcher    ListingSearcher
	email       email.Provider
}

func NewListingService(
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
	searcher ListingSearcher,
	emailProvider email.Provider,
) *ListingService {
	if searcher == nil {
		searcher = &ormSearcher{listingRepo: listingRepo}
	}
	return &ListingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		searcher:    searcher,
		email:       emailProvider,
	}
}

// Search compiles the raw query parameters and returns one page. The
// returned Page keeps its envelope shape even on failure; the error tells
// the handler which status to pair with it.
func (s *ListingService) Search(ctx context.Context, params url.Values) (listingquery.Page, error) {
	filter := listingquery.CompileFilter(params)

	listings, total, err := s.searcher.Search(ctx, filter)
	if err != nil {
		logger.CtxWithError(ctx, "listing search failed", err)
		return listingquery.ErrorPage(filter.Page, filter.PageSize, "Failed to load listings"), s.wrapSearchErr(err)
	}
	return listingquery.NewPage(listings, filter.Page, filter.PageSize, total), nil
}

// MapSearch serves the map surface: one large page, optionally ordered by
// distance from a "near=lat,lng" point.
func (s *ListingService) MapSearch(ctx context.Context, params url.Values) (listingquery.Page, error) {
	filter := listingquery.CompileFilter(params)
	filter.Page = 1
	filter.PageSize = mapPageSize

	listings, total, err := s.searcher.Search(ctx, filter)
	if err != nil {
		logger.CtxWithError(ctx, "map search failed", err)
		return listingquery.ErrorPage(filter.Page, filter.PageSize, "Failed to load listings"), s.wrapSearchErr(err)
	}

	// Only rows with a map point belong on this surface.
	fetched := len(listings)
	listings = listingquery.WithCoordinates(listings)
	total -= int64(fetched - len(listings))

	if lat, lng, ok := parseNear(params.Get("near")); ok {
		listingquery.SortByDistance(listings, lat, lng)
	}
	return listingquery.NewPage(listings, filter.Page, filter.PageSize, total), nil
}

// HomeSections is the landing-page payload: a few small curated pages.
type HomeSections struct {
	Latest  []listingquery.ListingPayload `json:"latest"`
	ForRent []listingquery.ListingPayload `json:"forRent"`
	ForSale []listingquery.ListingPayload `json:"forSale"`
}

// Home builds the landing-page sections from three small searches. A
// failing section degrades to empty rather than failing the page.
func (s *ListingService) Home(ctx context.Context) (*HomeSections, error) {
	sections := &HomeSections{
		Latest:  s.section(ctx, url.Values{"limit": {"8"}}),
		ForRent: s.section(ctx, url.Values{"limit": {"4"}, "type": {string(models.ListingTypeRent)}}),
		ForSale: s.section(ctx, url.Values{"limit": {"4"}, "type": {string(models.ListingTypeSale)}}),
	}
	return sections, nil
}

func (s *ListingService) section(ctx context.Context, params url.Values) []listingquery.ListingPayload {
	filter := listingquery.CompileFilter(params)
	listings, _, err := s.searcher.Search(ctx, filter)
	if err != nil {
		logger.CtxWithError(ctx, "home section failed", err)
		return []listingquery.ListingPayload{}
	}
	if listings == nil {
		listings = []listingquery.ListingPayload{}
	}
	return listings
}

// Get returns one listing and bumps its view counter. The counter is
// best-effort telemetry; an increment failure is logged and ignored.
func (s *ListingService) Get(ctx context.Context, id string) (*listingquery.ListingPayload, error) {
	listing, err := s.searcher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, s.wrapSearchErr(err)
	}

	if err := s.searcher.IncrementViews(ctx, id); err != nil {
		logger.CtxWarn(ctx, "view increment failed", "listing_id", id, "error", err.Error())
	} else {
		listing.Views++
	}
	return listing, nil
}

// Create stores a new listing. The status is always PENDING_REVIEW: a
// client-supplied status is ignored, never trusted.
func (s *ListingService) Create(ctx context.Context, ownerID string, req *dto.CreateListingRequest) (*listingquery.ListingPayload, error) {
	listing := &models.Listing{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.ListingType(req.Type),
		Category:    models.ListingCategory(req.Category),
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Area:        req.Area,
		Rooms:       req.Rooms,
		Images:      req.Images,
		Amenities:   req.Amenities,
		Status:      models.ListingStatusPendingReview,
		OwnerID:     ownerID,
	}
	if listing.Currency == "" {
		listing.Currency = "USD"
	}

	if err := s.listingRepo.Create(listing); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "listing created", "listing_id", listing.ID, "owner_id", ownerID)

	created, err := s.listingRepo.FindByID(listing.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	payload := listingquery.ShapeModel(created)
	return &payload, nil
}

// Update applies a partial update. Only the owner or an admin may touch a
// listing; owner edits to a published listing send it back to moderation.
func (s *ListingService) Update(ctx context.Context, userID string, role models.UserRole, id string, req *dto.UpdateListingRequest) (*listingquery.ListingPayload, error) {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	isAdmin := role == models.UserRoleAdmin
	if listing.OwnerID != userID && !isAdmin {
		return nil, apperrors.ErrNotListingOwner
	}

	applyListingUpdate(listing, req)
	if !isAdmin && listing.Status == models.ListingStatusPublished {
		listing.Status = models.ListingStatusPendingReview
	}

	if err := s.listingRepo.Update(listing); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := listingquery.ShapeModel(listing)
	return &payload, nil
}

// Delete removes a listing. Owner or admin only.
func (s *ListingService) Delete(ctx context.Context, userID string, role models.UserRole, id string) error {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if listing.OwnerID != userID && role != models.UserRoleAdmin {
		return apperrors.ErrNotListingOwner
	}

	if err := s.listingRepo.Delete(id); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "listing deleted", "listing_id", id)
	return nil
}

// MyListings lists the caller's own listings regardless of status.
func (s *ListingService) MyListings(ctx context.Context, ownerID string, limit, offset int) ([]listingquery.ListingPayload, int64, error) {
	listings, total, err := s.listingRepo.FindByOwner(ownerID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	payloads := make([]listingquery.ListingPayload, 0, len(listings))
	for i := range listings {
		payloads = append(payloads, listingquery.ShapeModel(&listings[i]))
	}
	return payloads, total, nil
}

// Approve publishes a pending listing and notifies the owner.
func (s *ListingService) Approve(ctx context.Context, id string) error {
	return s.moderate(ctx, id, models.ListingStatusPublished,
		"Your listing is live",
		"Good news: your listing %q passed review and is now published.")
}

// Archive takes a listing off the public surface and notifies the owner.
func (s *ListingService) Archive(ctx context.Context, id string) error {
	return s.moderate(ctx, id, models.ListingStatusArchived,
		"Your listing was archived",
		"Your listing %q was archived by a moderator and is no longer visible.")
}

func (s *ListingService) moderate(ctx context.Context, id string, status models.ListingStatus, subject, bodyFmt string) error {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if err := s.listingRepo.UpdateStatus(id, status); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "listing moderated", "listing_id", id, "status", string(status))

	s.notifyOwner(listing, subject, fmt.Sprintf(bodyFmt, listing.Title))
	return nil
}

// notifyOwner sends moderation mail off the request path. Delivery failure
// is logged, never surfaced.
func (s *ListingService) notifyOwner(listing *models.Listing, subject, body string) {
	if s.email == nil {
		return
	}
	owner := listing.Owner
	if owner == nil {
		var err error
		owner, err = s.userRepo.FindByID(listing.OwnerID)
		if err != nil {
			logger.Warn("owner lookup for notification failed", "listing_id", listing.ID, "error", err.Error())
			return
		}
	}
	go func(to string) {
		if err := s.email.Send(to, subject, body); err != nil {
			logger.Warn("moderation mail failed", "to", to, "error", err.Error())
		}
	}(owner.Email)
}

// wrapSearchErr maps read-path failures to transport-facing errors. Probe
// exhaustion means the environment is broken, not the request: 503.
func (s *ListingService) wrapSearchErr(err error) error {
	if errors.Is(err, listingquery.ErrEntityNotFound) {
		return apperrors.EntityUnavailable(err, "listings")
	}
	return apperrors.UpstreamError(err, "database")
}

func applyListingUpdate(listing *models.Listing, req *dto.UpdateListingRequest) {
	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Type != nil {
		listing.Type = models.ListingType(*req.Type)
	}
	if req.Category != nil {
		listing.Category = models.ListingCategory(*req.Category)
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Currency != nil {
		listing.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Address != nil {
		listing.Address = *req.Address
	}
	if req.Latitude != nil {
		listing.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		listing.Longitude = req.Longitude
	}
	if req.Area != nil {
		listing.Area = req.Area
	}
	if req.Rooms != nil {
		listing.Rooms = req.Rooms
	}
	if req.Images != nil {
		listing.Images = req.Images
	}
	if req.Amenities != nil {
		listing.Amenities = req.Amenities
	}
}

// parseNear parses "lat,lng". Anything malformed means no distance sort.
func parseNear(raw string) (lat, lng float64, ok bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// ormSearcher adapts the ORM repository to the searcher interface for
// deployments without a REST endpoint.
type ormSearcher struct {
	listingRepo repositories.ListingRepository
}

func (o *ormSearcher) Search(ctx context.Context, filter listingquery.Filter) ([]listingquery.ListingPayload, int64, error) {
	listings, total, err := o.listingRepo.Search(filter)
	if err != nil {
		return nil, 0, err
	}
	payloads := make([]listingquery.ListingPayload, 0, len(listings))
	for i := range listings {
		payloads = append(payloads, listingquery.ShapeModel(&listings[i]))
	}
	return payloads, total, nil
}

func (o *ormSearcher) GetByID(ctx context.Context, id string) (*listingquery.ListingPayload, error) {
	listing, err := o.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	payload := listingquery.ShapeModel(listing)
	return &payload, nil
}

func (o *ormSearcher) IncrementViews(ctx context.Context, id string) error {
	return o.listingRepo.IncrementViews(id)
}
