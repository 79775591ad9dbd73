// Package listingquery turns an incoming filter request into a database
// query and shapes the paginated response contract consumed by every
// listing-displaying surface (grid, list, map, home).
//
// Parsing is deliberately permissive: unrecognized or malformed parameter
// values are silently dropped, never rejected. UI controls send empty
// strings and half-filled ranges; those must not produce a 400.
package listingquery

import (
	"math"
	"net/url"
	"strconv"

	"realty_backend/internal/models"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 1000
)

// SortKey is a logical sort column. Backends map it to their own column
// naming (snake_case for the ORM, camelCase for the REST store).
type SortKey string

const (
	SortPrice     SortKey = "price"
	SortCreatedAt SortKey = "createdAt"
)

// Filter is the compiled, whitelisted set of predicates for one request.
// Nil pointer fields mean "no predicate".
type Filter struct {
	Page     int
	PageSize int

	Status   *models.ListingStatus // nil when status=all
	Type     *models.ListingType
	Category *models.ListingCategory

	MinPrice *float64
	MaxPrice *float64
	MinArea  *float64
	MaxArea  *float64

	// Rooms is an equality filter below the at-least threshold and an
	// "N or more" filter at or above it (the "4+" search control).
	Rooms        *int
	RoomsAtLeast bool

	SortKey  SortKey
	SortDesc bool
}

const roomsAtLeastThreshold = 4

// CompileFilter maps raw query parameters into a Filter. It never fails.
func CompileFilter(params url.Values) Filter {
	f := Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		SortKey:  SortCreatedAt,
		SortDesc: true,
	}

	if page, ok := parsePositiveInt(params.Get("page")); ok {
		f.Page = page
	}
	if limit, ok := parsePositiveInt(params.Get("limit")); ok {
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		f.PageSize = limit
	}

	// Default is PUBLISHED only; "all" removes the predicate entirely,
	// anything unrecognized falls back to the default.
	status := models.ListingStatusPublished
	switch raw := params.Get("status"); {
	case raw == "all":
		f.Status = nil
	case models.ValidListingStatus(raw):
		status = models.ListingStatus(raw)
		f.Status = &status
	default:
		f.Status = &status
	}

	if raw := params.Get("type"); models.ValidListingType(raw) {
		t := models.ListingType(raw)
		f.Type = &t
	}
	if raw := params.Get("category"); models.ValidListingCategory(raw) {
		c := models.ListingCategory(raw)
		f.Category = &c
	}

	f.MinPrice = parseFinite(params.Get("minPrice"))
	f.MaxPrice = parseFinite(params.Get("maxPrice"))
	f.MinArea = parseFinite(params.Get("minArea"))
	f.MaxArea = parseFinite(params.Get("maxArea"))

	if n := parseFinite(params.Get("rooms")); n != nil {
		rooms := int(*n)
		f.Rooms = &rooms
		f.RoomsAtLeast = rooms >= roomsAtLeastThreshold
	}

	switch params.Get("sortBy") {
	case "priceAsc":
		f.SortKey, f.SortDesc = SortPrice, false
	case "priceDesc":
		f.SortKey, f.SortDesc = SortPrice, true
	case "oldest":
		f.SortKey, f.SortDesc = SortCreatedAt, false
	case "newest":
		f.SortKey, f.SortDesc = SortCreatedAt, true
	default:
		// "relevance" and anything unrecognized
		f.SortKey, f.SortDesc = SortCreatedAt, true
	}

	return f
}

// Offset is the number of rows skipped before the current page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

func parsePositiveInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func parseFinite(raw string) *float64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}
