package listingquery

import (
	"encoding/json"
	"strconv"
	"time"

	"realty_backend/internal/models"
)

// Owner is the slice of user data merged onto a listing. Fields are nil
// when the owner record could not be resolved; the owner object itself is
// never absent.
type Owner struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// ListingPayload is the canonical listing shape returned by every surface.
type ListingPayload struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	Address       string     `json:"address"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	Area          *float64   `json:"area"`
	Rooms         *int       `json:"rooms"`
	Images        []string   `json:"images"`
	Amenities     []string   `json:"amenities"`
	Status        string     `json:"status"`
	OwnerID       string     `json:"ownerId"`
	Views         int64      `json:"views"`
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Owner         *Owner     `json:"owner"`
}

// Page is the response envelope. The shape is identical on success and on
// failure so callers can unconditionally destructure `listings`.
type Page struct {
	Success  bool             `json:"success"`
	Listings []ListingPayload `json:"listings"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int64            `json:"total"`
	HasMore  bool             `json:"hasMore"`
	Error    string           `json:"error,omitempty"`
}

// NewPage computes hasMore as skip + returned < total.
func NewPage(listings []ListingPayload, page, pageSize int, total int64) Page {
	if listings == nil {
		listings = []ListingPayload{}
	}
	skip := (page - 1) * pageSize
	return Page{
		Success:  true,
		Listings: listings,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(skip+len(listings)) < total,
	}
}

// ErrorPage keeps the envelope shape on failure: empty list, zero total.
func ErrorPage(page, pageSize int, message string) Page {
	return Page{
		Success:  false,
		Listings: []ListingPayload{},
		Page:     page,
		PageSize: pageSize,
		Total:    0,
		HasMore:  false,
		Error:    message,
	}
}

// ShapeRow normalizes a raw REST row into the canonical payload. Rows come
// back with inconsistent field casings depending on which table spelling
// was resolved, so every field coalesces its known variants. Missing lists
// default to empty, views to 0 and timestamps to now (a guard against null
// timestamps, not a business default).
func ShapeRow(row map[string]any) ListingPayload {
	now := time.Now().UTC()
	p := ListingPayload{
		ID:          pickString(row, "id", "ID", "Id"),
		Title:       pickString(row, "title", "Title"),
		Description: pickString(row, "description", "Description"),
		Type:        pickString(row, "type", "Type"),
		Category:    pickString(row, "category", "Category"),
		Price:       pickFloat(row, "price", "Price"),
		Currency:    pickString(row, "currency", "Currency"),
		Address:     pickString(row, "address", "Address"),
		Latitude:    pickFloatPtr(row, "latitude", "lat"),
		Longitude:   pickFloatPtr(row, "longitude", "lng", "lon"),
		Area:        pickFloatPtr(row, "area", "Area"),
		Status:      pickString(row, "status", "Status"),
		OwnerID:     pickString(row, "ownerId", "owner_id", "ownerid", "OwnerId"),
		Views:       int64(pickFloat(row, "views", "Views")),
		Images:      pickStrings(row, "images", "Images"),
		Amenities:   pickStrings(row, "amenities", "Amenities"),
		CreatedAt:   pickTime(row, now, "createdAt", "created_at", "CreatedAt"),
		UpdatedAt:   pickTime(row, now, "updatedAt", "updated_at", "UpdatedAt"),
	}

	if rooms := pickFloatPtr(row, "rooms", "Rooms"); rooms != nil {
		n := int(*rooms)
		p.Rooms = &n
	}
	if af := pickTimePtr(row, "availableFrom", "available_from"); af != nil {
		p.AvailableFrom = af
	}
	return p
}

// ShapeModel converts an ORM row into the same canonical payload. The owner
// comes from the preloaded relation when present.
func ShapeModel(l *models.Listing) ListingPayload {
	p := ListingPayload{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Type:        string(l.Type),
		Category:    string(l.Category),
		Price:       l.Price,
		Currency:    l.Currency,
		Address:     l.Address,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Area:        l.Area,
		Rooms:       l.Rooms,
		Images:      append([]string{}, l.Images...),
		Amenities:   append([]string{}, l.Amenities...),
		Status:      string(l.Status),
		OwnerID:     l.OwnerID,
		Views:       l.Views,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Owner != nil {
		p.Owner = &Owner{
			ID:     l.Owner.ID,
			Name:   strPtrOrNil(l.Owner.Name),
			Email:  strPtrOrNil(l.Owner.Email),
			Avatar: strPtrOrNil(l.Owner.Avatar),
		}
	} else {
		p.Owner = &Owner{ID: l.OwnerID}
	}
	return p
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- coalescing pickers ---

func pickString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func pickFloat(row map[string]any, keys ...string) float64 {
	if p := pickFloatPtr(row, keys...); p != nil {
		return *p
	}
	return 0
}

func pickFloatPtr(row map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return &n
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func pickStrings(row map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch arr := v.(type) {
		case []string:
			return arr
		case []any:
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return []string{}
}

func pickTime(row map[string]any, fallback time.Time, keys ...string) time.Time {
	if t := pickTimePtr(row, keys...); t != nil {
		return *t
	}
	return fallback
}

func pickTimePtr(row map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}
