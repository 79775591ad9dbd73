package listingquery

import (
	"testing"
	"time"

	"realty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageHasMore(t *testing.T) {
	three := make([]ListingPayload, 3)

	// 12 shown out of before, 3 now, 20 total: more remain.
	page := NewPage(three, 2, 12, 20)
	assert.True(t, page.HasMore)
	assert.True(t, page.Success)

	// skip 12 + 3 returned == 15 total: exhausted.
	page = NewPage(three, 2, 12, 15)
	assert.False(t, page.HasMore)

	page = NewPage(nil, 1, 12, 0)
	assert.False(t, page.HasMore)
	require.NotNil(t, page.Listings, "listings must never be null")
	assert.Empty(t, page.Listings)
}

func TestErrorPageKeepsEnvelopeShape(t *testing.T) {
	page := ErrorPage(3, 24, "backing store unavailable")

	assert.False(t, page.Success)
	assert.NotNil(t, page.Listings)
	assert.Empty(t, page.Listings)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 24, page.PageSize)
	assert.Equal(t, int64(0), page.Total)
	assert.False(t, page.HasMore)
	assert.Equal(t, "backing store unavailable", page.Error)
}

func TestShapeRowCoalescesCasings(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
	}{
		{"camelCase", map[string]any{"id": "l1", "ownerId": "u1", "createdAt": "2024-03-01T10:00:00Z"}},
		{"snake_case", map[string]any{"id": "l1", "owner_id": "u1", "created_at": "2024-03-01T10:00:00Z"}},
		{"lowercase", map[string]any{"id": "l1", "ownerid": "u1", "createdAt": "2024-03-01T10:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ShapeRow(tt.row)
			assert.Equal(t, "l1", p.ID)
			assert.Equal(t, "u1", p.OwnerID)
			assert.Equal(t, 2024, p.CreatedAt.Year())
		})
	}
}

func TestShapeRowDefaults(t *testing.T) {
	before := time.Now().UTC()
	p := ShapeRow(map[string]any{"id": "l1"})

	assert.NotNil(t, p.Images)
	assert.Empty(t, p.Images)
	assert.NotNil(t, p.Amenities)
	assert.Empty(t, p.Amenities)
	assert.Equal(t, int64(0), p.Views)
	assert.False(t, p.CreatedAt.Before(before), "missing timestamp defaults to now")
	assert.Nil(t, p.Rooms)
	assert.Nil(t, p.Latitude)
}

func TestShapeRowNumericVariants(t *testing.T) {
	p := ShapeRow(map[string]any{
		"id":    "l1",
		"price": "1250.5", // numbers sometimes arrive as strings
		"rooms": float64(3),
		"views": float64(42),
	})

	assert.Equal(t, 1250.5, p.Price)
	require.NotNil(t, p.Rooms)
	assert.Equal(t, 3, *p.Rooms)
	assert.Equal(t, int64(42), p.Views)
}

func TestShapeRowStringArrays(t *testing.T) {
	p := ShapeRow(map[string]any{
		"id":        "l1",
		"images":    []any{"a.jpg", "b.jpg", 7},
		"amenities": []any{"wifi"},
	})

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
	assert.Equal(t, []string{"wifi"}, p.Amenities)
}

func TestShapeModelPlaceholderOwner(t *testing.T) {
	listing := &models.Listing{OwnerID: "u9"}
	listing.ID = "l1"

	p := ShapeModel(listing)

	require.NotNil(t, p.Owner, "owner object is never absent")
	assert.Equal(t, "u9", p.Owner.ID)
	assert.Nil(t, p.Owner.Name)
	assert.Nil(t, p.Owner.Email)
}

func TestShapeModelPreloadedOwner(t *testing.T) {
	owner := &models.User{Name: "Alice", Email: "alice@example.com"}
	owner.ID = "u9"
	listing := &models.Listing{
		OwnerID:   "u9",
		Owner:     owner,
		Images:    []string{"a.jpg"},
		Amenities: nil,
	}
	listing.ID = "l1"

	p := ShapeModel(listing)

	require.NotNil(t, p.Owner)
	require.NotNil(t, p.Owner.Name)
	assert.Equal(t, "Alice", *p.Owner.Name)
	assert.Equal(t, []string{"a.jpg"}, p.Images)
	assert.NotNil(t, p.Amenities)
	assert.Empty(t, p.Amenities)
}
