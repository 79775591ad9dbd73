package listingquery

import (
	"net/url"
	"testing"

	"realty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilterDefaults(t *testing.T) {
	f := CompileFilter(url.Values{})

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	require.NotNil(t, f.Status)
	assert.Equal(t, models.ListingStatusPublished, *f.Status)
	assert.Nil(t, f.Type)
	assert.Nil(t, f.Category)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.Rooms)
	assert.Equal(t, SortCreatedAt, f.SortKey)
	assert.True(t, f.SortDesc)
}

func TestCompileFilterStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *models.ListingStatus
	}{
		{"all removes the predicate", "all", nil},
		{"valid status is kept", "ARCHIVED", statusPtr(models.ListingStatusArchived)},
		{"unknown falls back to published", "bogus", statusPtr(models.ListingStatusPublished)},
		{"empty falls back to published", "", statusPtr(models.ListingStatusPublished)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := CompileFilter(url.Values{"status": {tt.raw}})
			if tt.want == nil {
				assert.Nil(t, f.Status)
			} else {
				require.NotNil(t, f.Status)
				assert.Equal(t, *tt.want, *f.Status)
			}
		})
	}
}

func TestCompileFilterMalformedValuesDropped(t *testing.T) {
	params := url.Values{
		"minPrice": {"abc"},
		"maxPrice": {"NaN"},
		"minArea":  {"Inf"},
		"rooms":    {"many"},
		"type":     {"CONDO"},
		"category": {"castle"},
		"page":     {"-3"},
		"limit":    {"zero"},
	}
	f := CompileFilter(params)

	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Nil(t, f.MinArea)
	assert.Nil(t, f.Rooms)
	assert.Nil(t, f.Type)
	assert.Nil(t, f.Category)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
}

func TestCompileFilterPriceWindow(t *testing.T) {
	// An inverted window is compiled as-is; the store simply matches
	// nothing. Permissive parsing never second-guesses the range.
	f := CompileFilter(url.Values{"minPrice": {"900"}, "maxPrice": {"800"}})

	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 900.0, *f.MinPrice)
	assert.Equal(t, 800.0, *f.MaxPrice)
}

func TestCompileFilterRoomsThreshold(t *testing.T) {
	f := CompileFilter(url.Values{"rooms": {"2"}})
	require.NotNil(t, f.Rooms)
	assert.Equal(t, 2, *f.Rooms)
	assert.False(t, f.RoomsAtLeast)

	f = CompileFilter(url.Values{"rooms": {"4"}})
	require.NotNil(t, f.Rooms)
	assert.Equal(t, 4, *f.Rooms)
	assert.True(t, f.RoomsAtLeast)

	f = CompileFilter(url.Values{"rooms": {"7"}})
	assert.True(t, f.RoomsAtLeast)
}

func TestCompileFilterSort(t *testing.T) {
	tests := []struct {
		raw      string
		wantKey  SortKey
		wantDesc bool
	}{
		{"priceAsc", SortPrice, false},
		{"priceDesc", SortPrice, true},
		{"oldest", SortCreatedAt, false},
		{"newest", SortCreatedAt, true},
		{"relevance", SortCreatedAt, true},
		{"whatever", SortCreatedAt, true},
		{"", SortCreatedAt, true},
	}

	for _, tt := range tests {
		f := CompileFilter(url.Values{"sortBy": {tt.raw}})
		assert.Equal(t, tt.wantKey, f.SortKey, "sortBy=%q", tt.raw)
		assert.Equal(t, tt.wantDesc, f.SortDesc, "sortBy=%q", tt.raw)
	}
}

func TestCompileFilterLimitClamp(t *testing.T) {
	f := CompileFilter(url.Values{"limit": {"5000"}})
	assert.Equal(t, MaxPageSize, f.PageSize)

	f = CompileFilter(url.Values{"limit": {"1"}})
	assert.Equal(t, 1, f.PageSize)

	f = CompileFilter(url.Values{"limit": {"0"}})
	assert.Equal(t, DefaultPageSize, f.PageSize)
}

func TestFilterOffset(t *testing.T) {
	f := Filter{Page: 1, PageSize: 12}
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 20}
	assert.Equal(t, 40, f.Offset())
}

func statusPtr(s models.ListingStatus) *models.ListingStatus {
	return &s
}
