package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/restdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRestBackend applies price/status predicates, ordering and paging the
// way the hosted REST interface does, including the exact total in
// Content-Range.
func fakeRestBackend(t *testing.T, listings []map[string]any, owners []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rows []map[string]any
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "Listing":
			rows = listings
		case "User":
			rows = owners
		default:
			http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
			return
		}

		params := r.URL.Query()
		filtered := applyRestConds(rows, params)

		if col, desc, ok := parseRestOrder(params.Get("order")); ok {
			sort.SliceStable(filtered, func(i, j int) bool {
				a, _ := filtered[i][col].(float64)
				b, _ := filtered[j][col].(float64)
				if desc {
					return a > b
				}
				return a < b
			})
		}

		total := len(filtered)
		offset, _ := strconv.Atoi(params.Get("offset"))
		limit := total
		if v := params.Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page := filtered[offset:end]

		w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, end-1, total))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
}

func applyRestConds(rows []map[string]any, params url.Values) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		keep := true
		for column, exprs := range params {
			if column == "order" || column == "limit" || column == "offset" {
				continue
			}
			for _, expr := range exprs {
				if !restCondHolds(row[column], expr) {
					keep = false
				}
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func restCondHolds(value any, expr string) bool {
	op, arg, ok := strings.Cut(expr, ".")
	if !ok {
		return true
	}
	switch op {
	case "eq":
		return fmt.Sprintf("%v", value) == arg
	case "gte":
		n, _ := value.(float64)
		bound, _ := strconv.ParseFloat(arg, 64)
		return n >= bound
	case "lte":
		n, _ := value.(float64)
		bound, _ := strconv.ParseFloat(arg, 64)
		return n <= bound
	case "in":
		list := strings.Trim(arg, "()")
		for _, item := range strings.Split(list, ",") {
			if strings.Trim(item, `"`) == fmt.Sprintf("%v", value) {
				return true
			}
		}
		return false
	}
	return true
}

func parseRestOrder(order string) (column string, desc bool, ok bool) {
	column, dir, ok := strings.Cut(order, ".")
	return column, dir == "desc", ok
}

func listingFixture() []map[string]any {
	prices := []float64{300, 600, 800, 900, 1200}
	rows := make([]map[string]any, 0, len(prices))
	for i, price := range prices {
		rows = append(rows, map[string]any{
			"id":      fmt.Sprintf("l%d", i+1),
			"title":   fmt.Sprintf("Listing %d", i+1),
			"price":   price,
			"status":  "PUBLISHED",
			"ownerId": "u1",
		})
	}
	return rows
}

func TestRestReaderPriceWindowPage(t *testing.T) {
	owners := []map[string]any{{"id": "u1", "name": "Olga", "email": "olga@example.com"}}
	server := fakeRestBackend(t, listingFixture(), owners)
	defer server.Close()

	reader := NewRestListingReader(restdb.New(server.URL, "test-key"))
	filter := listingquery.CompileFilter(url.Values{
		"minPrice": {"500"},
		"maxPrice": {"1000"},
		"sortBy":   {"priceDesc"},
		"page":     {"1"},
		"limit":    {"2"},
	})

	listings, total, err := reader.Search(context.Background(), filter)
	require.NoError(t, err)

	// Three rows match the window (600, 800, 900); the page holds the top
	// two and the exact count keeps hasMore truthful.
	require.Len(t, listings, 2)
	assert.Equal(t, 900.0, listings[0].Price)
	assert.Equal(t, 800.0, listings[1].Price)
	assert.Equal(t, int64(3), total)

	page := listingquery.NewPage(listings, filter.Page, filter.PageSize, total)
	assert.True(t, page.HasMore, "one matching row remains beyond the page")
	assert.Equal(t, int64(3), page.Total)

	require.NotNil(t, listings[0].Owner)
	require.NotNil(t, listings[0].Owner.Name)
	assert.Equal(t, "Olga", *listings[0].Owner.Name)
}

func TestRestReaderSecondPageExhaustsWindow(t *testing.T) {
	server := fakeRestBackend(t, listingFixture(), []map[string]any{{"id": "u1", "name": "Olga"}})
	defer server.Close()

	reader := NewRestListingReader(restdb.New(server.URL, "test-key"))
	filter := listingquery.CompileFilter(url.Values{
		"minPrice": {"500"},
		"maxPrice": {"1000"},
		"sortBy":   {"priceDesc"},
		"page":     {"2"},
		"limit":    {"2"},
	})

	listings, total, err := reader.Search(context.Background(), filter)
	require.NoError(t, err)

	require.Len(t, listings, 1)
	assert.Equal(t, 600.0, listings[0].Price)

	page := listingquery.NewPage(listings, filter.Page, filter.PageSize, total)
	assert.False(t, page.HasMore)
}
