package listingquery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichOwnersBatchesAndDeduplicates(t *testing.T) {
	listings := []ListingPayload{
		{ID: "l1", OwnerID: "u1"},
		{ID: "l2", OwnerID: "u2"},
		{ID: "l3", OwnerID: "u1"},
	}

	var calls int
	var requested []string
	lookup := func(ctx context.Context, ids []string) (map[string]Owner, error) {
		calls++
		requested = ids
		name := "Alice"
		return map[string]Owner{
			"u1": {ID: "u1", Name: &name},
			"u2": {ID: "u2"},
		}, nil
	}

	err := EnrichOwners(context.Background(), listings, lookup)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "one batch lookup per page")
	assert.ElementsMatch(t, []string{"u1", "u2"}, requested)
	require.NotNil(t, listings[0].Owner)
	assert.Equal(t, "Alice", *listings[0].Owner.Name)
	assert.Equal(t, listings[0].Owner.ID, listings[2].Owner.ID)
}

func TestEnrichOwnersPlaceholderForMissing(t *testing.T) {
	listings := []ListingPayload{
		{ID: "l1", OwnerID: "ghost"},
	}

	lookup := func(ctx context.Context, ids []string) (map[string]Owner, error) {
		return map[string]Owner{}, nil
	}

	err := EnrichOwners(context.Background(), listings, lookup)
	require.NoError(t, err)

	require.NotNil(t, listings[0].Owner, "missing owner still yields an object")
	assert.Equal(t, "ghost", listings[0].Owner.ID)
	assert.Nil(t, listings[0].Owner.Name)
}

func TestEnrichOwnersSkipsEmptyIDs(t *testing.T) {
	listings := []ListingPayload{
		{ID: "l1", OwnerID: ""},
	}

	var calls int
	lookup := func(ctx context.Context, ids []string) (map[string]Owner, error) {
		calls++
		return nil, nil
	}

	err := EnrichOwners(context.Background(), listings, lookup)
	require.NoError(t, err)

	assert.Equal(t, 0, calls, "no lookup when there is nothing to look up")
	require.NotNil(t, listings[0].Owner)
}

func TestEnrichOwnersPropagatesLookupError(t *testing.T) {
	listings := []ListingPayload{{ID: "l1", OwnerID: "u1"}}

	lookup := func(ctx context.Context, ids []string) (map[string]Owner, error) {
		return nil, errors.New("db down")
	}

	err := EnrichOwners(context.Background(), listings, lookup)
	assert.Error(t, err)
}
