package listingquery

import (
	"context"
)

// OwnerLookup batch-fetches owner records by id. Implementations issue one
// `id IN (...)` query; missing ids are simply absent from the result map.
type OwnerLookup func(ctx context.Context, ids []string) (map[string]Owner, error)

// EnrichOwners merges owner data onto a page of listings with a single
// batch lookup. This is an application-level join: the REST access path
// does not support relational includes reliably across the probed table
// spellings, so the join happens here.
//
// Every listing ends up with a non-nil Owner. When the ownerId has no
// matching user the owner resolves to a placeholder with null fields;
// response shape stability wins over data completeness.
func EnrichOwners(ctx context.Context, listings []ListingPayload, lookup OwnerLookup) error {
	seen := make(map[string]struct{})
	var ids []string
	for i := range listings {
		id := listings[i].OwnerID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	owners := map[string]Owner{}
	if len(ids) > 0 {
		var err error
		owners, err = lookup(ctx, ids)
		if err != nil {
			return err
		}
	}

	for i := range listings {
		if owner, ok := owners[listings[i].OwnerID]; ok {
			o := owner
			listings[i].Owner = &o
			continue
		}
		listings[i].Owner = &Owner{ID: listings[i].OwnerID}
	}
	return nil
}
