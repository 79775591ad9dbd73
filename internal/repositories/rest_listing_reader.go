package repositories

import (
	"context"

	"realty_backend/internal/listingquery"
	"realty_backend/internal/restdb"
)

// RestListingReader serves listing queries over the hosted database's REST
// interface. Table names are resolved through the probing resolver on
// first use; owner data is merged in with an application-level batch join
// because this path has no relational includes.
type RestListingReader struct {
	client   *restdb.Client
	resolver *listingquery.TableResolver
}

func NewRestListingReader(client *restdb.Client) *RestListingReader {
	return &RestListingReader{
		client:   client,
		resolver: listingquery.NewTableResolver(client),
	}
}

// Search runs the compiled filter and returns one shaped, owner-enriched
// page. Three sequential round trips: table probe (first use only), the
// page query, the owner batch lookup.
func (r *RestListingReader) Search(ctx context.Context, filter listingquery.Filter) ([]listingquery.ListingPayload, int64, error) {
	table, err := r.resolver.Resolve(ctx, listingquery.EntityListing)
	if err != nil {
		return nil, 0, err
	}

	q := buildRestQuery(filter)
	rows, total, err := r.client.Select(ctx, table, q)
	if err != nil {
		return nil, 0, err
	}

	listings := make([]listingquery.ListingPayload, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, listingquery.ShapeRow(row))
	}

	if err := listingquery.EnrichOwners(ctx, listings, r.lookupOwners); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// GetByID fetches a single shaped, owner-enriched listing.
func (r *RestListingReader) GetByID(ctx context.Context, id string) (*listingquery.ListingPayload, error) {
	table, err := r.resolver.Resolve(ctx, listingquery.EntityListing)
	if err != nil {
		return nil, err
	}

	rows, _, err := r.client.Select(ctx, table, restdb.NewQuery().Eq("id", id).Range(0, 1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrListingNotFound
	}

	listings := []listingquery.ListingPayload{listingquery.ShapeRow(rows[0])}
	if err := listingquery.EnrichOwners(ctx, listings, r.lookupOwners); err != nil {
		return nil, err
	}
	return &listings[0], nil
}

// IncrementViews is a read-modify-write on this path: the REST interface
// has no atomic increment. Lost updates under concurrency are accepted for
// a view counter.
func (r *RestListingReader) IncrementViews(ctx context.Context, id string) error {
	table, err := r.resolver.Resolve(ctx, listingquery.EntityListing)
	if err != nil {
		return err
	}

	rows, _, err := r.client.Select(ctx, table, restdb.NewQuery().Eq("id", id).Range(0, 1))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrListingNotFound
	}

	current := listingquery.ShapeRow(rows[0])
	return r.client.Update(ctx, table, restdb.NewQuery().Eq("id", id),
		map[string]any{"views": current.Views + 1})
}

func (r *RestListingReader) lookupOwners(ctx context.Context, ids []string) (map[string]listingquery.Owner, error) {
	table, err := r.resolver.Resolve(ctx, listingquery.EntityUser)
	if err != nil {
		return nil, err
	}

	rows, _, err := r.client.Select(ctx, table, restdb.NewQuery().In("id", ids))
	if err != nil {
		return nil, err
	}

	owners := make(map[string]listingquery.Owner, len(rows))
	for _, row := range rows {
		owner := shapeOwnerRow(row)
		if owner.ID != "" {
			owners[owner.ID] = owner
		}
	}
	return owners, nil
}

func shapeOwnerRow(row map[string]any) listingquery.Owner {
	owner := listingquery.Owner{}
	if id, ok := row["id"].(string); ok {
		owner.ID = id
	}
	if name, ok := row["name"].(string); ok && name != "" {
		owner.Name = &name
	}
	if email, ok := row["email"].(string); ok && email != "" {
		owner.Email = &email
	}
	if avatar, ok := row["avatar"].(string); ok && avatar != "" {
		owner.Avatar = &avatar
	}
	return owner
}

// buildRestQuery maps a compiled filter to REST query parameters. This
// path's columns are camelCase.
func buildRestQuery(filter listingquery.Filter) restdb.Query {
	q := restdb.NewQuery()

	if filter.Status != nil {
		q = q.Eq("status", string(*filter.Status))
	}
	if filter.Type != nil {
		q = q.Eq("type", string(*filter.Type))
	}
	if filter.Category != nil {
		q = q.Eq("category", string(*filter.Category))
	}
	if filter.MinPrice != nil {
		q = q.Gte("price", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Lte("price", *filter.MaxPrice)
	}
	if filter.MinArea != nil {
		q = q.Gte("area", *filter.MinArea)
	}
	if filter.MaxArea != nil {
		q = q.Lte("area", *filter.MaxArea)
	}
	if filter.Rooms != nil {
		if filter.RoomsAtLeast {
			q = q.Gte("rooms", *filter.Rooms)
		} else {
			q = q.Eq("rooms", *filter.Rooms)
		}
	}

	column := "createdAt"
	if filter.SortKey == listingquery.SortPrice {
		column = "price"
	}
	return q.Order(column, filter.SortDesc).Range(filter.Offset(), filter.PageSize)
}
