package listingquery

import (
	"context"
	"errors"
	"sync"

	"realty_backend/internal/logger"
)

// Logical entities whose backing table name is discovered at runtime. The
// schema's casing is not guaranteed consistent across environments, so the
// first access probes the candidate spellings in order.
const (
	EntityListing = "listing"
	EntityUser    = "user"
)

var ErrEntityNotFound = errors.New("no backing table found for entity")

var tableCandidates = map[string][]string{
	EntityListing: {"Listing", "listings", "Listings", "listing"},
	EntityUser:    {"User", "users", "Users", "user"},
}

// Prober checks that a table exists with a zero-row query.
type Prober interface {
	Probe(ctx context.Context, table string) error
}

// TableResolver discovers and caches the backing table name per entity.
// The discovered name is kept for process lifetime and never invalidated:
// a schema does not rename its tables under a running server. Concurrent
// first calls may probe twice; both store the same value.
type TableResolver struct {
	prober Prober
	cache  sync.Map // entity -> table name
}

func NewTableResolver(p Prober) *TableResolver {
	return &TableResolver{prober: p}
}

// Resolve returns the backing table name for a logical entity, probing the
// candidate spellings on first use. All candidates failing means the
// environment is misconfigured, not that the request was bad.
func (r *TableResolver) Resolve(ctx context.Context, entity string) (string, error) {
	if cached, ok := r.cache.Load(entity); ok {
		return cached.(string), nil
	}

	candidates, ok := tableCandidates[entity]
	if !ok {
		return "", ErrEntityNotFound
	}

	var lastErr error
	for _, name := range candidates {
		if err := r.prober.Probe(ctx, name); err != nil {
			lastErr = err
			continue
		}
		r.cache.Store(entity, name)
		logger.CtxInfo(ctx, "resolved backing table", "entity", entity, "table", name)
		return name, nil
	}

	logger.CtxWithError(ctx, "all table candidates failed", lastErr, "entity", entity)
	return "", ErrEntityNotFound
}
