package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-resources/core"
)

const dispatchLedgerCacheKeyPrefix = "go-resources::dispatch_ledger::v1"

// CachedDispatchLedger is a read-through wrapper over the ledger. Entries
// are immutable once written, so the cache is only invalidated when a
// record lands with an id that was previously cached as a miss.
type CachedDispatchLedger struct {
	base  *DispatchLedgerStore
	cache repositorycache.CacheService
}

func NewCachedDispatchLedger(
	base *DispatchLedgerStore,
	cacheService repositorycache.CacheService,
) (*CachedDispatchLedger, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base dispatch ledger is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: ledger cache service is required")
	}
	return &CachedDispatchLedger{base: base, cache: cacheService}, nil
}

// DispatchLedgerCacheKey returns the deterministic cache key for ledger
// entry reads: go-resources::dispatch_ledger::v1::<entry-id> with the id
// URL-path escaped.
func DispatchLedgerCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("sqlstore: dispatch entry id is required")
	}
	return dispatchLedgerCacheKeyPrefix + "::" + url.PathEscape(id), nil
}

func (s *CachedDispatchLedger) RecordDispatch(ctx context.Context, activity core.DispatchActivity) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached dispatch ledger is not configured")
	}
	if err := s.base.RecordDispatch(ctx, activity); err != nil {
		return err
	}
	if id := strings.TrimSpace(activity.ID); id != "" {
		cacheKey, err := DispatchLedgerCacheKey(id)
		if err != nil {
			return err
		}
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedDispatchLedger) Get(ctx context.Context, id string) (core.DispatchActivity, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.DispatchActivity{}, fmt.Errorf("sqlstore: cached dispatch ledger is not configured")
	}
	cacheKey, err := DispatchLedgerCacheKey(id)
	if err != nil {
		return core.DispatchActivity{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.DispatchActivity, error) {
		return s.base.Get(ctx, id)
	})
}

func (s *CachedDispatchLedger) List(ctx context.Context, filter DispatchLedgerFilter) (DispatchLedgerPage, error) {
	if s == nil || s.base == nil {
		return DispatchLedgerPage{}, fmt.Errorf("sqlstore: cached dispatch ledger is not configured")
	}
	return s.base.List(ctx, filter)
}
