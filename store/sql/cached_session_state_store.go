package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-authclient/core"
)

const sessionStateCacheKeyPrefix = "go-authclient::session_state::v1"

// CachedSessionStateStore fronts a base StateStore with read-through caching.
// Writes and deletes invalidate the cached snapshot so reads never serve a
// stale token set.
type CachedSessionStateStore struct {
	base  core.StateStore
	cache repositorycache.CacheService
}

func NewCachedSessionStateStore(
	base core.StateStore,
	cacheService repositorycache.CacheService,
) (*CachedSessionStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base session state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: session state cache service is required")
	}
	return &CachedSessionStateStore{base: base, cache: cacheService}, nil
}

// SessionStateCacheKey returns the deterministic cache key contract for
// session state reads: go-authclient::session_state::v1::<session_id>
// with the session id URL-path escaped.
func SessionStateCacheKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("sqlstore: session id is required")
	}
	return sessionStateCacheKeyPrefix + "::" + url.PathEscape(sessionID), nil
}

func (s *CachedSessionStateStore) Save(ctx context.Context, sessionID string, state core.StateMap) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached session state store is not configured")
	}
	if err := s.base.Save(ctx, sessionID, state); err != nil {
		return err
	}
	cacheKey, err := SessionStateCacheKey(sessionID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedSessionStateStore) Load(ctx context.Context, sessionID string) (core.StateMap, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached session state store is not configured")
	}
	cacheKey, err := SessionStateCacheKey(sessionID)
	if err != nil {
		return nil, err
	}
	state, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.StateMap, error) {
		fetched, fetchErr := s.base.Load(ctx, sessionID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return core.CloneStateMap(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return core.CloneStateMap(state), nil
}

func (s *CachedSessionStateStore) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached session state store is not configured")
	}
	if err := s.base.Delete(ctx, sessionID); err != nil {
		return err
	}
	cacheKey, err := SessionStateCacheKey(sessionID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.StateStore = (*CachedSessionStateStore)(nil)
