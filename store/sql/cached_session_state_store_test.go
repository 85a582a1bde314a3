package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-authclient/core"
)

type stubSessionStateStore struct {
	mu          sync.Mutex
	snapshots   map[string]core.StateMap
	loadCalls   int
	saveCalls   int
	deleteCalls int
	loadErr     error
	saveErr     error
}

func newStubSessionStateStore() *stubSessionStateStore {
	return &stubSessionStateStore{snapshots: map[string]core.StateMap{}}
}

func (s *stubSessionStateStore) Save(_ context.Context, sessionID string, state core.StateMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[sessionID] = core.CloneStateMap(state)
	return nil
}

func (s *stubSessionStateStore) Load(_ context.Context, sessionID string) (core.StateMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return core.CloneStateMap(s.snapshots[sessionID]), nil
}

func (s *stubSessionStateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	delete(s.snapshots, sessionID)
	return nil
}

func TestCachedSessionStateStore_Load_MissFetchThenHit(t *testing.T) {
	cacheService := newTestSessionCacheService(t)
	base := newStubSessionStateStore()
	base.snapshots["sess-1"] = core.StateMap{"auth_type": "oauth2", "access_token": "tok"}

	store, err := NewCachedSessionStateStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached session state store: %v", err)
	}

	state, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if state["access_token"] != "tok" {
		t.Fatalf("unexpected snapshot on first load: %v", state)
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected first load to fetch base store once, got %d", base.loadCalls)
	}

	if _, err := store.Load(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected second load to be cache hit, base load calls=%d", base.loadCalls)
	}
}

func TestCachedSessionStateStore_Save_InvalidatesCachedKey(t *testing.T) {
	cacheService := newTestSessionCacheService(t)
	base := newStubSessionStateStore()
	base.snapshots["sess-2"] = core.StateMap{"access_token": "old"}

	store, err := NewCachedSessionStateStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached session state store: %v", err)
	}

	if _, err := store.Load(context.Background(), "sess-2"); err != nil {
		t.Fatalf("prime cache with load: %v", err)
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected one base read after cache prime, got %d", base.loadCalls)
	}

	if err := store.Save(context.Background(), "sess-2", core.StateMap{"access_token": "new"}); err != nil {
		t.Fatalf("save through cached store: %v", err)
	}
	if base.saveCalls != 1 {
		t.Fatalf("expected base save call count=1, got %d", base.saveCalls)
	}

	state, err := store.Load(context.Background(), "sess-2")
	if err != nil {
		t.Fatalf("load after save invalidation: %v", err)
	}
	if base.loadCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.loadCalls)
	}
	if state["access_token"] != "new" {
		t.Fatalf("expected refreshed snapshot, got %v", state)
	}
}

func TestCachedSessionStateStore_Delete_InvalidatesCachedKey(t *testing.T) {
	cacheService := newTestSessionCacheService(t)
	base := newStubSessionStateStore()
	base.snapshots["sess-3"] = core.StateMap{"access_token": "tok"}

	store, err := NewCachedSessionStateStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached session state store: %v", err)
	}

	if _, err := store.Load(context.Background(), "sess-3"); err != nil {
		t.Fatalf("prime cache with load: %v", err)
	}
	if err := store.Delete(context.Background(), "sess-3"); err != nil {
		t.Fatalf("delete through cached store: %v", err)
	}
	if base.deleteCalls != 1 {
		t.Fatalf("expected base delete call count=1, got %d", base.deleteCalls)
	}

	state, err := store.Load(context.Background(), "sess-3")
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if len(state) != 0 {
		t.Fatalf("expected empty snapshot after delete, got %v", state)
	}
	if base.loadCalls != 2 {
		t.Fatalf("expected delete to force second base read, got %d", base.loadCalls)
	}
}

func TestSessionStateCacheKey_Contract(t *testing.T) {
	key, err := SessionStateCacheKey("user 42/web")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}

	const expected = "go-authclient::session_state::v1::user%2042%2Fweb"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := SessionStateCacheKey("  "); err == nil {
		t.Fatalf("expected blank session id to be rejected")
	}
}

func TestCachedSessionStateStore_PropagatesBaseErrors(t *testing.T) {
	cacheService := newTestSessionCacheService(t)
	base := newStubSessionStateStore()
	baseErr := errors.New("backend unavailable")
	base.loadErr = baseErr

	store, err := NewCachedSessionStateStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached session state store: %v", err)
	}

	if _, err := store.Load(context.Background(), "sess-err"); !errors.Is(err, baseErr) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func newTestSessionCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
