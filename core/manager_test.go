package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memoryStateStore struct {
	mu        sync.Mutex
	snapshots map[string]StateMap
	saveCalls int
	loadErr   error
	saveErr   error
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{snapshots: map[string]StateMap{}}
}

func (s *memoryStateStore) Save(_ context.Context, sessionID string, state StateMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[sessionID] = CloneStateMap(state)
	return nil
}

func (s *memoryStateStore) Load(_ context.Context, sessionID string) (StateMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return CloneStateMap(s.snapshots[sessionID]), nil
}

func (s *memoryStateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

type managerTestServer struct{}

func (managerTestServer) PostAsForm(context.Context, string, map[string]string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (managerTestServer) ShouldSaveState() {}

func newManagerForTest(t *testing.T, cfg Config, options ...Option) *Manager {
	t.Helper()
	registry := NewStrategyRegistry()
	if err := registry.Register("none", newRegistryTestConstructor("none")); err != nil {
		t.Fatalf("register none: %v", err)
	}
	if err := registry.Register("mock", newRegistryTestConstructor("mock")); err != nil {
		t.Fatalf("register mock: %v", err)
	}
	manager, err := NewManager(cfg, append([]Option{WithRegistry(registry)}, options...)...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestNewManager_AppliesRuntimeConfig(t *testing.T) {
	manager := newManagerForTest(t, Config{AuthType: "mock"})
	if manager.Config().AuthType != "mock" {
		t.Fatalf("expected runtime auth_type, got %q", manager.Config().AuthType)
	}
}

func TestNewManager_DefaultsToNoneStrategy(t *testing.T) {
	manager := newManagerForTest(t, Config{})
	if manager.Config().AuthType != DefaultStrategyTag {
		t.Fatalf("expected default auth_type, got %q", manager.Config().AuthType)
	}
}

func TestNewManager_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewManager(Config{AuthType: "oauth2"}); err == nil {
		t.Fatalf("expected oauth2 without app_id to be rejected")
	}
}

func TestManagerOpenSession_SeedsFromConfig(t *testing.T) {
	manager := newManagerForTest(t, Config{AuthType: "mock", AppID: "my-app", Scope: "read"})

	session, err := manager.OpenSession(context.Background(), "sess-1", managerTestServer{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	state := session.Strategy.ExportState()
	if state["app_id"] != "my-app" || state["scope"] != "read" {
		t.Fatalf("expected config seed in strategy state, got %v", state)
	}
}

func TestManagerOpenSession_HydratesFromStateStore(t *testing.T) {
	store := newMemoryStateStore()
	store.snapshots["sess-1"] = StateMap{"app_id": "restored-app", "access_token": "tok"}
	manager := newManagerForTest(t, Config{AuthType: "mock"}, WithStateStore(store))

	session, err := manager.OpenSession(context.Background(), "sess-1", managerTestServer{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	state := session.Strategy.ExportState()
	if state["access_token"] != "tok" {
		t.Fatalf("expected stored snapshot to hydrate strategy, got %v", state)
	}
}

func TestManagerOpenSession_Validation(t *testing.T) {
	manager := newManagerForTest(t, Config{AuthType: "mock"})
	ctx := context.Background()

	if _, err := manager.OpenSession(ctx, "  ", managerTestServer{}); err == nil {
		t.Fatalf("expected blank session id to be rejected")
	}
	if _, err := manager.OpenSession(ctx, "sess-1", nil); !IsNoServer(err) {
		t.Fatalf("expected no-server error, got %v", err)
	}
}

func TestManagerOpenSession_UnknownStrategy(t *testing.T) {
	registry := NewStrategyRegistry()
	manager, err := NewManager(Config{AuthType: "mystery"}, WithRegistry(registry))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	_, err = manager.OpenSession(context.Background(), "sess-1", managerTestServer{})
	if !IsUnknownStrategy(err) {
		t.Fatalf("expected unknown strategy error, got %v", err)
	}
}

func TestManagerSaveSession_PersistsExportedState(t *testing.T) {
	store := newMemoryStateStore()
	manager := newManagerForTest(t, Config{AuthType: "mock", AppID: "my-app"}, WithStateStore(store))
	ctx := context.Background()

	session, err := manager.OpenSession(ctx, "sess-1", managerTestServer{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := manager.SaveSession(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if store.snapshots["sess-1"]["app_id"] != "my-app" {
		t.Fatalf("expected exported state in store, got %v", store.snapshots)
	}
	if store.snapshots["sess-1"]["auth_type"] != "mock" {
		t.Fatalf("expected strategy type in persisted snapshot, got %v", store.snapshots["sess-1"])
	}
}

func TestManagerSaveSession_RequiresStateStore(t *testing.T) {
	manager := newManagerForTest(t, Config{AuthType: "mock"})
	session, err := manager.OpenSession(context.Background(), "sess-1", managerTestServer{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := manager.SaveSession(context.Background(), session); err == nil {
		t.Fatalf("expected save without state store to fail")
	}
	if manager.HasStateStore() {
		t.Fatalf("expected HasStateStore to be false")
	}
}

func TestManagerDropSession_RemovesSnapshot(t *testing.T) {
	store := newMemoryStateStore()
	store.snapshots["sess-1"] = StateMap{"access_token": "tok"}
	manager := newManagerForTest(t, Config{AuthType: "mock"}, WithStateStore(store))

	if err := manager.DropSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("drop session: %v", err)
	}
	if _, present := store.snapshots["sess-1"]; present {
		t.Fatalf("expected snapshot to be removed")
	}
}

type capturingMetricsRecorder struct {
	counters   []string
	histograms []string
	lastTags   map[string]string
}

func (r *capturingMetricsRecorder) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	r.counters = append(r.counters, name)
	r.lastTags = tags
}

func (r *capturingMetricsRecorder) ObserveHistogram(_ context.Context, name string, _ float64, tags map[string]string) {
	r.histograms = append(r.histograms, name)
}

func TestManagerOpenSession_EmitsOperationMetrics(t *testing.T) {
	recorder := &capturingMetricsRecorder{}
	manager := newManagerForTest(t, Config{AuthType: "mock"}, WithMetricsRecorder(recorder))

	if _, err := manager.OpenSession(context.Background(), "sess-1", managerTestServer{}); err != nil {
		t.Fatalf("open session: %v", err)
	}

	if len(recorder.counters) != 1 || recorder.counters[0] != "authclient.session_open.total" {
		t.Fatalf("unexpected counter series: %v", recorder.counters)
	}
	if len(recorder.histograms) != 1 || recorder.histograms[0] != "authclient.session_open.duration_ms" {
		t.Fatalf("unexpected histogram series: %v", recorder.histograms)
	}
	if recorder.lastTags["operation"] != "session_open" || recorder.lastTags["status"] != "success" {
		t.Fatalf("unexpected tags: %v", recorder.lastTags)
	}
	if recorder.lastTags["session_id"] != "sess-1" {
		t.Fatalf("expected session id tag, got %v", recorder.lastTags)
	}
}

func TestManagerOpenSession_PropagatesStoreErrors(t *testing.T) {
	store := newMemoryStateStore()
	store.loadErr = errors.New("backend down")
	manager := newManagerForTest(t, Config{AuthType: "mock"}, WithStateStore(store))

	if _, err := manager.OpenSession(context.Background(), "sess-1", managerTestServer{}); err == nil {
		t.Fatalf("expected load error to propagate")
	}
}
