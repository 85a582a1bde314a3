package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Manager owns a strategy registry and an optional state store, and builds
// per-server sessions from them. One strategy instance backs one session;
// callers needing concurrent flows open one session per user.
type Manager struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorMapper      ErrorMapper
	registry         *StrategyRegistry
	stateStore       StateStore
	backoffScheduler RefreshBackoffScheduler
}

// Session binds a session identifier to the strategy instance serving it
// and the server collaborator the strategy exchanges tokens through.
type Session struct {
	ID       string
	Strategy AuthStrategy
	Server   ServerClient
}

func NewManager(cfg Config, options ...Option) (*Manager, error) {
	builder := defaultManagerBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("authclient", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("authclient"); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = DefaultRegistry()
	}
	if builder.backoffScheduler == nil {
		builder.backoffScheduler = ExponentialBackoffScheduler{
			Initial: defaultReauthInitialBackoff,
			Max:     defaultReauthMaxBackoff,
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Manager{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		metricsRecorder:  builder.metricsRecorder,
		errorMapper:      builder.errorMapper,
		registry:         builder.registry,
		stateStore:       builder.stateStore,
		backoffScheduler: builder.backoffScheduler,
	}, nil
}

func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

func (m *Manager) Registry() *StrategyRegistry {
	if m == nil {
		return nil
	}
	return m.registry
}

// HasStateStore reports whether sessions persist across process restarts.
func (m *Manager) HasStateStore() bool {
	return m != nil && m.stateStore != nil
}

// OpenSession builds the configured strategy for server, seeds it from the
// manager config, and hydrates any snapshot the state store holds for
// sessionID. A missing snapshot is not an error.
func (m *Manager) OpenSession(ctx context.Context, sessionID string, server ServerClient) (*Session, error) {
	startedAt := time.Now()
	session, err := m.openSession(ctx, sessionID, server)
	m.observeOperation(ctx, startedAt, "session_open", err, map[string]any{
		"session_id": sessionID,
		"auth_type":  m.Config().AuthType,
	})
	return session, err
}

func (m *Manager) openSession(ctx context.Context, sessionID string, server ServerClient) (*Session, error) {
	if m == nil {
		return nil, newDependencyError("core: manager is nil")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, m.mapError(NewInvalidInputError("core: session id is required"))
	}
	if server == nil {
		return nil, m.mapError(NewNoServerError("core: server collaborator is required"))
	}

	strategy, err := m.registry.Create(m.config.AuthType, server, m.config.StateMap())
	if err != nil {
		return nil, m.mapError(err)
	}

	if m.stateStore != nil {
		snapshot, loadErr := m.stateStore.Load(ctx, sessionID)
		if loadErr != nil {
			return nil, m.mapError(loadErr)
		}
		if len(snapshot) > 0 {
			strategy.ImportState(snapshot)
		}
	}

	return &Session{ID: sessionID, Strategy: strategy, Server: server}, nil
}

// sessionSnapshot builds the state to persist: the strategy's exported
// fields plus the auth_type tag, so stored rows report the strategy that
// produced them. ExportState never emits the tag itself.
func sessionSnapshot(session *Session) StateMap {
	snapshot := session.Strategy.ExportState()
	if snapshot == nil {
		snapshot = StateMap{}
	}
	snapshot["auth_type"] = session.Strategy.Type()
	return snapshot
}

// SaveSession exports the session strategy's state and persists it.
func (m *Manager) SaveSession(ctx context.Context, session *Session) error {
	startedAt := time.Now()
	err := m.saveSession(ctx, session)
	fields := map[string]any{}
	if session != nil {
		fields["session_id"] = session.ID
	}
	m.observeOperation(ctx, startedAt, "session_save", err, fields)
	return err
}

func (m *Manager) saveSession(ctx context.Context, session *Session) error {
	if m == nil {
		return newDependencyError("core: manager is nil")
	}
	if session == nil || session.Strategy == nil {
		return m.mapError(NewInvalidInputError("core: session with a strategy is required"))
	}
	if m.stateStore == nil {
		return m.mapError(newDependencyError("core: state store is not configured"))
	}
	if err := m.stateStore.Save(ctx, session.ID, sessionSnapshot(session)); err != nil {
		return m.mapError(err)
	}
	return nil
}

// DropSession removes any persisted snapshot for the session.
func (m *Manager) DropSession(ctx context.Context, sessionID string) error {
	if m == nil {
		return newDependencyError("core: manager is nil")
	}
	if m.stateStore == nil {
		return m.mapError(newDependencyError("core: state store is not configured"))
	}
	if err := m.stateStore.Delete(ctx, strings.TrimSpace(sessionID)); err != nil {
		return m.mapError(err)
	}
	return nil
}

func (m *Manager) mapError(err error) error {
	if err == nil {
		return nil
	}
	if m == nil || m.errorMapper == nil {
		return err
	}
	if mapped := m.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (m *Manager) String() string {
	if m == nil {
		return "authclient.Manager(nil)"
	}
	return fmt.Sprintf("authclient.Manager(auth_type=%s)", m.config.AuthType)
}
