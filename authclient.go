package authclient

import (
	"github.com/goliatone/go-authclient/auth"
	"github.com/goliatone/go-authclient/core"
)

type Config = core.Config

type Option = core.Option

type Manager = core.Manager

type Session = core.Session

type AuthStrategy = core.AuthStrategy
type ServerClient = core.ServerClient
type StateMap = core.StateMap
type LaunchContext = core.LaunchContext
type StateStore = core.StateStore
type RefreshBackoffScheduler = core.RefreshBackoffScheduler
type ReauthorizeRunOptions = core.ReauthorizeRunOptions
type ReauthorizeRunResult = core.ReauthorizeRunResult

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithRegistry         = core.WithRegistry
	WithStateStore       = core.WithStateStore
	WithBackoffScheduler = core.WithBackoffScheduler
	RegisterStrategy     = core.Register
	CreateStrategy       = core.Create
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// RegisterBuiltinStrategies binds the none and oauth2 strategies onto the
// registry. Safe to call more than once.
func RegisterBuiltinStrategies(registry *core.StrategyRegistry) error {
	if registry == nil {
		registry = core.DefaultRegistry()
	}
	if err := registry.Register(auth.TypeNone, auth.NewNoneStrategy); err != nil {
		return err
	}
	return registry.Register(auth.TypeOAuth2, auth.NewOAuth2Strategy)
}

// New builds a session manager with the builtin strategies registered.
func New(cfg Config, opts ...Option) (*Manager, error) {
	manager, err := core.NewManager(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := RegisterBuiltinStrategies(manager.Registry()); err != nil {
		return nil, err
	}
	return manager, nil
}

// Setup builds a manager plus a facade bound to server in one call.
func Setup(cfg Config, server ServerClient, opts ...Option) (*Manager, *Facade, error) {
	manager, err := New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	facade, err := NewFacade(manager, server)
	if err != nil {
		return nil, nil, err
	}
	return manager, facade, nil
}
