package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// StateMap is the serialized form of a strategy: a flat mapping of field
// names to string values. Absent and empty keys are equivalent on import;
// an existing in-memory value is never overwritten by an absent key.
type StateMap map[string]string

// LaunchContext carries provider-specific parameters returned alongside a
// token exchange (for example a patient or encounter identifier). It never
// contains credential material; token fields are consumed by the strategy
// before the context is handed back.
type LaunchContext map[string]string

// AuthStrategy is the capability contract every authorization mechanism
// implements. A strategy is constructed once per server session, optionally
// hydrated from a persisted StateMap, and mutated only through these
// operations.
type AuthStrategy interface {
	// Type returns the registry tag this strategy was registered under.
	Type() string

	// Ready reports whether the strategy can authorize resource requests.
	Ready() bool

	// Reset clears acquired credential material, returning the strategy to
	// a pre-authorized condition. Endpoint and scope configuration survive.
	Reset()

	// CanSignHeaders reports whether SignedHeaders would succeed.
	CanSignHeaders() bool

	// AuthorizeURI returns the URL the user must be redirected to, or an
	// empty string when the strategy has no interactive step.
	AuthorizeURI() (string, error)

	// HandleCallback validates the redirect URL the user returned with and
	// exchanges its authorization code for tokens via the server
	// collaborator. It returns the launch context of the token response.
	HandleCallback(ctx context.Context, callbackURL string) (LaunchContext, error)

	// Reauthorize silently renews the current credential. A nil, nil return
	// means the strategy cannot renew without user interaction.
	Reauthorize(ctx context.Context) (LaunchContext, error)

	// SignedHeaders returns a copy of headers with the strategy's
	// authorization entry added. The caller's map is never mutated.
	SignedHeaders(headers map[string]string) (map[string]string, error)

	// ExportState returns the strategy's persistable fields. Optional
	// secrets are included only when present.
	ExportState() StateMap

	// ImportState hydrates the strategy from a previously exported map.
	ImportState(state StateMap)
}

// ServerClient is the collaborator a strategy exchanges tokens through. The
// strategy performs no network I/O of its own; PostAsForm is its single
// suspension point.
type ServerClient interface {
	// PostAsForm performs a form-encoded POST at uri and returns the parsed
	// response fields.
	PostAsForm(ctx context.Context, uri string, params map[string]string) (map[string]string, error)

	// ShouldSaveState notifies the host that strategy state changed and
	// ought to be persisted before the user is redirected away. Invoked
	// exactly once per newly minted CSRF nonce.
	ShouldSaveState()
}

// StrategyConstructor builds a strategy bound to a server collaborator,
// optionally hydrated from persisted state.
type StrategyConstructor func(server ServerClient, state StateMap) AuthStrategy

// StateStore persists exported strategy state keyed by session.
type StateStore interface {
	Save(ctx context.Context, sessionID string, state StateMap) error
	Load(ctx context.Context, sessionID string) (StateMap, error)
	Delete(ctx context.Context, sessionID string) error
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// RefreshJobMessage describes one queued silent-renewal attempt for a
// session. It travels through a host-provided queue; the adapters packages
// map it onto concrete queue implementations.
type RefreshJobMessage struct {
	SessionID      string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *RefreshJobMessage) error
}

type JobDelivery interface {
	Message() *RefreshJobMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *RefreshJobMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// CloneStateMap returns an independent copy of state. Nil input yields an
// empty, non-nil map.
func CloneStateMap(state StateMap) StateMap {
	out := make(StateMap, len(state))
	for key, value := range state {
		out[key] = value
	}
	return out
}
