package authclient

import (
	"context"
	"fmt"
	"strings"

	authcommand "github.com/goliatone/go-authclient/command"
	"github.com/goliatone/go-authclient/core"
	authquery "github.com/goliatone/go-authclient/query"
)

// Commands bundles the command handlers the facade exposes, ready to be
// subscribed onto a dispatcher or invoked directly.
type Commands struct {
	Authorize        *authcommand.AuthorizeCommand
	CompleteCallback *authcommand.CompleteCallbackCommand
	Reauthorize      *authcommand.ReauthorizeCommand
	SignHeaders      *authcommand.SignHeadersCommand
	ResetSession     *authcommand.ResetSessionCommand
	DropSession      *authcommand.DropSessionCommand
}

// Queries bundles the read-side handlers.
type Queries struct {
	SessionStatus      *authquery.SessionStatusQuery
	ExportSessionState *authquery.ExportSessionStateQuery
}

// Facade drives complete session flows over a manager and a single server
// collaborator: open the session, run the strategy operation, persist the
// resulting state. It satisfies the command surface's SessionService and
// the query surface's SessionReader.
type Facade struct {
	manager  *core.Manager
	server   core.ServerClient
	commands Commands
	queries  Queries
}

func NewFacade(manager *core.Manager, server core.ServerClient) (*Facade, error) {
	if manager == nil {
		return nil, fmt.Errorf("authclient: manager is required")
	}
	if server == nil {
		return nil, fmt.Errorf("authclient: server collaborator is required")
	}

	facade := &Facade{manager: manager, server: server}
	facade.commands = Commands{
		Authorize:        authcommand.NewAuthorizeCommand(facade),
		CompleteCallback: authcommand.NewCompleteCallbackCommand(facade),
		Reauthorize:      authcommand.NewReauthorizeCommand(facade),
		SignHeaders:      authcommand.NewSignHeadersCommand(facade),
		ResetSession:     authcommand.NewResetSessionCommand(facade),
		DropSession:      authcommand.NewDropSessionCommand(facade),
	}
	facade.queries = Queries{
		SessionStatus:      authquery.NewSessionStatusQuery(facade),
		ExportSessionState: authquery.NewExportSessionStateQuery(facade),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Manager() *core.Manager {
	if f == nil {
		return nil
	}
	return f.manager
}

// AuthorizeURI opens the session and returns the URL the user must visit.
// The freshly minted CSRF nonce is persisted before the URL is handed back
// so the callback can validate against it after a process restart.
func (f *Facade) AuthorizeURI(ctx context.Context, sessionID string) (core.AuthorizeURIResult, error) {
	session, err := f.openSession(ctx, sessionID)
	if err != nil {
		return core.AuthorizeURIResult{}, err
	}
	uri, err := session.Strategy.AuthorizeURI()
	if err != nil {
		return core.AuthorizeURIResult{}, err
	}
	if err := f.persist(ctx, session); err != nil {
		return core.AuthorizeURIResult{}, err
	}
	return core.AuthorizeURIResult{
		SessionID: session.ID,
		AuthType:  session.Strategy.Type(),
		URI:       uri,
	}, nil
}

// CompleteCallback validates the redirect URL and exchanges its code for
// tokens. State is persisted only after a successful exchange.
func (f *Facade) CompleteCallback(ctx context.Context, req core.CompleteCallbackRequest) (core.CallbackResult, error) {
	session, err := f.openSession(ctx, req.SessionID)
	if err != nil {
		return core.CallbackResult{}, err
	}
	launch, err := session.Strategy.HandleCallback(ctx, req.CallbackURL)
	if err != nil {
		return core.CallbackResult{}, err
	}
	if err := f.persist(ctx, session); err != nil {
		return core.CallbackResult{}, err
	}
	return core.CallbackResult{
		SessionID:     session.ID,
		AuthType:      session.Strategy.Type(),
		LaunchContext: launch,
	}, nil
}

// Reauthorize silently renews the session credential with bounded retries.
// PendingReauth on the result means the interactive flow must be rerun.
func (f *Facade) Reauthorize(ctx context.Context, req core.ReauthorizeRequest) (core.ReauthorizeResult, error) {
	session, err := f.openSession(ctx, req.SessionID)
	if err != nil {
		return core.ReauthorizeResult{}, err
	}
	run, err := f.manager.ReauthorizeWithRetry(ctx, session, core.ReauthorizeRunOptions{
		MaxAttempts: req.MaxAttempts,
	})
	result := core.ReauthorizeResult{
		SessionID:     session.ID,
		AuthType:      session.Strategy.Type(),
		Attempts:      run.Attempts,
		PendingReauth: run.PendingReauth,
		LaunchContext: run.LaunchContext,
	}
	return result, err
}

// SignHeaders returns a copy of headers with the session's authorization
// entry added.
func (f *Facade) SignHeaders(ctx context.Context, sessionID string, headers map[string]string) (map[string]string, error) {
	session, err := f.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Strategy.SignedHeaders(headers)
}

// ResetSession clears acquired credential material while keeping endpoint
// configuration and any refresh token, then persists the trimmed state.
func (f *Facade) ResetSession(ctx context.Context, sessionID string) error {
	session, err := f.openSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Strategy.Reset()
	return f.persist(ctx, session)
}

// DropSession removes the persisted snapshot entirely.
func (f *Facade) DropSession(ctx context.Context, sessionID string) error {
	if f == nil || f.manager == nil {
		return fmt.Errorf("authclient: facade is not configured")
	}
	return f.manager.DropSession(ctx, sessionID)
}

// SessionStatus reports the session's strategy tag and readiness without
// mutating anything.
func (f *Facade) SessionStatus(ctx context.Context, sessionID string) (core.SessionStatus, error) {
	session, err := f.openSession(ctx, sessionID)
	if err != nil {
		return core.SessionStatus{}, err
	}
	return core.SessionStatus{
		SessionID:      session.ID,
		AuthType:       session.Strategy.Type(),
		Ready:          session.Strategy.Ready(),
		CanSignHeaders: session.Strategy.CanSignHeaders(),
	}, nil
}

// ExportSessionState returns the session strategy's persistable fields.
func (f *Facade) ExportSessionState(ctx context.Context, sessionID string) (core.StateMap, error) {
	session, err := f.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Strategy.ExportState(), nil
}

func (f *Facade) openSession(ctx context.Context, sessionID string) (*core.Session, error) {
	if f == nil || f.manager == nil {
		return nil, fmt.Errorf("authclient: facade is not configured")
	}
	return f.manager.OpenSession(ctx, strings.TrimSpace(sessionID), f.server)
}

func (f *Facade) persist(ctx context.Context, session *core.Session) error {
	if !f.manager.HasStateStore() {
		return nil
	}
	return f.manager.SaveSession(ctx, session)
}

var (
	_ authcommand.SessionService = (*Facade)(nil)
	_ authquery.SessionReader    = (*Facade)(nil)
)
