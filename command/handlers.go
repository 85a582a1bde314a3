package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-authclient/core"
)

// SessionService is the mutating surface the commands drive. The root
// facade satisfies it.
type SessionService interface {
	AuthorizeURI(ctx context.Context, sessionID string) (core.AuthorizeURIResult, error)
	CompleteCallback(ctx context.Context, req core.CompleteCallbackRequest) (core.CallbackResult, error)
	Reauthorize(ctx context.Context, req core.ReauthorizeRequest) (core.ReauthorizeResult, error)
	SignHeaders(ctx context.Context, sessionID string, headers map[string]string) (map[string]string, error)
	ResetSession(ctx context.Context, sessionID string) error
	DropSession(ctx context.Context, sessionID string) error
}

type AuthorizeCommand struct {
	service SessionService
}

func NewAuthorizeCommand(service SessionService) *AuthorizeCommand {
	return &AuthorizeCommand{service: service}
}

func (c *AuthorizeCommand) Execute(ctx context.Context, msg AuthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorize service is required")
	}
	out, err := c.service.AuthorizeURI(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompleteCallbackCommand struct {
	service SessionService
}

func NewCompleteCallbackCommand(service SessionService) *CompleteCallbackCommand {
	return &CompleteCallbackCommand{service: service}
}

func (c *CompleteCallbackCommand) Execute(ctx context.Context, msg CompleteCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	out, err := c.service.CompleteCallback(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReauthorizeCommand struct {
	service SessionService
}

func NewReauthorizeCommand(service SessionService) *ReauthorizeCommand {
	return &ReauthorizeCommand{service: service}
}

func (c *ReauthorizeCommand) Execute(ctx context.Context, msg ReauthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reauthorize service is required")
	}
	out, err := c.service.Reauthorize(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SignHeadersCommand struct {
	service SessionService
}

func NewSignHeadersCommand(service SessionService) *SignHeadersCommand {
	return &SignHeadersCommand{service: service}
}

func (c *SignHeadersCommand) Execute(ctx context.Context, msg SignHeadersMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sign headers service is required")
	}
	out, err := c.service.SignHeaders(ctx, msg.SessionID, msg.Headers)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResetSessionCommand struct {
	service SessionService
}

func NewResetSessionCommand(service SessionService) *ResetSessionCommand {
	return &ResetSessionCommand{service: service}
}

func (c *ResetSessionCommand) Execute(ctx context.Context, msg ResetSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reset service is required")
	}
	return c.service.ResetSession(ctx, msg.SessionID)
}

type DropSessionCommand struct {
	service SessionService
}

func NewDropSessionCommand(service SessionService) *DropSessionCommand {
	return &DropSessionCommand{service: service}
}

func (c *DropSessionCommand) Execute(ctx context.Context, msg DropSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: drop service is required")
	}
	return c.service.DropSession(ctx, msg.SessionID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
