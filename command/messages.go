package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-authclient/core"
)

const (
	TypeAuthorize        = "authclient.command.authorize"
	TypeCompleteCallback = "authclient.command.callback.complete"
	TypeReauthorize      = "authclient.command.reauthorize"
	TypeSignHeaders      = "authclient.command.headers.sign"
	TypeResetSession     = "authclient.command.session.reset"
	TypeDropSession      = "authclient.command.session.drop"
)

type AuthorizeMessage struct {
	SessionID string
}

func (AuthorizeMessage) Type() string { return TypeAuthorize }

func (m AuthorizeMessage) Validate() error {
	return validateSessionID(m.SessionID)
}

type CompleteCallbackMessage struct {
	Request core.CompleteCallbackRequest
}

func (CompleteCallbackMessage) Type() string { return TypeCompleteCallback }

func (m CompleteCallbackMessage) Validate() error {
	if err := validateSessionID(m.Request.SessionID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.CallbackURL) == "" {
		return fmt.Errorf("command: callback url is required")
	}
	return nil
}

type ReauthorizeMessage struct {
	Request core.ReauthorizeRequest
}

func (ReauthorizeMessage) Type() string { return TypeReauthorize }

func (m ReauthorizeMessage) Validate() error {
	if err := validateSessionID(m.Request.SessionID); err != nil {
		return err
	}
	if m.Request.MaxAttempts < 0 {
		return fmt.Errorf("command: max attempts must not be negative")
	}
	return nil
}

type SignHeadersMessage struct {
	SessionID string
	Headers   map[string]string
}

func (SignHeadersMessage) Type() string { return TypeSignHeaders }

func (m SignHeadersMessage) Validate() error {
	return validateSessionID(m.SessionID)
}

type ResetSessionMessage struct {
	SessionID string
}

func (ResetSessionMessage) Type() string { return TypeResetSession }

func (m ResetSessionMessage) Validate() error {
	return validateSessionID(m.SessionID)
}

type DropSessionMessage struct {
	SessionID string
}

func (DropSessionMessage) Type() string { return TypeDropSession }

func (m DropSessionMessage) Validate() error {
	return validateSessionID(m.SessionID)
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("command: session id is required")
	}
	return nil
}
