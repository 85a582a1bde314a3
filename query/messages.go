package query

import (
	"fmt"
	"strings"
)

const (
	TypeSessionStatus      = "authclient.query.session.status"
	TypeExportSessionState = "authclient.query.session.export"
)

type SessionStatusMessage struct {
	SessionID string
}

func (SessionStatusMessage) Type() string { return TypeSessionStatus }

func (m SessionStatusMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("query: session id is required")
	}
	return nil
}

type ExportSessionStateMessage struct {
	SessionID string
}

func (ExportSessionStateMessage) Type() string { return TypeExportSessionState }

func (m ExportSessionStateMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("query: session id is required")
	}
	return nil
}
