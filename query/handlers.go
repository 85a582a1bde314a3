package query

import (
	"context"

	"github.com/goliatone/go-authclient/core"
)

// SessionReader is the read-side surface the queries consume. The root
// facade satisfies it.
type SessionReader interface {
	SessionStatus(ctx context.Context, sessionID string) (core.SessionStatus, error)
	ExportSessionState(ctx context.Context, sessionID string) (core.StateMap, error)
}

type SessionStatusQuery struct {
	reader SessionReader
}

func NewSessionStatusQuery(reader SessionReader) *SessionStatusQuery {
	return &SessionStatusQuery{reader: reader}
}

func (q *SessionStatusQuery) Query(ctx context.Context, msg SessionStatusMessage) (core.SessionStatus, error) {
	if q == nil || q.reader == nil {
		return core.SessionStatus{}, queryDependencyError("query: session reader is required")
	}
	return q.reader.SessionStatus(ctx, msg.SessionID)
}

type ExportSessionStateQuery struct {
	reader SessionReader
}

func NewExportSessionStateQuery(reader SessionReader) *ExportSessionStateQuery {
	return &ExportSessionStateQuery{reader: reader}
}

func (q *ExportSessionStateQuery) Query(ctx context.Context, msg ExportSessionStateMessage) (core.StateMap, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: session reader is required")
	}
	return q.reader.ExportSessionState(ctx, msg.SessionID)
}
