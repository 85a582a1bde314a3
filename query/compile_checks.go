package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-authclient/core"
)

var (
	_ gocmd.Querier[SessionStatusMessage, core.SessionStatus] = (*SessionStatusQuery)(nil)
	_ gocmd.Querier[ExportSessionStateMessage, core.StateMap] = (*ExportSessionStateQuery)(nil)
)
