package transport

import "github.com/goliatone/go-authclient/core"

var _ core.ServerClient = (*FormClient)(nil)
