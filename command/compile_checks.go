package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AuthorizeMessage]        = (*AuthorizeCommand)(nil)
	_ gocmd.Commander[CompleteCallbackMessage] = (*CompleteCallbackCommand)(nil)
	_ gocmd.Commander[ReauthorizeMessage]      = (*ReauthorizeCommand)(nil)
	_ gocmd.Commander[SignHeadersMessage]      = (*SignHeadersCommand)(nil)
	_ gocmd.Commander[ResetSessionMessage]     = (*ResetSessionCommand)(nil)
	_ gocmd.Commander[DropSessionMessage]      = (*DropSessionCommand)(nil)
)
