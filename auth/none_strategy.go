package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-authclient/core"
)

// TypeNone tags the baseline strategy for servers that require no
// authorization step.
const TypeNone = "none"

// NoneStrategy is the no-op baseline: always ready, never signs, no
// interactive flow. Concrete strategies override each capability they
// actually support; everything here is the default contract behavior.
type NoneStrategy struct {
	server core.ServerClient
	appID  string
}

func NewNoneStrategy(server core.ServerClient, state core.StateMap) core.AuthStrategy {
	s := &NoneStrategy{server: server}
	if len(state) > 0 {
		s.ImportState(state)
	}
	return s
}

func (*NoneStrategy) Type() string {
	return TypeNone
}

// Ready is always true: a strategy with no credential requirement can
// authorize requests at any time.
func (*NoneStrategy) Ready() bool {
	return true
}

func (*NoneStrategy) Reset() {}

func (*NoneStrategy) CanSignHeaders() bool {
	return false
}

func (*NoneStrategy) AuthorizeURI() (string, error) {
	return "", nil
}

func (s *NoneStrategy) HandleCallback(context.Context, string) (core.LaunchContext, error) {
	return nil, core.NewUnsupportedOperationError("auth: none strategy cannot handle callback URLs")
}

func (*NoneStrategy) Reauthorize(context.Context) (core.LaunchContext, error) {
	return nil, nil
}

func (s *NoneStrategy) SignedHeaders(map[string]string) (map[string]string, error) {
	return nil, core.NewNotReadyError("auth: none strategy cannot sign headers")
}

func (s *NoneStrategy) ExportState() core.StateMap {
	state := core.StateMap{}
	if s.appID != "" {
		state["app_id"] = s.appID
	}
	return state
}

func (s *NoneStrategy) ImportState(state core.StateMap) {
	if value := strings.TrimSpace(state["app_id"]); value != "" {
		s.appID = value
	}
}

var _ core.AuthStrategy = (*NoneStrategy)(nil)
