package auth

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-authclient/core"
)

// TypeOAuth2 tags the authorization-code-with-refresh strategy.
const TypeOAuth2 = "oauth2"

// authStateLength is the nonce size bound to one authorize request. Eight
// characters of a v4 UUID are enough entropy for a single-use CSRF check.
const authStateLength = 8

// OAuth2Strategy implements the OAuth2 authorization-code grant with
// refresh-token renewal. One instance serves one authorization flow at a
// time; the internal mutex serializes mutations but callers still own the
// one-nonce-in-flight discipline.
type OAuth2Strategy struct {
	mu     sync.Mutex
	server core.ServerClient

	appID             string
	scope             string
	registrationURI   string
	authorizeEndpoint string
	redirectURI       string
	tokenURI          string

	authState    string
	accessToken  string
	refreshToken string
}

func NewOAuth2Strategy(server core.ServerClient, state core.StateMap) core.AuthStrategy {
	s := &OAuth2Strategy{server: server}
	if len(state) > 0 {
		s.ImportState(state)
	}
	return s
}

func (*OAuth2Strategy) Type() string {
	return TypeOAuth2
}

func (s *OAuth2Strategy) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// Reset clears the access token and the pending CSRF nonce. The refresh
// token and endpoint configuration survive, so a reset strategy can still
// reauthorize silently. This mirrors the historical behavior of the flow;
// hosts that want a full wipe should discard the instance instead.
func (s *OAuth2Strategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.authState = ""
}

func (s *OAuth2Strategy) CanSignHeaders() bool {
	return s.Ready()
}

// SignedHeaders returns a copy of headers with the bearer Authorization
// entry added. The input map is never mutated; callers must use the return
// value. A nil input yields a map with just the Authorization entry.
func (s *OAuth2Strategy) SignedHeaders(headers map[string]string) (map[string]string, error) {
	s.mu.Lock()
	token := s.accessToken
	s.mu.Unlock()

	if token == "" {
		return nil, core.NewNotReadyError("auth: cannot sign headers without an access token")
	}

	signed := make(map[string]string, len(headers)+1)
	for key, value := range headers {
		signed[key] = value
	}
	signed["Authorization"] = "Bearer " + token
	return signed, nil
}

// AuthorizeURI computes the URL to redirect the user to. The first read
// after construction or reset mints a fresh CSRF nonce and notifies the
// server collaborator so the host can persist state before redirecting;
// subsequent reads while the nonce is pending return the same state value.
func (s *OAuth2Strategy) AuthorizeURI() (string, error) {
	uri, minted, err := s.buildAuthorizeURI()
	if err != nil {
		return "", err
	}
	// The notification fires outside the mutex: hooks persist state through
	// ExportState, which needs the same lock.
	if minted && s.server != nil {
		s.server.ShouldSaveState()
	}
	return uri, nil
}

func (s *OAuth2Strategy) buildAuthorizeURI() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authorizeEndpoint == "" {
		return "", false, core.NewInvalidInputError("auth: authorize endpoint is not configured")
	}

	parsed, err := url.Parse(s.authorizeEndpoint)
	if err != nil {
		return "", false, core.NewInvalidInputError("auth: authorize endpoint is not a valid URL: " + err.Error())
	}

	minted := false
	if s.authState == "" {
		s.authState = newAuthState()
		minted = true
	}

	// Endpoint-configured query parameters survive; computed ones win on
	// key collision.
	params, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		params = url.Values{}
	}
	params.Set("client_id", s.appID)
	params.Set("response_type", "code")
	if s.scope != "" {
		params.Set("scope", s.scope)
	}
	params.Set("state", s.authState)
	params.Set("redirect_uri", s.redirectURI)

	parsed.RawQuery = params.Encode()
	return parsed.String(), minted, nil
}

// HandleCallback verifies the redirect URL the user returned with and, if
// everything checks out, exchanges its code for tokens. Validation order:
// URL shape, provider error indication, CSRF state, code presence.
func (s *OAuth2Strategy) HandleCallback(ctx context.Context, callbackURL string) (core.LaunchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(callbackURL) == "" {
		return nil, core.NewInvalidCallbackError("auth: no callback URL received")
	}
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, core.NewInvalidCallbackError("auth: invalid callback URL: " + err.Error())
	}
	args, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return nil, core.NewInvalidCallbackError("auth: invalid callback query string: " + err.Error())
	}

	if message := extractOAuthError(args); message != "" {
		return nil, core.NewAuthorizationError(message)
	}

	state := args.Get("state")
	if state == "" || state != s.authState {
		return nil, core.NewStateMismatchError(fmt.Sprintf(
			"auth: invalid state, will not use this code: have %q, want %q", state, s.authState,
		))
	}

	code := args.Get("code")
	if code == "" {
		return nil, core.NewMissingCodeError(
			"auth: did not receive a code, only have: " + strings.Join(queryKeys(args), ", "),
		)
	}

	return s.requestAccessToken(ctx, s.codeExchangeParams(code))
}

// Reauthorize renews the access token with the held refresh token. Without
// one it returns nil, nil: a soft failure that tells the caller the
// interactive flow is required. The collaborator is not contacted in that
// case.
func (s *OAuth2Strategy) Reauthorize(ctx context.Context) (core.LaunchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return nil, nil
	}
	return s.requestAccessToken(ctx, s.reauthorizeParams())
}

func (s *OAuth2Strategy) codeExchangeParams(code string) map[string]string {
	return map[string]string{
		"client_id":    s.appID,
		"code":         code,
		"grant_type":   "authorization_code",
		"redirect_uri": s.redirectURI,
		"state":        s.authState,
		// scope is deliberately omitted: some servers reject launch-context
		// scopes when echoed back on the exchange.
	}
}

func (s *OAuth2Strategy) reauthorizeParams() map[string]string {
	return map[string]string{
		"client_id":     s.appID,
		"grant_type":    "refresh_token",
		"refresh_token": s.refreshToken,
	}
}

// requestAccessToken posts params to the token endpoint through the server
// collaborator and consumes the credential fields of the response. Held
// tokens are replaced only after a successful, well-formed response; any
// failure leaves prior state untouched. Caller holds s.mu.
func (s *OAuth2Strategy) requestAccessToken(ctx context.Context, params map[string]string) (core.LaunchContext, error) {
	if s.server == nil {
		return nil, core.NewNoServerError("auth: a server collaborator is required to request an access token")
	}

	response, err := s.server.PostAsForm(ctx, s.tokenURI, params)
	if err != nil {
		return nil, core.NewTokenExchangeError(err, "auth: token request failed")
	}

	accessToken := response["access_token"]
	if accessToken == "" {
		return nil, core.NewNoAccessTokenError("auth: no access token received")
	}

	launch := make(core.LaunchContext, len(response))
	for key, value := range response {
		launch[key] = value
	}
	s.accessToken = accessToken
	delete(launch, "access_token")
	delete(launch, "expires_in")

	if refreshToken := launch["refresh_token"]; refreshToken != "" {
		s.refreshToken = refreshToken
		delete(launch, "refresh_token")
	}

	return launch, nil
}

func (s *OAuth2Strategy) ExportState() core.StateMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := core.StateMap{}
	set := func(key, value string) {
		if value != "" {
			state[key] = value
		}
	}
	set("app_id", s.appID)
	set("scope", s.scope)
	set("registration_uri", s.registrationURI)
	set("authorize_uri", s.authorizeEndpoint)
	set("redirect_uri", s.redirectURI)
	set("token_uri", s.tokenURI)
	set("auth_state", s.authState)
	set("access_token", s.accessToken)
	set("refresh_token", s.refreshToken)
	return state
}

// ImportState hydrates fields from a snapshot. Absent or empty keys keep
// the existing in-memory value, so restoring a partial snapshot never
// destroys live data.
func (s *OAuth2Strategy) ImportState(state core.StateMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assign := func(key string, target *string) {
		if value := strings.TrimSpace(state[key]); value != "" {
			*target = value
		}
	}
	assign("app_id", &s.appID)
	assign("scope", &s.scope)
	assign("registration_uri", &s.registrationURI)
	assign("authorize_uri", &s.authorizeEndpoint)
	assign("redirect_uri", &s.redirectURI)
	assign("token_uri", &s.tokenURI)
	assign("auth_state", &s.authState)
	assign("access_token", &s.accessToken)
	assign("refresh_token", &s.refreshToken)
}

func newAuthState() string {
	return uuid.NewString()[:authStateLength]
}

func queryKeys(args url.Values) []string {
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var _ core.AuthStrategy = (*OAuth2Strategy)(nil)
