package auth

import (
	"net/url"
	"strings"
)

// Canned messages for the RFC 6749 §4.1.2.1 error codes, used when the
// provider omits error_description.
var oauthErrorMessages = map[string]string{
	"invalid_request":           "The request is missing a required parameter, includes an invalid parameter value, includes a parameter more than once, or is otherwise malformed.",
	"unauthorized_client":       "The client is not authorized to request an access token using this method.",
	"access_denied":             "The resource owner or authorization server denied the request.",
	"unsupported_response_type": "The authorization server does not support obtaining an access token using this method.",
	"invalid_scope":             "The requested scope is invalid, unknown, or malformed.",
	"server_error":              "The authorization server encountered an unexpected condition that prevented it from fulfilling the request.",
	"temporarily_unavailable":   "The authorization server is currently unable to handle the request due to a temporary overloading or maintenance of the server.",
}

// extractOAuthError checks callback arguments for an OAuth2 error
// indication and returns a human-readable message, or empty when the
// callback carries no error. error_description is preferred verbatim, with
// literal '+' characters restored to spaces; otherwise the error code is
// looked up in the canned table.
func extractOAuthError(args url.Values) string {
	if description := args.Get("error_description"); description != "" {
		return strings.ReplaceAll(description, "+", " ")
	}

	code := args.Get("error")
	if code == "" {
		return ""
	}
	if message, ok := oauthErrorMessages[code]; ok {
		return message
	}
	return "Authorization error: " + code + "."
}
