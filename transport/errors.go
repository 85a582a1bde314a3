package transport

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-authclient/core"
)

func newRequestFailedError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "transport: token request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.AuthErrorTokenExchangeFailed)
}

func newReadResponseError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "transport: read token response").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.AuthErrorTokenExchangeFailed)
}

func newOversizedResponseError(limit int64) error {
	return goerrors.New(
		fmt.Sprintf("transport: token response exceeds %d bytes", limit),
		goerrors.CategoryExternal,
	).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.AuthErrorTokenExchangeFailed)
}

func newDecodeResponseError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "transport: decode token response").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.AuthErrorTokenExchangeFailed)
}

func newEndpointStatusError(status int, detail string) error {
	return goerrors.New(
		fmt.Sprintf("transport: token endpoint error (%d): %s", status, detail),
		goerrors.CategoryExternal,
	).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.AuthErrorTokenExchangeFailed)
}
