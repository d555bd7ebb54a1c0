package auth

import (
	"errors"
	"strings"

	"golang.org/x/oauth2"
)

var (
	// ErrInvalidState rejects a callback whose state is unknown, expired or
	// bound to a different session. This is the CSRF defense and fires before
	// any token exchange.
	ErrInvalidState = errors.New("session expired or invalid state")

	// ErrMissingCode rejects a callback that carries neither a code nor an
	// error description.
	ErrMissingCode = errors.New("authorization code missing from callback")
)

// UpstreamError carries the error description Dropbox sent to the callback,
// for example when the user denied access.
type UpstreamError struct {
	Description string
}

func (e *UpstreamError) Error() string {
	return "authorization failed: " + e.Description
}

// ExchangeError reports a failed code-for-token exchange, carrying the
// upstream response body when there is one.
type ExchangeError struct {
	Message string
	Err     error
}

func newExchangeError(err error) *ExchangeError {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return &ExchangeError{Message: strings.TrimSpace(string(rErr.Body)), Err: err}
	}
	return &ExchangeError{Err: err}
}

func (e *ExchangeError) Error() string {
	if e.Message != "" {
		return "token exchange failed: " + e.Message
	}
	return "token exchange failed: " + e.Err.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// RevocationError reports a failed token revocation. It is logged and
// swallowed during logout.
type RevocationError struct {
	Err error
}

func (e *RevocationError) Error() string {
	return "token revocation failed: " + e.Err.Error()
}

func (e *RevocationError) Unwrap() error {
	return e.Err
}
