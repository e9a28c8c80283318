package session

import "errors"

var (
	// ErrStoreUnavailable indicates the backend reported itself disconnected
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrInvalidConfig indicates the manager cannot be built from the given options
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrNoCookieManager indicates no cookie manager is configured for the cookie transport
	ErrNoCookieManager = errors.New("session.no_cookie_manager")

	// ErrInvalidSession indicates a stored record could not be decoded
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenNotFound indicates the request carries no session token
	ErrTokenNotFound = errors.New("session.token_not_found")

	// ErrNoHandle indicates Finalize was called without a handle
	ErrNoHandle = errors.New("session.no_handle")

	// ErrFlushUnsupported indicates a handler inside the session middleware
	// tried to flush its buffered response
	ErrFlushUnsupported = errors.New("session.flush_unsupported")
)
