package session

import (
	"net/http"
	"time"
)

// Transport defines how the session token travels between client and server
type Transport interface {
	// GetToken extracts the session token from the request.
	// It returns ErrTokenNotFound when the request carries none.
	GetToken(r *http.Request) (string, error)

	// SetToken sends the session token in the response
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error

	// ClearToken tells the client to forget the session token
	ClearToken(w http.ResponseWriter) error
}
