package session

// State is where a request's session stands in its lifecycle.
type State int

const (
	// StateNoSession means the request was not handled by the manager.
	StateNoSession State = iota
	StateActive
	StateModified
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateModified:
		return "modified"
	case StateDestroyed:
		return "destroyed"
	default:
		return "no_session"
	}
}

// Handle is the per-request view of a session. It is not safe for
// concurrent use; one request owns it for its whole lifetime.
type Handle struct {
	id           string
	session      *Session
	originalHash string
	isNew        bool
	destroyed    bool
}

// ID returns the session id. It never changes within a request.
func (h *Handle) ID() string {
	return h.id
}

// Session returns the mutable session, or nil once Destroy was called.
func (h *Handle) Session() *Session {
	if h.destroyed {
		return nil
	}
	return h.session
}

// IsNew reports whether the session was created for this request.
func (h *Handle) IsNew() bool {
	return h.isNew
}

// Destroy marks the session for deletion at the end of the request.
func (h *Handle) Destroy() {
	h.destroyed = true
}

// IsDestroyed reports whether Destroy was called.
func (h *Handle) IsDestroyed() bool {
	return h.destroyed
}

// State compares the current content against what was loaded.
func (h *Handle) State() State {
	if h == nil {
		return StateNoSession
	}
	if h.destroyed {
		return StateDestroyed
	}
	if hash, err := Digest(h.session, h.id); err != nil || hash != h.originalHash {
		return StateModified
	}
	return StateActive
}
