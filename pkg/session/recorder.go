package session

// LoadResult describes how Load obtained the request's session.
type LoadResult string

const (
	// LoadCreated means no cookie was presented and a new session was built.
	LoadCreated LoadResult = "created"
	// LoadRestored means the stored session matched the cookie.
	LoadRestored LoadResult = "restored"
	// LoadRejected means a cookie was presented but its session was missing,
	// undecodable or failed the integrity check; a new one was built.
	LoadRejected LoadResult = "rejected"
)

// Action is the decision Finalize took.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionPersisted Action = "persisted"
	ActionDestroyed Action = "destroyed"
	// ActionDiscarded is a destroyed session that was never stored.
	ActionDiscarded Action = "discarded"
)

// Recorder receives lifecycle events, typically to export metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordLoad(result LoadResult)
	RecordFinalize(action Action)
	RecordError(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordLoad(LoadResult) {}
func (nopRecorder) RecordFinalize(Action) {}
func (nopRecorder) RecordError(string) {}
