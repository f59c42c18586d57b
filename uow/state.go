// Package uow implements a unit-of-work session.
//
// A Session stages inserts, updates and deletes for tracked models and flushes
// them in one go through a Flusher. Each tracked model is in exactly one State,
// and the state after a staging call is what repositories use to report success.
package uow

// State is the staging state of a model within a Session.
type State uint8

const (
	// Detached means the session does not track the model.
	Detached State = iota
	// Unchanged means the model is tracked and matches storage.
	Unchanged
	// Added means the model will be inserted on commit.
	Added
	// Modified means the model will be updated on commit.
	Modified
	// Deleted means the model will be deleted on commit.
	Deleted
)

func (s State) String() string {
	switch s {
	case Detached:
		return "Detached"
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// Pending reports whether the state produces a statement on commit.
func (s State) Pending() bool {
	return s == Added || s == Modified || s == Deleted
}
