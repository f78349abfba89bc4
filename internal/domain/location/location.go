package location

import "github.com/openmeet/openmeet/internal/apperr"

type State string

const (
	StatePending       State = "PENDING"
	StateApproved      State = "APPROVED"
	StateRejected      State = "REJECTED"
	StateAutoGenerated State = "AUTO_GENERATED"
)

func ParseState(s string) (State, bool) {
	switch State(s) {
	case StatePending, StateApproved, StateRejected, StateAutoGenerated:
		return State(s), true
	}
	return "", false
}

// NearbyRadiusMeters is the proximity within which two same-named locations
// are treated as duplicates, and within which bare event coordinates reuse an
// existing auto-generated point.
const NearbyRadiusMeters = 50.0

type Location struct {
	ID        int64
	CreatorID *int64 // nil for admin- or system-created locations
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	State     State
}

// ChangeState applies an explicit admin state change. Only APPROVED and
// REJECTED are reachable this way; a same-state change short-circuits.
func (l *Location) ChangeState(state State) error {
	if l.State == state {
		return nil
	}

	if state != StateApproved && state != StateRejected {
		return apperr.Conflictf("cannot change state from %s to %s", l.State, state)
	}

	l.State = state

	return nil
}

// DuplicateError describes an existing same-named nearby location; the
// message depends on the duplicate's current state.
func DuplicateError(existing Location) error {
	switch existing.State {
	case StateApproved:
		return apperr.Duplicatef("please use existing location (id=%d)", existing.ID)
	case StatePending:
		return apperr.Duplicatef("a request to create this location already exists (id=%d), please wait for approval", existing.ID)
	case StateRejected:
		return apperr.Duplicatef("the request for creating this location was rejected earlier, please contact admin")
	}

	return apperr.Duplicatef("location already exists (id=%d)", existing.ID)
}
