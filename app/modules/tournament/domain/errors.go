package tournamentdomain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. These abort the requested operation before any state changes
// and are never retried.
var (
	// ErrInvalidRoster indicates a team was built from an empty or malformed member list.
	ErrInvalidRoster = errors.New("invalid roster")

	// ErrDuplicateTeam indicates an equal team is already entered.
	ErrDuplicateTeam = errors.New("team is already in the tournament")

	// ErrTeamBusy indicates a team already has an underway match.
	ErrTeamBusy = errors.New("team is already playing a match")

	// ErrNotLinked indicates the tournament has no remote bracket attached.
	ErrNotLinked = errors.New("tournament is not linked to a remote bracket")

	// ErrInvalidTransition indicates a lifecycle change not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid tournament state transition")

	// ErrUnknownTeam indicates a team that is not on the tournament roster.
	ErrUnknownTeam = errors.New("team is not in the tournament")

	// ErrInvalidMatch indicates a match between a team and itself, or with a missing side.
	ErrInvalidMatch = errors.New("invalid match")

	// ErrUnknownTournament indicates a tournament not managed by the controller.
	ErrUnknownTournament = errors.New("tournament is not managed by this controller")

	// ErrIndexOutOfRange indicates a 1-based tournament index outside the sequence.
	ErrIndexOutOfRange = errors.New("tournament index out of range")

	// ErrInvalidSchedule indicates an unparseable time of day or calendar date.
	ErrInvalidSchedule = errors.New("invalid tournament schedule")

	// ErrNotRegistered indicates a linked team or match that has no remote identifier yet,
	// so the change could not be mirrored.
	ErrNotRegistered = errors.New("no remote identifier recorded")
)

// Remote error kinds. Returned wrapped in a *RemoteError.
var (
	// ErrRemoteUnavailable covers transport failures and timeouts.
	ErrRemoteUnavailable = errors.New("bracket provider unavailable")

	// ErrRemoteRejected covers well-formed error responses from the provider.
	ErrRemoteRejected = errors.New("bracket provider rejected the request")
)

// RemoteError describes a failed BracketClient call.
type RemoteError struct {
	Op       string
	Kind     error
	Messages []string
	Cause    error
}

// NewRemoteUnavailable wraps a transport-level failure.
func NewRemoteUnavailable(op string, cause error) *RemoteError {
	return &RemoteError{Op: op, Kind: ErrRemoteUnavailable, Cause: cause}
}

// NewRemoteRejected wraps the provider's error messages.
func NewRemoteRejected(op string, messages ...string) *RemoteError {
	return &RemoteError{Op: op, Kind: ErrRemoteRejected, Messages: messages}
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("remote call failed")
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// asRemoteError normalises any error coming back from a BracketClient so callers
// can always match it against ErrRemoteUnavailable or ErrRemoteRejected.
func asRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return NewRemoteUnavailable(op, err)
}
