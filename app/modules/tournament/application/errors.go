package tournamentservice

import "errors"

var (
	// ErrGuildRequired indicates a request without a guild id.
	ErrGuildRequired = errors.New("guild id is required")

	// ErrNameRequired indicates a tournament without a name.
	ErrNameRequired = errors.New("tournament name is required")

	// ErrNoSelection indicates a command that needs a selected tournament.
	ErrNoSelection = errors.New("no tournament is currently selected")

	// ErrTournamentNotActive indicates a match or end command on a tournament
	// that has not been started or is already completed.
	ErrTournamentNotActive = errors.New("the selected tournament is not active")

	// ErrNoTeams indicates a participants command with nothing to do.
	ErrNoTeams = errors.New("no teams given")

	// ErrBracketNotConfigured indicates a linked tournament was requested but no
	// bracket provider credentials are configured.
	ErrBracketNotConfigured = errors.New("bracket provider is not configured")

	// ErrInvalidDecision indicates a match result outside draw, team 1 or team 2.
	ErrInvalidDecision = errors.New("invalid match result")

	// ErrTournamentChanged indicates the tournament was deleted or reloaded from
	// storage while the bracket provider was being updated.
	ErrTournamentChanged = errors.New("tournament changed during the provider update")

	// ErrRatingFailed wraps a rating service error. The match is not recorded.
	ErrRatingFailed = errors.New("rating the match failed")
)
