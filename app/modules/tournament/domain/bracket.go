package tournamentdomain

import (
	"context"
	"time"
)

// BracketClient mirrors tournament state to an external bracket provider.
// Implementations bound their own latency; a call that times out must fail
// with ErrRemoteUnavailable. Teams passed in must only be read for their members.
type BracketClient interface {
	CreateTournament(ctx context.Context, name, format string) (RemoteTournament, error)
	AddParticipant(ctx context.Context, remoteTournamentID string, team *Team) (string, error)
	RemoveParticipant(ctx context.Context, remoteTournamentID, remoteParticipantID string) error
	MarkMatchUnderway(ctx context.Context, remoteTournamentID, remoteMatchID string) error
	ReportMatchResult(ctx context.Context, remoteTournamentID string, report MatchReport) error
	FinalizeTournament(ctx context.Context, remoteTournamentID string, rankings []FinalRanking) error
	FetchFullState(ctx context.Context, remoteTournamentID string) (RemoteState, error)
}

// RemoteLink ties a tournament to its bracket on the provider.
type RemoteLink struct {
	TournamentID string `json:"tournament_id"`
	Format       string `json:"format"`
	URL          string `json:"url,omitempty"`
}

// RemoteTournament is the provider's view of a newly created bracket.
type RemoteTournament struct {
	ID  string
	URL string
}

// MatchReport carries a decided match to the provider.
type MatchReport struct {
	MatchID             string
	WinnerSide          Side
	WinnerParticipantID string
	ScoresCSV           string
}

// FinalRanking is one podium placing sent at finalisation.
type FinalRanking struct {
	ParticipantID string
	Rank          uint32
}

// RemoteParticipant is a roster entry as stored by the provider. FinalRank is
// zero until the provider has placed the participant.
type RemoteParticipant struct {
	ID        string
	Name      string
	Members   []Member
	FinalRank uint32
}

// RemoteMatch is a match as stored by the provider. Player ids reference
// RemoteParticipant.ID and are empty while a bracket slot is still undecided.
type RemoteMatch struct {
	ID         string
	Player1ID  string
	Player2ID  string
	WinnerID   string
	State      string
	UnderwayAt *time.Time
	ScoresCSV  string
}

// RemoteState is the complete remote roster and match list.
type RemoteState struct {
	Participants []RemoteParticipant
	Matches      []RemoteMatch
}

// Remote match states reported by the provider.
const (
	RemoteMatchPending  = "pending"
	RemoteMatchOpen     = "open"
	RemoteMatchComplete = "complete"
)

// RemoteSync is the outcome of mirroring a local change. It is reported
// separately from the local result: a failed sync never undoes the local change.
type RemoteSync struct {
	Attempted bool
	Err       error
}

// OK reports whether nothing went wrong remotely (including when no call was needed).
func (r RemoteSync) OK() bool {
	return r.Err == nil
}

// Synced reports whether a remote call was made and succeeded.
func (r RemoteSync) Synced() bool {
	return r.Attempted && r.Err == nil
}

// PendingSync is the remote half of a local change. It is built while the
// tournament lock is held and run after it is released.
type PendingSync struct {
	run func(ctx context.Context) RemoteSync
}

// Run mirrors the change to the provider. The zero PendingSync does nothing.
func (p PendingSync) Run(ctx context.Context) RemoteSync {
	if p.run == nil {
		return RemoteSync{}
	}
	return p.run(ctx)
}

func syncError(err error) PendingSync {
	return PendingSync{run: func(context.Context) RemoteSync { return RemoteSync{Err: err} }}
}
