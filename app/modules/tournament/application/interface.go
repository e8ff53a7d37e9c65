package tournamentservice

import (
	"context"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/google/uuid"
)

// Service is the guild-scoped tournament command set. Every method returns a
// Failure for refused requests and an error only when storage failed.
type Service interface {
	CreateTournament(ctx context.Context, guildID string, req CreateTournamentRequest) (TournamentResult, error)
	ListTournaments(ctx context.Context, guildID string) (ListResult, error)
	SelectTournament(ctx context.Context, guildID string, index int) (TournamentResult, error)

	AddParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (ParticipantsResult, error)
	RemoveParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (ParticipantsResult, error)

	DeleteSelected(ctx context.Context, guildID string) (TournamentResult, error)
	StartSelected(ctx context.Context, guildID string) (TournamentResult, error)
	RebuildSelected(ctx context.Context, guildID string) (TournamentResult, error)

	StartMatch(ctx context.Context, guildID string, req StartMatchRequest) (MatchResult, error)
	ReportMatch(ctx context.Context, guildID string, req ReportMatchRequest) (MatchResult, error)
	EndTournament(ctx context.Context, guildID string, rankings [][]tournamentdomain.Member) (EndResult, error)
}

// RatingService updates player ratings for a played match. The computation
// lives elsewhere; an error means the match must not be recorded.
type RatingService interface {
	RateMatch(ctx context.Context, team1, team2 *tournamentdomain.Team, decision Decision) error
}

// Decision is the declared result of a reported match.
type Decision int

const (
	Draw     Decision = 0
	Team1Won Decision = 1
	Team2Won Decision = 2
)

func (d Decision) valid() bool {
	return d == Draw || d == Team1Won || d == Team2Won
}

type (
	TournamentResult   = results.OperationResult[TournamentOutcome, error]
	ListResult         = results.OperationResult[ListOutcome, error]
	ParticipantsResult = results.OperationResult[ParticipantsOutcome, error]
	MatchResult        = results.OperationResult[MatchOutcome, error]
	EndResult          = results.OperationResult[EndOutcome, error]
)

// --- Requests ---

type CreateTournamentRequest struct {
	Name string
	// UTCTime is HHMM.
	UTCTime      uint16
	CalendarDate string
	// Format links the new tournament to a remote bracket when set.
	Format string
}

type StartMatchRequest struct {
	Team1 []tournamentdomain.Member
	Team2 []tournamentdomain.Member
	Force bool
}

type ReportMatchRequest struct {
	Team1    []tournamentdomain.Member
	Team2    []tournamentdomain.Member
	Decision Decision
	Outcome  *int
	Scores   string
}

// --- Outcomes ---

// TournamentInfo is a read-only view of one tournament.
type TournamentInfo struct {
	ID          uuid.UUID
	Position    int
	Name        string
	ScheduledAt time.Time
	TimeString  string
	State       tournamentdomain.State
	Format      string
	URL         string
	Selected    bool
	Teams       []string
	MatchCount  int
	Podium      []string
}

type TournamentOutcome struct {
	Tournament TournamentInfo
	// RemoteWarning is set when the local change was kept but the bracket
	// provider was not updated.
	RemoteWarning string
}

type ListOutcome struct {
	Tournaments []TournamentInfo
}

// ParticipantStatus is what happened to one requested team.
type ParticipantStatus string

const (
	ParticipantAdded     ParticipantStatus = "added"
	ParticipantRemoved   ParticipantStatus = "removed"
	ParticipantDuplicate ParticipantStatus = "duplicate"
	ParticipantNotFound  ParticipantStatus = "not_found"
	ParticipantInvalid   ParticipantStatus = "invalid"
)

type ParticipantChange struct {
	Team          string
	Status        ParticipantStatus
	Reason        string
	RemoteWarning string
}

type ParticipantsOutcome struct {
	Tournament TournamentInfo
	Changes    []ParticipantChange
}

type MatchInfo struct {
	Team1   string
	Team2   string
	State   tournamentdomain.MatchState
	Winner  string
	Outcome *int
}

type MatchOutcome struct {
	TournamentID uuid.UUID
	Match        MatchInfo
	// Draw is set when the match was rated but not recorded.
	Draw          bool
	RemoteWarning string
}

type EndOutcome struct {
	Tournament      TournamentInfo
	RemoteFinalized bool
	RemoteWarning   string
}
