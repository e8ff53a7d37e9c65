package tournamenthandlers

import (
	"context"

	tournamentservice "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
)

// ------------------------
// Fake Tournament Service
// ------------------------

type FakeTournamentService struct {
	trace []string

	CreateTournamentFunc   func(ctx context.Context, guildID string, req tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error)
	ListTournamentsFunc    func(ctx context.Context, guildID string) (tournamentservice.ListResult, error)
	SelectTournamentFunc   func(ctx context.Context, guildID string, index int) (tournamentservice.TournamentResult, error)
	AddParticipantsFunc    func(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error)
	RemoveParticipantsFunc func(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error)
	DeleteSelectedFunc     func(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error)
	StartSelectedFunc      func(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error)
	RebuildSelectedFunc    func(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error)
	StartMatchFunc         func(ctx context.Context, guildID string, req tournamentservice.StartMatchRequest) (tournamentservice.MatchResult, error)
	ReportMatchFunc        func(ctx context.Context, guildID string, req tournamentservice.ReportMatchRequest) (tournamentservice.MatchResult, error)
	EndTournamentFunc      func(ctx context.Context, guildID string, rankings [][]tournamentdomain.Member) (tournamentservice.EndResult, error)
}

func NewFakeTournamentService() *FakeTournamentService {
	return &FakeTournamentService{
		trace: []string{},
	}
}

func (f *FakeTournamentService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeTournamentService) CreateTournament(ctx context.Context, guildID string, req tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error) {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, guildID, req)
	}
	return tournamentservice.TournamentResult{}, nil
}

func (f *FakeTournamentService) ListTournaments(ctx context.Context, guildID string) (tournamentservice.ListResult, error) {
	f.record("ListTournaments")
	if f.ListTournamentsFunc != nil {
		return f.ListTournamentsFunc(ctx, guildID)
	}
	return tournamentservice.ListResult{}, nil
}

func (f *FakeTournamentService) SelectTournament(ctx context.Context, guildID string, index int) (tournamentservice.TournamentResult, error) {
	f.record("SelectTournament")
	if f.SelectTournamentFunc != nil {
		return f.SelectTournamentFunc(ctx, guildID, index)
	}
	return tournamentservice.TournamentResult{}, nil
}

func (f *FakeTournamentService) AddParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error) {
	f.record("AddParticipants")
	if f.AddParticipantsFunc != nil {
		return f.AddParticipantsFunc(ctx, guildID, teams)
	}
	return tournamentservice.ParticipantsResult{}, nil
}

func (f *FakeTournamentService) RemoveParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error) {
	f.record("RemoveParticipants")
	if f.RemoveParticipantsFunc != nil {
		return f.RemoveParticipantsFunc(ctx, guildID, teams)
	}
	return tournamentservice.ParticipantsResult{}, nil
}

func (f *FakeTournamentService) DeleteSelected(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error) {
	f.record("DeleteSelected")
	if f.DeleteSelectedFunc != nil {
		return f.DeleteSelectedFunc(ctx, guildID)
	}
	return tournamentservice.TournamentResult{}, nil
}

func (f *FakeTournamentService) StartSelected(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error) {
	f.record("StartSelected")
	if f.StartSelectedFunc != nil {
		return f.StartSelectedFunc(ctx, guildID)
	}
	return tournamentservice.TournamentResult{}, nil
}

func (f *FakeTournamentService) RebuildSelected(ctx context.Context, guildID string) (tournamentservice.TournamentResult, error) {
	f.record("RebuildSelected")
	if f.RebuildSelectedFunc != nil {
		return f.RebuildSelectedFunc(ctx, guildID)
	}
	return tournamentservice.TournamentResult{}, nil
}

func (f *FakeTournamentService) StartMatch(ctx context.Context, guildID string, req tournamentservice.StartMatchRequest) (tournamentservice.MatchResult, error) {
	f.record("StartMatch")
	if f.StartMatchFunc != nil {
		return f.StartMatchFunc(ctx, guildID, req)
	}
	return tournamentservice.MatchResult{}, nil
}

func (f *FakeTournamentService) ReportMatch(ctx context.Context, guildID string, req tournamentservice.ReportMatchRequest) (tournamentservice.MatchResult, error) {
	f.record("ReportMatch")
	if f.ReportMatchFunc != nil {
		return f.ReportMatchFunc(ctx, guildID, req)
	}
	return tournamentservice.MatchResult{}, nil
}

func (f *FakeTournamentService) EndTournament(ctx context.Context, guildID string, rankings [][]tournamentdomain.Member) (tournamentservice.EndResult, error) {
	f.record("EndTournament")
	if f.EndTournamentFunc != nil {
		return f.EndTournamentFunc(ctx, guildID, rankings)
	}
	return tournamentservice.EndResult{}, nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ tournamentservice.Service = (*FakeTournamentService)(nil)
