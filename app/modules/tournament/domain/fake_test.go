package tournamentdomain

import (
	"context"
	"sync"
)

// ------------------------
// Fake Bracket Client
// ------------------------

type FakeBracketClient struct {
	mu    sync.Mutex
	trace []string

	CreateTournamentFunc   func(ctx context.Context, name, format string) (RemoteTournament, error)
	AddParticipantFunc     func(ctx context.Context, remoteTournamentID string, team *Team) (string, error)
	RemoveParticipantFunc  func(ctx context.Context, remoteTournamentID, remoteParticipantID string) error
	MarkMatchUnderwayFunc  func(ctx context.Context, remoteTournamentID, remoteMatchID string) error
	ReportMatchResultFunc  func(ctx context.Context, remoteTournamentID string, report MatchReport) error
	FinalizeTournamentFunc func(ctx context.Context, remoteTournamentID string, rankings []FinalRanking) error
	FetchFullStateFunc     func(ctx context.Context, remoteTournamentID string) (RemoteState, error)
}

func NewFakeBracketClient() *FakeBracketClient {
	return &FakeBracketClient{trace: []string{}}
}

func (f *FakeBracketClient) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeBracketClient) CreateTournament(ctx context.Context, name, format string) (RemoteTournament, error) {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, name, format)
	}
	return RemoteTournament{ID: "remote-1", URL: "https://challonge.com/remote-1"}, nil
}

func (f *FakeBracketClient) AddParticipant(ctx context.Context, remoteTournamentID string, team *Team) (string, error) {
	f.record("AddParticipant")
	if f.AddParticipantFunc != nil {
		return f.AddParticipantFunc(ctx, remoteTournamentID, team)
	}
	return "p-" + team.Members()[0].ID, nil
}

func (f *FakeBracketClient) RemoveParticipant(ctx context.Context, remoteTournamentID, remoteParticipantID string) error {
	f.record("RemoveParticipant")
	if f.RemoveParticipantFunc != nil {
		return f.RemoveParticipantFunc(ctx, remoteTournamentID, remoteParticipantID)
	}
	return nil
}

func (f *FakeBracketClient) MarkMatchUnderway(ctx context.Context, remoteTournamentID, remoteMatchID string) error {
	f.record("MarkMatchUnderway")
	if f.MarkMatchUnderwayFunc != nil {
		return f.MarkMatchUnderwayFunc(ctx, remoteTournamentID, remoteMatchID)
	}
	return nil
}

func (f *FakeBracketClient) ReportMatchResult(ctx context.Context, remoteTournamentID string, report MatchReport) error {
	f.record("ReportMatchResult")
	if f.ReportMatchResultFunc != nil {
		return f.ReportMatchResultFunc(ctx, remoteTournamentID, report)
	}
	return nil
}

func (f *FakeBracketClient) FinalizeTournament(ctx context.Context, remoteTournamentID string, rankings []FinalRanking) error {
	f.record("FinalizeTournament")
	if f.FinalizeTournamentFunc != nil {
		return f.FinalizeTournamentFunc(ctx, remoteTournamentID, rankings)
	}
	return nil
}

func (f *FakeBracketClient) FetchFullState(ctx context.Context, remoteTournamentID string) (RemoteState, error) {
	f.record("FetchFullState")
	if f.FetchFullStateFunc != nil {
		return f.FetchFullStateFunc(ctx, remoteTournamentID)
	}
	return RemoteState{}, nil
}

// --- Accessors for assertions ---

func (f *FakeBracketClient) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ BracketClient = (*FakeBracketClient)(nil)

// --- Helpers ---

func player(id string) Member {
	return Member{ID: id, Name: "P" + id}
}

func solo(id string) *Team {
	return MustTeam(player(id))
}

func intPtr(v int) *int {
	return &v
}
