package tournamentservice

import (
	"context"
	"slices"
	"sync"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

// FakeRepository keeps rows in memory unless a Func override is set.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string
	rows  map[uuid.UUID]tournamentdb.Tournament

	ListByGuildFunc func(ctx context.Context, db bun.IDB, guildID string) ([]*tournamentdb.Tournament, error)
	SaveFunc        func(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error
	DeleteFunc      func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	SetSelectedFunc func(ctx context.Context, db bun.IDB, guildID string, id *uuid.UUID) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		trace: []string{},
		rows:  make(map[uuid.UUID]tournamentdb.Tournament),
	}
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRepository) ListByGuild(ctx context.Context, db bun.IDB, guildID string) ([]*tournamentdb.Tournament, error) {
	f.record("ListByGuild")
	if f.ListByGuildFunc != nil {
		return f.ListByGuildFunc(ctx, db, guildID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*tournamentdb.Tournament
	for _, row := range f.rows {
		if row.GuildID == guildID {
			r := row
			out = append(out, &r)
		}
	}
	slices.SortFunc(out, func(a, b *tournamentdb.Tournament) int { return a.Position - b.Position })
	return out, nil
}

func (f *FakeRepository) Save(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, t)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.ID] = *t
	return nil
}

func (f *FakeRepository) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return tournamentdb.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *FakeRepository) SetSelected(ctx context.Context, db bun.IDB, guildID string, id *uuid.UUID) error {
	f.record("SetSelected")
	if f.SetSelectedFunc != nil {
		return f.SetSelectedFunc(ctx, db, guildID, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.rows {
		if row.GuildID == guildID {
			row.Selected = id != nil && row.ID == *id
			f.rows[key] = row
		}
	}
	return nil
}

// Row returns the stored row for id.
func (f *FakeRepository) Row(id uuid.UUID) (tournamentdb.Tournament, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	return row, ok
}

// Put stores a row directly, bypassing the trace.
func (f *FakeRepository) Put(row *tournamentdb.Tournament) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[row.ID] = *row
}

func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeRepository) ResetTrace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = []string{}
}

var _ tournamentdb.Repository = (*FakeRepository)(nil)

// ------------------------
// Fake Bracket Client
// ------------------------

type FakeBracketClient struct {
	mu    sync.Mutex
	trace []string

	CreateTournamentFunc   func(ctx context.Context, name, format string) (tournamentdomain.RemoteTournament, error)
	AddParticipantFunc     func(ctx context.Context, remoteTournamentID string, team *tournamentdomain.Team) (string, error)
	RemoveParticipantFunc  func(ctx context.Context, remoteTournamentID, remoteParticipantID string) error
	MarkMatchUnderwayFunc  func(ctx context.Context, remoteTournamentID, remoteMatchID string) error
	ReportMatchResultFunc  func(ctx context.Context, remoteTournamentID string, report tournamentdomain.MatchReport) error
	FinalizeTournamentFunc func(ctx context.Context, remoteTournamentID string, rankings []tournamentdomain.FinalRanking) error
	FetchFullStateFunc     func(ctx context.Context, remoteTournamentID string) (tournamentdomain.RemoteState, error)
}

func NewFakeBracketClient() *FakeBracketClient {
	return &FakeBracketClient{trace: []string{}}
}

func (f *FakeBracketClient) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeBracketClient) CreateTournament(ctx context.Context, name, format string) (tournamentdomain.RemoteTournament, error) {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, name, format)
	}
	return tournamentdomain.RemoteTournament{ID: "remote-1", URL: "https://challonge.com/remote-1"}, nil
}

func (f *FakeBracketClient) AddParticipant(ctx context.Context, remoteTournamentID string, team *tournamentdomain.Team) (string, error) {
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

func (f *FakeBracketClient) ReportMatchResult(ctx context.Context, remoteTournamentID string, report tournamentdomain.MatchReport) error {
	f.record("ReportMatchResult")
	if f.ReportMatchResultFunc != nil {
		return f.ReportMatchResultFunc(ctx, remoteTournamentID, report)
	}
	return nil
}

func (f *FakeBracketClient) FinalizeTournament(ctx context.Context, remoteTournamentID string, rankings []tournamentdomain.FinalRanking) error {
	f.record("FinalizeTournament")
	if f.FinalizeTournamentFunc != nil {
		return f.FinalizeTournamentFunc(ctx, remoteTournamentID, rankings)
	}
	return nil
}

func (f *FakeBracketClient) FetchFullState(ctx context.Context, remoteTournamentID string) (tournamentdomain.RemoteState, error) {
	f.record("FetchFullState")
	if f.FetchFullStateFunc != nil {
		return f.FetchFullStateFunc(ctx, remoteTournamentID)
	}
	return tournamentdomain.RemoteState{}, nil
}

func (f *FakeBracketClient) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

var _ tournamentdomain.BracketClient = (*FakeBracketClient)(nil)

// ------------------------
// Fake Rating Service
// ------------------------

type FakeRatingService struct {
	trace []string

	RateMatchFunc func(ctx context.Context, team1, team2 *tournamentdomain.Team, decision Decision) error
}

func NewFakeRatingService() *FakeRatingService {
	return &FakeRatingService{trace: []string{}}
}

func (f *FakeRatingService) RateMatch(ctx context.Context, team1, team2 *tournamentdomain.Team, decision Decision) error {
	f.trace = append(f.trace, "RateMatch")
	if f.RateMatchFunc != nil {
		return f.RateMatchFunc(ctx, team1, team2, decision)
	}
	return nil
}

func (f *FakeRatingService) Trace() []string {
	return slices.Clone(f.trace)
}

var _ RatingService = (*FakeRatingService)(nil)
