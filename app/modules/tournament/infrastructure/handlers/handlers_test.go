package tournamenthandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tournamentservice "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const testGuild = "123456789"

func newTestHandlers(svc *FakeTournamentService) Handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTournamentHandlers(svc, logger, noop.NewTracerProvider().Tracer("test"))
}

func testInfo() tournamentservice.TournamentInfo {
	return tournamentservice.TournamentInfo{
		ID:          uuid.MustParse("8c7a4f0e-3d2b-4c1a-9e8f-7b6a5d4c3b2a"),
		Position:    1,
		Name:        "Friday Cup",
		ScheduledAt: time.Date(2026, 10, 23, 16, 0, 0, 0, time.UTC),
		TimeString:  "23/10/2026 16:00 UTC",
		State:       tournamentdomain.StatePending,
		Format:      "single elimination",
		URL:         "https://challonge.com/friday_cup",
		Selected:    true,
		Teams:       []string{"alice", "bob"},
	}
}

func TestHandleCreateTournament(t *testing.T) {
	payload := &tournamentevents.TournamentCreateRequestedPayloadV1{
		GuildID:      testGuild,
		Name:         "Friday Cup",
		UTCTime:      1600,
		CalendarDate: "23/10/2026",
		Format:       "single elimination",
	}

	tests := []struct {
		name         string
		payload      *tournamentevents.TournamentCreateRequestedPayloadV1
		setupService func(*FakeTournamentService)
		wantTopic    string
		wantErr      bool
		check        func(t *testing.T, res handlerwrapper.Result)
	}{
		{
			name:    "created",
			payload: payload,
			setupService: func(f *FakeTournamentService) {
				f.CreateTournamentFunc = func(_ context.Context, guildID string, req tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error) {
					assert.Equal(t, testGuild, guildID)
					assert.Equal(t, tournamentservice.CreateTournamentRequest{
						Name:         "Friday Cup",
						UTCTime:      1600,
						CalendarDate: "23/10/2026",
						Format:       "single elimination",
					}, req)
					return results.SuccessResult[tournamentservice.TournamentOutcome, error](tournamentservice.TournamentOutcome{
						Tournament: testInfo(),
					}), nil
				}
			},
			wantTopic: tournamentevents.TournamentCreatedV1 + "." + testGuild,
			check: func(t *testing.T, res handlerwrapper.Result) {
				out, ok := res.Payload.(*tournamentevents.TournamentPayloadV1)
				require.True(t, ok)
				assert.Equal(t, testGuild, out.GuildID)
				assert.Equal(t, "8c7a4f0e-3d2b-4c1a-9e8f-7b6a5d4c3b2a", out.Tournament.ID)
				assert.Equal(t, "pending", out.Tournament.State)
				assert.Equal(t, []string{"alice", "bob"}, out.Tournament.Teams)
				assert.True(t, out.Tournament.Selected)
				assert.Equal(t, testGuild, res.Metadata[handlerwrapper.MetadataGuildID])
			},
		},
		{
			name:    "refused",
			payload: payload,
			setupService: func(f *FakeTournamentService) {
				f.CreateTournamentFunc = func(context.Context, string, tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error) {
					return results.FailureResult[tournamentservice.TournamentOutcome, error](tournamentdomain.ErrInvalidSchedule), nil
				}
			},
			wantTopic: tournamentevents.TournamentCreateFailedV1 + "." + testGuild,
			check: func(t *testing.T, res handlerwrapper.Result) {
				out, ok := res.Payload.(*tournamentevents.TournamentFailedPayloadV1)
				require.True(t, ok)
				assert.Equal(t, testGuild, out.GuildID)
				assert.Equal(t, tournamentdomain.ErrInvalidSchedule.Error(), out.Reason)
			},
		},
		{
			name:    "missing guild answers on the bare topic",
			payload: &tournamentevents.TournamentCreateRequestedPayloadV1{Name: "x"},
			setupService: func(f *FakeTournamentService) {
				f.CreateTournamentFunc = func(context.Context, string, tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error) {
					return results.FailureResult[tournamentservice.TournamentOutcome, error](tournamentservice.ErrGuildRequired), nil
				}
			},
			wantTopic: tournamentevents.TournamentCreateFailedV1,
			check: func(t *testing.T, res handlerwrapper.Result) {
				assert.Empty(t, res.Metadata)
			},
		},
		{
			name:    "storage error is returned",
			payload: payload,
			setupService: func(f *FakeTournamentService) {
				f.CreateTournamentFunc = func(context.Context, string, tournamentservice.CreateTournamentRequest) (tournamentservice.TournamentResult, error) {
					return tournamentservice.TournamentResult{}, errors.New("database down")
				}
			},
			wantErr: true,
		},
		{
			name:         "empty result is an error",
			payload:      payload,
			setupService: func(f *FakeTournamentService) {},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeTournamentService()
			tt.setupService(svc)
			h := newTestHandlers(svc)

			res, err := h.HandleCreateTournament(context.Background(), tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, tt.wantTopic, res[0].Topic)
			if tt.check != nil {
				tt.check(t, res[0])
			}
			assert.Equal(t, []string{"CreateTournament"}, svc.Trace())
		})
	}
}

func TestHandleListTournaments(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.ListTournamentsFunc = func(_ context.Context, guildID string) (tournamentservice.ListResult, error) {
		second := testInfo()
		second.Position = 2
		second.Selected = false
		second.Teams = nil
		return results.SuccessResult[tournamentservice.ListOutcome, error](tournamentservice.ListOutcome{
			Tournaments: []tournamentservice.TournamentInfo{testInfo(), second},
		}), nil
	}

	res, err := newTestHandlers(svc).HandleListTournaments(context.Background(), &tournamentevents.TournamentListRequestedPayloadV1{GuildID: testGuild})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tournamentevents.TournamentListedV1+"."+testGuild, res[0].Topic)

	out := res[0].Payload.(*tournamentevents.TournamentListPayloadV1)
	require.Len(t, out.Tournaments, 2)
	assert.Equal(t, 2, out.Tournaments[1].Position)
	assert.NotNil(t, out.Tournaments[1].Teams)
	assert.Empty(t, out.Tournaments[1].Teams)
}

func TestHandleSelectedTournamentCommands(t *testing.T) {
	ok := func(context.Context, string) (tournamentservice.TournamentResult, error) {
		return results.SuccessResult[tournamentservice.TournamentOutcome, error](tournamentservice.TournamentOutcome{
			Tournament:    testInfo(),
			RemoteWarning: "bracket provider unavailable",
		}), nil
	}
	payload := &tournamentevents.SelectedTournamentRequestedPayloadV1{GuildID: testGuild}

	tests := []struct {
		name      string
		call      func(Handlers) ([]handlerwrapper.Result, error)
		wantTopic string
		wantTrace string
	}{
		{
			name:      "delete",
			call:      func(h Handlers) ([]handlerwrapper.Result, error) { return h.HandleDeleteTournament(context.Background(), payload) },
			wantTopic: tournamentevents.TournamentDeletedV1,
			wantTrace: "DeleteSelected",
		},
		{
			name:      "start",
			call:      func(h Handlers) ([]handlerwrapper.Result, error) { return h.HandleStartTournament(context.Background(), payload) },
			wantTopic: tournamentevents.TournamentStartedV1,
			wantTrace: "StartSelected",
		},
		{
			name:      "rebuild",
			call:      func(h Handlers) ([]handlerwrapper.Result, error) { return h.HandleRebuildTournament(context.Background(), payload) },
			wantTopic: tournamentevents.TournamentRebuiltV1,
			wantTrace: "RebuildSelected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeTournamentService()
			svc.DeleteSelectedFunc = ok
			svc.StartSelectedFunc = ok
			svc.RebuildSelectedFunc = ok

			res, err := tt.call(newTestHandlers(svc))
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, tt.wantTopic+"."+testGuild, res[0].Topic)
			out := res[0].Payload.(*tournamentevents.TournamentPayloadV1)
			assert.Equal(t, "bracket provider unavailable", out.RemoteWarning)
			assert.Equal(t, []string{tt.wantTrace}, svc.Trace())
		})
	}
}

func TestHandleSelectTournament_PassesIndex(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.SelectTournamentFunc = func(_ context.Context, _ string, index int) (tournamentservice.TournamentResult, error) {
		assert.Equal(t, 3, index)
		return results.FailureResult[tournamentservice.TournamentOutcome, error](tournamentdomain.ErrIndexOutOfRange), nil
	}

	res, err := newTestHandlers(svc).HandleSelectTournament(context.Background(), &tournamentevents.TournamentSelectRequestedPayloadV1{GuildID: testGuild, Index: 3})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tournamentevents.TournamentSelectFailedV1+"."+testGuild, res[0].Topic)
}

func TestHandleAddParticipants(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.AddParticipantsFunc = func(_ context.Context, _ string, teams [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error) {
		assert.Equal(t, [][]tournamentdomain.Member{
			{{ID: "1", Name: "alice"}, {ID: "2", Name: "bob"}},
			{{ID: "3"}},
		}, teams)
		return results.SuccessResult[tournamentservice.ParticipantsOutcome, error](tournamentservice.ParticipantsOutcome{
			Tournament: testInfo(),
			Changes: []tournamentservice.ParticipantChange{
				{Team: "alice, bob", Status: tournamentservice.ParticipantAdded},
				{Team: "3", Status: tournamentservice.ParticipantDuplicate, Reason: "team is already in the tournament"},
			},
		}), nil
	}

	res, err := newTestHandlers(svc).HandleAddParticipants(context.Background(), &tournamentevents.ParticipantsRequestedPayloadV1{
		GuildID: testGuild,
		Teams: []tournamentevents.TeamV1{
			{{ID: "1", Name: "alice"}, {ID: "2", Name: "bob"}},
			{{ID: "3"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tournamentevents.ParticipantsAddedV1+"."+testGuild, res[0].Topic)

	out := res[0].Payload.(*tournamentevents.ParticipantsPayloadV1)
	assert.Equal(t, []tournamentevents.ParticipantChangeV1{
		{Team: "alice, bob", Status: tournamentevents.ParticipantAdded},
		{Team: "3", Status: tournamentevents.ParticipantDuplicate, Reason: "team is already in the tournament"},
	}, out.Changes)
}

func TestHandleRemoveParticipants_Error(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.RemoveParticipantsFunc = func(context.Context, string, [][]tournamentdomain.Member) (tournamentservice.ParticipantsResult, error) {
		return tournamentservice.ParticipantsResult{}, errors.New("database down")
	}

	res, err := newTestHandlers(svc).HandleRemoveParticipants(context.Background(), &tournamentevents.ParticipantsRequestedPayloadV1{GuildID: testGuild})
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"RemoveParticipants"}, svc.Trace())
}

func TestHandleStartMatch(t *testing.T) {
	svc := NewFakeTournamentService()
	id := uuid.New()
	svc.StartMatchFunc = func(_ context.Context, _ string, req tournamentservice.StartMatchRequest) (tournamentservice.MatchResult, error) {
		assert.Equal(t, []tournamentdomain.Member{{ID: "1"}}, req.Team1)
		assert.Equal(t, []tournamentdomain.Member{{ID: "2"}}, req.Team2)
		assert.True(t, req.Force)
		return results.SuccessResult[tournamentservice.MatchOutcome, error](tournamentservice.MatchOutcome{
			TournamentID: id,
			Match:        tournamentservice.MatchInfo{Team1: "1", Team2: "2", State: tournamentdomain.MatchUnderway},
		}), nil
	}

	res, err := newTestHandlers(svc).HandleStartMatch(context.Background(), &tournamentevents.MatchStartRequestedPayloadV1{
		GuildID: testGuild,
		Team1:   tournamentevents.TeamV1{{ID: "1"}},
		Team2:   tournamentevents.TeamV1{{ID: "2"}},
		Force:   true,
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	out := res[0].Payload.(*tournamentevents.MatchPayloadV1)
	assert.Equal(t, id.String(), out.TournamentID)
	assert.Equal(t, "underway", out.Match.State)
}

func TestHandleReportMatch(t *testing.T) {
	tests := []struct {
		name         string
		result       int
		wantDecision tournamentservice.Decision
		outcome      tournamentservice.MatchOutcome
		wantDraw     bool
	}{
		{
			name:         "team one won",
			result:       tournamentevents.MatchResultTeam1Won,
			wantDecision: tournamentservice.Team1Won,
			outcome: tournamentservice.MatchOutcome{
				Match: tournamentservice.MatchInfo{Team1: "1", Team2: "2", State: tournamentdomain.MatchFinished, Winner: "1"},
			},
		},
		{
			name:         "team two won",
			result:       tournamentevents.MatchResultTeam2Won,
			wantDecision: tournamentservice.Team2Won,
			outcome: tournamentservice.MatchOutcome{
				Match: tournamentservice.MatchInfo{Team1: "1", Team2: "2", State: tournamentdomain.MatchFinished, Winner: "2"},
			},
		},
		{
			name:         "draw",
			result:       tournamentevents.MatchResultDraw,
			wantDecision: tournamentservice.Draw,
			outcome:      tournamentservice.MatchOutcome{Draw: true, Match: tournamentservice.MatchInfo{Team1: "1", Team2: "2"}},
			wantDraw:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeTournamentService()
			svc.ReportMatchFunc = func(_ context.Context, _ string, req tournamentservice.ReportMatchRequest) (tournamentservice.MatchResult, error) {
				assert.Equal(t, tt.wantDecision, req.Decision)
				assert.Equal(t, "2-1", req.Scores)
				return results.SuccessResult[tournamentservice.MatchOutcome, error](tt.outcome), nil
			}

			res, err := newTestHandlers(svc).HandleReportMatch(context.Background(), &tournamentevents.MatchReportRequestedPayloadV1{
				GuildID: testGuild,
				Team1:   tournamentevents.TeamV1{{ID: "1"}},
				Team2:   tournamentevents.TeamV1{{ID: "2"}},
				Result:  tt.result,
				Scores:  "2-1",
			})
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, tournamentevents.TournamentMatchReportedV1+"."+testGuild, res[0].Topic)
			out := res[0].Payload.(*tournamentevents.MatchPayloadV1)
			assert.Equal(t, tt.wantDraw, out.Draw)
			assert.Equal(t, tt.outcome.Match.Winner, out.Match.Winner)
		})
	}
}

func TestHandleReportMatch_InvalidResult(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.ReportMatchFunc = func(_ context.Context, _ string, req tournamentservice.ReportMatchRequest) (tournamentservice.MatchResult, error) {
		assert.Equal(t, tournamentservice.Decision(7), req.Decision)
		return results.FailureResult[tournamentservice.MatchOutcome, error](tournamentservice.ErrInvalidDecision), nil
	}

	res, err := newTestHandlers(svc).HandleReportMatch(context.Background(), &tournamentevents.MatchReportRequestedPayloadV1{GuildID: testGuild, Result: 7})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tournamentevents.TournamentMatchReportFailedV1+"."+testGuild, res[0].Topic)
	assert.Equal(t, tournamentservice.ErrInvalidDecision.Error(), res[0].Payload.(*tournamentevents.TournamentFailedPayloadV1).Reason)
}

func TestHandleEndTournament(t *testing.T) {
	svc := NewFakeTournamentService()
	svc.EndTournamentFunc = func(_ context.Context, _ string, rankings [][]tournamentdomain.Member) (tournamentservice.EndResult, error) {
		assert.Equal(t, [][]tournamentdomain.Member{{{ID: "2"}}, {{ID: "1"}}}, rankings)
		info := testInfo()
		info.State = tournamentdomain.StateCompleted
		info.Podium = []string{"2", "1"}
		return results.SuccessResult[tournamentservice.EndOutcome, error](tournamentservice.EndOutcome{
			Tournament:      info,
			RemoteFinalized: true,
		}), nil
	}

	res, err := newTestHandlers(svc).HandleEndTournament(context.Background(), &tournamentevents.TournamentEndRequestedPayloadV1{
		GuildID:  testGuild,
		Rankings: []tournamentevents.TeamV1{{{ID: "2"}}, {{ID: "1"}}},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tournamentevents.TournamentEndedV1+"."+testGuild, res[0].Topic)
	out := res[0].Payload.(*tournamentevents.TournamentEndedPayloadV1)
	assert.True(t, out.RemoteFinalized)
	assert.Equal(t, "completed", out.Tournament.State)
	assert.Equal(t, []string{"2", "1"}, out.Tournament.Podium)
}
