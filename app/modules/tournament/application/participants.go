package tournamentservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/uptrace/bun"
)

// AddParticipants enters each team in the selected tournament. Teams are handled
// independently: a duplicate or malformed team is reported and the rest still go in.
// The roster is saved before the teams are registered with the provider, and
// saved again with their participant ids afterwards.
func (s *TournamentService) AddParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (ParticipantsResult, error) {
	return withTelemetry(s, ctx, "AddParticipants", guildID, func(ctx context.Context) (ParticipantsResult, error) {
		return s.changeParticipants(ctx, guildID, "AddParticipants", teams, enterOne, true)
	})
}

// RemoveParticipants withdraws each team from the selected tournament.
func (s *TournamentService) RemoveParticipants(ctx context.Context, guildID string, teams [][]tournamentdomain.Member) (ParticipantsResult, error) {
	return withTelemetry(s, ctx, "RemoveParticipants", guildID, func(ctx context.Context) (ParticipantsResult, error) {
		return s.changeParticipants(ctx, guildID, "RemoveParticipants", teams, withdrawOne, false)
	})
}

// participantFunc applies the local half of one change. ok is false when the
// roster was left as it was.
type participantFunc func(t *tournamentdomain.Tournament, team *tournamentdomain.Team) (change ParticipantChange, pending tournamentdomain.PendingSync, ok bool)

type pendingChange struct {
	index  int
	remote tournamentdomain.PendingSync
}

func (s *TournamentService) changeParticipants(
	ctx context.Context,
	guildID string,
	operation string,
	teams [][]tournamentdomain.Member,
	apply participantFunc,
	resave bool,
) (ParticipantsResult, error) {
	var (
		t       *tournamentdomain.Tournament
		pending []pendingChange
	)
	result, err := inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (ParticipantsResult, error) {
		if len(teams) == 0 {
			return failure[ParticipantsOutcome](ErrNoTeams)
		}
		selected, err := selectedTournament(c, false)
		if err != nil {
			return failure[ParticipantsOutcome](err)
		}
		t = selected

		changes := make([]ParticipantChange, 0, len(teams))
		for _, members := range teams {
			team, err := tournamentdomain.NewTeam(members...)
			if err != nil {
				changes = append(changes, ParticipantChange{
					Team:   memberNames(members),
					Status: ParticipantInvalid,
					Reason: err.Error(),
				})
				continue
			}
			change, remote, ok := apply(t, team)
			if ok {
				pending = append(pending, pendingChange{index: len(changes), remote: remote})
			}
			changes = append(changes, change)
		}

		if len(pending) > 0 {
			if err := s.save(ctx, db, guildID, c, t); err != nil {
				return ParticipantsResult{}, err
			}
		}

		return results.SuccessResult[ParticipantsOutcome, error](ParticipantsOutcome{
			Tournament: describe(c, t),
			Changes:    changes,
		}), nil
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	out := result.Success
	var synced []int
	for _, p := range pending {
		rs := p.remote.Run(ctx)
		out.Changes[p.index].RemoteWarning = s.remoteWarning(ctx, operation, rs)
		if rs.Synced() {
			synced = append(synced, p.index)
		}
	}
	if !resave || len(synced) == 0 {
		return result, nil
	}

	info, err := s.persist(ctx, guildID, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "Participant ids not saved",
			correlationAttr(ctx),
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
		for _, i := range synced {
			out.Changes[i].RemoteWarning = "registered with the bracket provider but the participant id was not saved, rebuild to reconcile: " + err.Error()
		}
		return result, nil
	}
	out.Tournament = info
	return result, nil
}

func enterOne(t *tournamentdomain.Tournament, team *tournamentdomain.Team) (ParticipantChange, tournamentdomain.PendingSync, bool) {
	change := ParticipantChange{Team: team.String()}
	pending, err := t.EnterTeam(team, true)
	switch {
	case errors.Is(err, tournamentdomain.ErrDuplicateTeam):
		change.Status = ParticipantDuplicate
		change.Reason = "already in the tournament"
		return change, pending, false
	case err != nil:
		change.Status = ParticipantInvalid
		change.Reason = err.Error()
		return change, pending, false
	}
	change.Status = ParticipantAdded
	return change, pending, true
}

func withdrawOne(t *tournamentdomain.Tournament, team *tournamentdomain.Team) (ParticipantChange, tournamentdomain.PendingSync, bool) {
	change := ParticipantChange{Team: team.String()}
	removed, pending := t.WithdrawTeam(team, true)
	if !removed {
		change.Status = ParticipantNotFound
		change.Reason = "not in the tournament"
		return change, pending, false
	}
	change.Status = ParticipantRemoved
	return change, pending, true
}

func memberNames(members []tournamentdomain.Member) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		if m.Name != "" {
			names = append(names, m.Name)
		} else {
			names = append(names, m.ID)
		}
	}
	return strings.Join(names, ", ")
}
