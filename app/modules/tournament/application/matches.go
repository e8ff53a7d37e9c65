package tournamentservice

import (
	"context"
	"fmt"
	"log/slog"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/uptrace/bun"
)

// StartMatch marks a match in the selected, active tournament as underway.
func (s *TournamentService) StartMatch(ctx context.Context, guildID string, req StartMatchRequest) (MatchResult, error) {
	return withTelemetry(s, ctx, "StartMatch", guildID, func(ctx context.Context) (MatchResult, error) {
		var pending tournamentdomain.PendingSync
		result, err := inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (MatchResult, error) {
			return s.startMatchLogic(ctx, db, guildID, c, req, &pending)
		})
		if err != nil || !result.IsSuccess() {
			return result, err
		}
		result.Success.RemoteWarning = s.remoteWarning(ctx, "StartMatch", pending.Run(ctx))
		return result, nil
	})
}

func (s *TournamentService) startMatchLogic(ctx context.Context, db bun.IDB, guildID string, c *tournamentdomain.Controller, req StartMatchRequest, pending *tournamentdomain.PendingSync) (MatchResult, error) {
	t, err := selectedTournament(c, true)
	if err != nil {
		return failure[MatchOutcome](err)
	}
	teams, err := buildTeams(req.Team1, req.Team2)
	if err != nil {
		return failure[MatchOutcome](err)
	}

	m, remote, err := t.BeginMatch(teams[0], teams[1], req.Force)
	if err != nil {
		return failure[MatchOutcome](err)
	}
	if err := s.save(ctx, db, guildID, c, t); err != nil {
		return MatchResult{}, err
	}
	*pending = remote
	return results.SuccessResult[MatchOutcome, error](MatchOutcome{
		TournamentID: t.ID(),
		Match:        describeMatch(m),
	}), nil
}

// ReportMatch rates a played match and records it in the selected, active
// tournament. A draw is rated but not recorded.
func (s *TournamentService) ReportMatch(ctx context.Context, guildID string, req ReportMatchRequest) (MatchResult, error) {
	return withTelemetry(s, ctx, "ReportMatch", guildID, func(ctx context.Context) (MatchResult, error) {
		var pending tournamentdomain.PendingSync
		result, err := inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (MatchResult, error) {
			return s.reportMatchLogic(ctx, db, guildID, c, req, &pending)
		})
		if err != nil || !result.IsSuccess() || result.Success.Draw {
			return result, err
		}
		result.Success.RemoteWarning = s.remoteWarning(ctx, "ReportMatch", pending.Run(ctx))
		return result, nil
	})
}

func (s *TournamentService) reportMatchLogic(ctx context.Context, db bun.IDB, guildID string, c *tournamentdomain.Controller, req ReportMatchRequest, pending *tournamentdomain.PendingSync) (MatchResult, error) {
	if !req.Decision.valid() {
		return failure[MatchOutcome](fmt.Errorf("%w: %d", ErrInvalidDecision, req.Decision))
	}
	t, err := selectedTournament(c, true)
	if err != nil {
		return failure[MatchOutcome](err)
	}
	teams, err := buildTeams(req.Team1, req.Team2)
	if err != nil {
		return failure[MatchOutcome](err)
	}
	team1, team2 := teams[0], teams[1]
	if team1.Equals(team2) {
		return failure[MatchOutcome](fmt.Errorf("%w: a team cannot play itself", tournamentdomain.ErrInvalidMatch))
	}
	for _, team := range teams {
		if !t.HasTeam(team) {
			return failure[MatchOutcome](fmt.Errorf("%w: %s", tournamentdomain.ErrUnknownTeam, team))
		}
	}

	if s.rating != nil {
		if err := s.rating.RateMatch(ctx, team1, team2, req.Decision); err != nil {
			return failure[MatchOutcome](fmt.Errorf("%w: %v", ErrRatingFailed, err))
		}
	}

	if req.Decision == Draw {
		return results.SuccessResult[MatchOutcome, error](MatchOutcome{
			TournamentID: t.ID(),
			Match:        MatchInfo{Team1: team1.String(), Team2: team2.String(), Outcome: req.Outcome},
			Draw:         true,
		}), nil
	}

	result := tournamentdomain.MatchResult{Winner: team1, Loser: team2, Outcome: req.Outcome, Scores: req.Scores}
	if req.Decision == Team2Won {
		result.Winner, result.Loser = team2, team1
	}
	m, remote, err := t.RecordMatch(result)
	if err != nil {
		return failure[MatchOutcome](err)
	}
	if err := s.save(ctx, db, guildID, c, t); err != nil {
		return MatchResult{}, err
	}
	*pending = remote
	return results.SuccessResult[MatchOutcome, error](MatchOutcome{
		TournamentID: t.ID(),
		Match:        describeMatch(m),
	}), nil
}

// EndTournament completes the selected, active tournament with the given
// podium, winner first. With no rankings, a linked tournament takes its podium
// from the provider's final placements once the remote bracket is finalised.
func (s *TournamentService) EndTournament(ctx context.Context, guildID string, rankings [][]tournamentdomain.Member) (EndResult, error) {
	return withTelemetry(s, ctx, "EndTournament", guildID, func(ctx context.Context) (EndResult, error) {
		var (
			t       *tournamentdomain.Tournament
			pending tournamentdomain.PendingSync
		)
		result, err := inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (EndResult, error) {
			selected, err := selectedTournament(c, true)
			if err != nil {
				return failure[EndOutcome](err)
			}
			podium, err := buildTeams(rankings...)
			if err != nil {
				return failure[EndOutcome](err)
			}
			pending, err = selected.Complete(podium)
			if err != nil {
				return failure[EndOutcome](err)
			}
			if err := s.save(ctx, db, guildID, c, selected); err != nil {
				return EndResult{}, err
			}
			t = selected
			return results.SuccessResult[EndOutcome, error](EndOutcome{Tournament: describe(c, selected)}), nil
		})
		if err != nil || !result.IsSuccess() {
			return result, err
		}

		out := result.Success
		rs := pending.Run(ctx)
		out.RemoteWarning = s.remoteWarning(ctx, "EndTournament", rs)
		out.RemoteFinalized = rs.Synced()
		if !out.RemoteFinalized || len(rankings) > 0 {
			return result, nil
		}

		if warning := s.rankFromRemote(ctx, guildID, t, out); warning != "" {
			out.RemoteWarning = warning
		}
		return result, nil
	})
}

// rankFromRemote fills the podium from the provider and saves it. It returns a
// warning when the podium could not be filled or saved.
func (s *TournamentService) rankFromRemote(ctx context.Context, guildID string, t *tournamentdomain.Tournament, out *EndOutcome) string {
	ranked, err := t.RankFromRemote(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Podium not filled from the bracket provider",
			correlationAttr(ctx),
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
		return "podium not filled from the bracket provider: " + err.Error()
	}
	if ranked == 0 {
		return ""
	}

	info, err := s.persist(ctx, guildID, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "Podium from the bracket provider not saved",
			correlationAttr(ctx),
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
		return "podium filled from the bracket provider but not saved: " + err.Error()
	}
	out.Tournament = info
	return ""
}
