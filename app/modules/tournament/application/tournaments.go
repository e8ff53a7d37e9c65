package tournamentservice

import (
	"context"
	"errors"
	"strings"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/uptrace/bun"
)

// CreateTournament schedules a new tournament, links it to a remote bracket when
// a format is given, and selects it. The remote bracket is created before the
// guild is locked; a provider failure stores nothing.
func (s *TournamentService) CreateTournament(ctx context.Context, guildID string, req CreateTournamentRequest) (TournamentResult, error) {
	return withTelemetry(s, ctx, "CreateTournament", guildID, func(ctx context.Context) (TournamentResult, error) {
		if guildID == "" {
			return failure[TournamentOutcome](ErrGuildRequired)
		}
		t, err := s.newTournament(ctx, req)
		if err != nil {
			return failure[TournamentOutcome](err)
		}
		return inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (TournamentResult, error) {
			return s.addTournamentLogic(ctx, db, guildID, c, t)
		})
	})
}

func (s *TournamentService) newTournament(ctx context.Context, req CreateTournamentRequest) (*tournamentdomain.Tournament, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	schedule, err := tournamentdomain.ParseSchedule(req.UTCTime, req.CalendarDate, s.now())
	if err != nil {
		return nil, err
	}

	t := tournamentdomain.New(name, schedule)
	format := strings.TrimSpace(req.Format)
	if format == "" {
		return t, nil
	}
	if s.bracket == nil {
		return nil, ErrBracketNotConfigured
	}
	_, err = t.LinkRemote(ctx, s.bracket, format)
	s.remoteWarning(ctx, "CreateTournament", tournamentdomain.RemoteSync{Attempted: true, Err: err})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) addTournamentLogic(ctx context.Context, db bun.IDB, guildID string, c *tournamentdomain.Controller, t *tournamentdomain.Tournament) (TournamentResult, error) {
	c.AddTournament(t)
	if err := c.Select(t); err != nil {
		return TournamentResult{}, err
	}
	if err := s.save(ctx, db, guildID, c, t); err != nil {
		return TournamentResult{}, err
	}
	id := t.ID()
	if err := s.repo.SetSelected(ctx, db, guildID, &id); err != nil {
		return TournamentResult{}, err
	}

	return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: describe(c, t)}), nil
}

// ListTournaments returns the guild's tournaments in creation order. It reads the
// cached controller and does not wait for provider calls in flight.
func (s *TournamentService) ListTournaments(ctx context.Context, guildID string) (ListResult, error) {
	return withTelemetry(s, ctx, "ListTournaments", guildID, func(ctx context.Context) (ListResult, error) {
		return readGuild(s, ctx, guildID, func(c *tournamentdomain.Controller) ListResult {
			tournaments := c.Tournaments()
			infos := make([]TournamentInfo, len(tournaments))
			for i, t := range tournaments {
				infos[i] = describe(c, t)
			}
			return results.SuccessResult[ListOutcome, error](ListOutcome{Tournaments: infos})
		})
	})
}

// SelectTournament selects the tournament at a 1-based index.
func (s *TournamentService) SelectTournament(ctx context.Context, guildID string, index int) (TournamentResult, error) {
	return withTelemetry(s, ctx, "SelectTournament", guildID, func(ctx context.Context) (TournamentResult, error) {
		return inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (TournamentResult, error) {
			t, err := c.SelectIndex(index)
			if err != nil {
				return failure[TournamentOutcome](err)
			}
			id := t.ID()
			if err := s.repo.SetSelected(ctx, db, guildID, &id); err != nil {
				return TournamentResult{}, err
			}
			return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: describe(c, t)}), nil
		})
	})
}

// DeleteSelected removes the selected tournament and clears the selection. A
// linked bracket is left on the provider.
func (s *TournamentService) DeleteSelected(ctx context.Context, guildID string) (TournamentResult, error) {
	return withTelemetry(s, ctx, "DeleteSelected", guildID, func(ctx context.Context) (TournamentResult, error) {
		return inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (TournamentResult, error) {
			return s.deleteSelectedLogic(ctx, db, guildID, c)
		})
	})
}

func (s *TournamentService) deleteSelectedLogic(ctx context.Context, db bun.IDB, guildID string, c *tournamentdomain.Controller) (TournamentResult, error) {
	t, err := selectedTournament(c, false)
	if err != nil {
		return failure[TournamentOutcome](err)
	}

	info := describe(c, t)
	info.Selected = false
	shifted := c.Tournaments()[info.Position:]

	c.RemoveTournament(t)
	if err := s.repo.Delete(ctx, db, t.ID()); err != nil && !isNotFound(err) {
		return TournamentResult{}, err
	}
	for _, later := range shifted {
		if err := s.save(ctx, db, guildID, c, later); err != nil {
			return TournamentResult{}, err
		}
	}

	return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: info}), nil
}

// StartSelected moves the selected tournament from pending to active.
func (s *TournamentService) StartSelected(ctx context.Context, guildID string) (TournamentResult, error) {
	return withTelemetry(s, ctx, "StartSelected", guildID, func(ctx context.Context) (TournamentResult, error) {
		return inGuild(s, ctx, guildID, func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (TournamentResult, error) {
			t, err := selectedTournament(c, false)
			if err != nil {
				return failure[TournamentOutcome](err)
			}
			if err := c.StartTournament(t); err != nil {
				return failure[TournamentOutcome](err)
			}
			if err := s.save(ctx, db, guildID, c, t); err != nil {
				return TournamentResult{}, err
			}
			return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: describe(c, t)}), nil
		})
	})
}

// RebuildSelected overwrites the selected tournament's roster and matches with
// the remote bracket's state. The fetch runs without the guild lock; the result
// is saved afterwards and a storage error is returned so the rebuild is retried.
func (s *TournamentService) RebuildSelected(ctx context.Context, guildID string) (TournamentResult, error) {
	return withTelemetry(s, ctx, "RebuildSelected", guildID, func(ctx context.Context) (TournamentResult, error) {
		var t *tournamentdomain.Tournament
		picked, err := readGuild(s, ctx, guildID, func(c *tournamentdomain.Controller) TournamentResult {
			selected, err := selectedTournament(c, false)
			if err != nil {
				return results.FailureResult[TournamentOutcome, error](err)
			}
			if !selected.IsLinked() {
				return results.FailureResult[TournamentOutcome, error](tournamentdomain.ErrNotLinked)
			}
			t = selected
			return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: describe(c, selected)})
		})
		if err != nil || !picked.IsSuccess() {
			return picked, err
		}

		err = t.RebuildIndex(ctx)
		s.remoteWarning(ctx, "RebuildSelected", tournamentdomain.RemoteSync{Attempted: true, Err: err})
		if err != nil {
			return failure[TournamentOutcome](err)
		}

		info, err := s.persist(ctx, guildID, t)
		if errors.Is(err, ErrTournamentChanged) {
			return failure[TournamentOutcome](err)
		}
		if err != nil {
			return TournamentResult{}, err
		}
		return results.SuccessResult[TournamentOutcome, error](TournamentOutcome{Tournament: info}), nil
	})
}
