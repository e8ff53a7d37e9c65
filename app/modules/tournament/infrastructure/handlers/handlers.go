package tournamenthandlers

import (
	"context"
	"errors"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/tourney-bot/pkg/eventbus"
	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

// TournamentHandlers implements the Handlers interface.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(
	service tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *TournamentHandlers) HandleCreateTournament(ctx context.Context, payload *tournamentevents.TournamentCreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleCreateTournament")
	defer span.End()

	h.logger.InfoContext(ctx, "Tournament creation requested",
		slog.String("guild_id", payload.GuildID),
		slog.String("name", payload.Name),
		slog.String("format", payload.Format),
	)

	result, err := h.service.CreateTournament(ctx, payload.GuildID, tournamentservice.CreateTournamentRequest{
		Name:         payload.Name,
		UTCTime:      payload.UTCTime,
		CalendarDate: payload.CalendarDate,
		Format:       payload.Format,
	})
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentCreatedV1, tournamentevents.TournamentCreateFailedV1,
		results.Map(result, tournamentPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleListTournaments(ctx context.Context, payload *tournamentevents.TournamentListRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleListTournaments")
	defer span.End()

	result, err := h.service.ListTournaments(ctx, payload.GuildID)
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentListedV1, tournamentevents.TournamentListFailedV1,
		results.Map(result, func(out tournamentservice.ListOutcome) any {
			list := make([]tournamentevents.TournamentV1, len(out.Tournaments))
			for i, info := range out.Tournaments {
				list[i] = tournamentV1(info)
			}
			return &tournamentevents.TournamentListPayloadV1{GuildID: payload.GuildID, Tournaments: list}
		}), err)
}

func (h *TournamentHandlers) HandleSelectTournament(ctx context.Context, payload *tournamentevents.TournamentSelectRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleSelectTournament")
	defer span.End()

	result, err := h.service.SelectTournament(ctx, payload.GuildID, payload.Index)
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentSelectedV1, tournamentevents.TournamentSelectFailedV1,
		results.Map(result, tournamentPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleAddParticipants(ctx context.Context, payload *tournamentevents.ParticipantsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleAddParticipants")
	defer span.End()

	h.logger.InfoContext(ctx, "Participants add requested",
		slog.String("guild_id", payload.GuildID),
		slog.Int("teams", len(payload.Teams)),
	)

	result, err := h.service.AddParticipants(ctx, payload.GuildID, teams(payload.Teams))
	return h.respond(ctx, payload.GuildID, tournamentevents.ParticipantsAddedV1, tournamentevents.ParticipantsAddFailedV1,
		results.Map(result, participantsPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleRemoveParticipants(ctx context.Context, payload *tournamentevents.ParticipantsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleRemoveParticipants")
	defer span.End()

	h.logger.InfoContext(ctx, "Participants remove requested",
		slog.String("guild_id", payload.GuildID),
		slog.Int("teams", len(payload.Teams)),
	)

	result, err := h.service.RemoveParticipants(ctx, payload.GuildID, teams(payload.Teams))
	return h.respond(ctx, payload.GuildID, tournamentevents.ParticipantsRemovedV1, tournamentevents.ParticipantsRemoveFailedV1,
		results.Map(result, participantsPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleDeleteTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleDeleteTournament")
	defer span.End()

	h.logger.InfoContext(ctx, "Tournament deletion requested", slog.String("guild_id", payload.GuildID))

	result, err := h.service.DeleteSelected(ctx, payload.GuildID)
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentDeletedV1, tournamentevents.TournamentDeleteFailedV1,
		results.Map(result, tournamentPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleStartTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStartTournament")
	defer span.End()

	result, err := h.service.StartSelected(ctx, payload.GuildID)
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentStartedV1, tournamentevents.TournamentStartFailedV1,
		results.Map(result, tournamentPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleRebuildTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleRebuildTournament")
	defer span.End()

	h.logger.InfoContext(ctx, "Tournament rebuild requested", slog.String("guild_id", payload.GuildID))

	result, err := h.service.RebuildSelected(ctx, payload.GuildID)
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentRebuiltV1, tournamentevents.TournamentRebuildFailedV1,
		results.Map(result, tournamentPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleStartMatch(ctx context.Context, payload *tournamentevents.MatchStartRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStartMatch")
	defer span.End()

	result, err := h.service.StartMatch(ctx, payload.GuildID, tournamentservice.StartMatchRequest{
		Team1: members(payload.Team1),
		Team2: members(payload.Team2),
		Force: payload.Force,
	})
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentMatchStartedV1, tournamentevents.TournamentMatchStartFailedV1,
		results.Map(result, matchPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleReportMatch(ctx context.Context, payload *tournamentevents.MatchReportRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleReportMatch")
	defer span.End()

	h.logger.InfoContext(ctx, "Match report received",
		slog.String("guild_id", payload.GuildID),
		slog.Int("result", payload.Result),
	)

	result, err := h.service.ReportMatch(ctx, payload.GuildID, tournamentservice.ReportMatchRequest{
		Team1:    members(payload.Team1),
		Team2:    members(payload.Team2),
		Decision: tournamentservice.Decision(payload.Result),
		Outcome:  payload.Outcome,
		Scores:   payload.Scores,
	})
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentMatchReportedV1, tournamentevents.TournamentMatchReportFailedV1,
		results.Map(result, matchPayload(payload.GuildID)), err)
}

func (h *TournamentHandlers) HandleEndTournament(ctx context.Context, payload *tournamentevents.TournamentEndRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleEndTournament")
	defer span.End()

	h.logger.InfoContext(ctx, "Tournament end requested",
		slog.String("guild_id", payload.GuildID),
		slog.Int("ranked_teams", len(payload.Rankings)),
	)

	result, err := h.service.EndTournament(ctx, payload.GuildID, teams(payload.Rankings))
	return h.respond(ctx, payload.GuildID, tournamentevents.TournamentEndedV1, tournamentevents.TournamentEndFailedV1,
		results.Map(result, func(out tournamentservice.EndOutcome) any {
			return &tournamentevents.TournamentEndedPayloadV1{
				GuildID:         payload.GuildID,
				Tournament:      tournamentV1(out.Tournament),
				RemoteFinalized: out.RemoteFinalized,
				RemoteWarning:   out.RemoteWarning,
			}
		}), err)
}

// respond turns a service result into one event. Infrastructure errors are
// returned so the message is redelivered.
func (h *TournamentHandlers) respond(
	ctx context.Context,
	guildID, successTopic, failureTopic string,
	result results.OperationResult[any, error],
	err error,
) ([]handlerwrapper.Result, error) {
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{}
	if guildID != "" {
		metadata[handlerwrapper.MetadataGuildID] = guildID
	}

	if result.IsFailure() {
		reason := "unknown failure"
		if *result.Failure != nil {
			reason = (*result.Failure).Error()
		}
		h.logger.WarnContext(ctx, "Tournament request refused",
			slog.String("guild_id", guildID),
			slog.String("topic", failureTopic),
			slog.String("reason", reason),
		)
		return []handlerwrapper.Result{{
			Topic:    scopedTopic(failureTopic, guildID),
			Payload:  &tournamentevents.TournamentFailedPayloadV1{GuildID: guildID, Reason: reason},
			Metadata: metadata,
		}}, nil
	}
	if !result.IsSuccess() {
		return nil, errors.New("service returned an empty result")
	}

	return []handlerwrapper.Result{{
		Topic:    scopedTopic(successTopic, guildID),
		Payload:  *result.Success,
		Metadata: metadata,
	}}, nil
}

// scopedTopic suffixes the topic with the guild id. Requests without a guild
// are answered on the bare topic.
func scopedTopic(base, guildID string) string {
	topic, err := eventbus.GuildScopedTopic(base, guildID)
	if err != nil {
		return base
	}
	return topic
}

func members(team tournamentevents.TeamV1) []tournamentdomain.Member {
	out := make([]tournamentdomain.Member, len(team))
	for i, m := range team {
		out[i] = tournamentdomain.Member{ID: m.ID, Name: m.Name}
	}
	return out
}

func teams(in []tournamentevents.TeamV1) [][]tournamentdomain.Member {
	out := make([][]tournamentdomain.Member, len(in))
	for i, team := range in {
		out[i] = members(team)
	}
	return out
}

func tournamentV1(info tournamentservice.TournamentInfo) tournamentevents.TournamentV1 {
	teamNames := info.Teams
	if teamNames == nil {
		teamNames = []string{}
	}
	return tournamentevents.TournamentV1{
		ID:          info.ID.String(),
		Position:    info.Position,
		Name:        info.Name,
		ScheduledAt: info.ScheduledAt,
		TimeString:  info.TimeString,
		State:       string(info.State),
		Format:      info.Format,
		URL:         info.URL,
		Selected:    info.Selected,
		Teams:       teamNames,
		MatchCount:  info.MatchCount,
		Podium:      info.Podium,
	}
}

func tournamentPayload(guildID string) func(tournamentservice.TournamentOutcome) any {
	return func(out tournamentservice.TournamentOutcome) any {
		return &tournamentevents.TournamentPayloadV1{
			GuildID:       guildID,
			Tournament:    tournamentV1(out.Tournament),
			RemoteWarning: out.RemoteWarning,
		}
	}
}

func participantsPayload(guildID string) func(tournamentservice.ParticipantsOutcome) any {
	return func(out tournamentservice.ParticipantsOutcome) any {
		changes := make([]tournamentevents.ParticipantChangeV1, len(out.Changes))
		for i, c := range out.Changes {
			changes[i] = tournamentevents.ParticipantChangeV1{
				Team:          c.Team,
				Status:        string(c.Status),
				Reason:        c.Reason,
				RemoteWarning: c.RemoteWarning,
			}
		}
		return &tournamentevents.ParticipantsPayloadV1{
			GuildID:    guildID,
			Tournament: tournamentV1(out.Tournament),
			Changes:    changes,
		}
	}
}

func matchPayload(guildID string) func(tournamentservice.MatchOutcome) any {
	return func(out tournamentservice.MatchOutcome) any {
		return &tournamentevents.MatchPayloadV1{
			GuildID:      guildID,
			TournamentID: out.TournamentID.String(),
			Match: tournamentevents.MatchV1{
				Team1:   out.Match.Team1,
				Team2:   out.Match.Team2,
				State:   string(out.Match.State),
				Winner:  out.Match.Winner,
				Outcome: out.Match.Outcome,
			},
			Draw:          out.Draw,
			RemoteWarning: out.RemoteWarning,
		}
	}
}
