package tournamenthandlers

import (
	"context"

	tournamentevents "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
)

// Handlers defines the interface for tournament event handlers.
type Handlers interface {
	HandleCreateTournament(ctx context.Context, payload *tournamentevents.TournamentCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleListTournaments(ctx context.Context, payload *tournamentevents.TournamentListRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSelectTournament(ctx context.Context, payload *tournamentevents.TournamentSelectRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleAddParticipants(ctx context.Context, payload *tournamentevents.ParticipantsRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRemoveParticipants(ctx context.Context, payload *tournamentevents.ParticipantsRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleDeleteTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleStartTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRebuildTournament(ctx context.Context, payload *tournamentevents.SelectedTournamentRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleStartMatch(ctx context.Context, payload *tournamentevents.MatchStartRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleReportMatch(ctx context.Context, payload *tournamentevents.MatchReportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleEndTournament ranks and completes the selected tournament.
	HandleEndTournament(ctx context.Context, payload *tournamentevents.TournamentEndRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
