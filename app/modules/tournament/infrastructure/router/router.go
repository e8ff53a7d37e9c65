package tournamentrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/tourney-bot/app/eventbus"
	tournamentevents "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/events"
	tournamenthandlers "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// TournamentRouter handles Watermill handler registration for tournament events.
type TournamentRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	metrics    handlerwrapper.ReturningMetrics
	tracer     trace.Tracer

	metricsBuilder *wmmetrics.PrometheusMetricsBuilder
}

// NewTournamentRouter creates a new TournamentRouter.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	metrics handlerwrapper.ReturningMetrics,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *TournamentRouter {
	var metricsBuilder *wmmetrics.PrometheusMetricsBuilder
	if registry != nil {
		b := wmmetrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &TournamentRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		metrics:    metrics,
		tracer:     tracer,

		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the router with handlers.
func (r *TournamentRouter) Configure(_ context.Context, handlers tournamenthandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.router)
	}

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.ReturningMetrics
}

// registerHandlers wires request subjects to handler methods.
func (r *TournamentRouter) registerHandlers(handlers tournamenthandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, tournamentevents.TournamentCreateRequestedV1, handlers.HandleCreateTournament)
	registerHandler(deps, tournamentevents.TournamentListRequestedV1, handlers.HandleListTournaments)
	registerHandler(deps, tournamentevents.TournamentSelectRequestedV1, handlers.HandleSelectTournament)
	registerHandler(deps, tournamentevents.ParticipantsAddRequestedV1, handlers.HandleAddParticipants)
	registerHandler(deps, tournamentevents.ParticipantsRemoveRequestedV1, handlers.HandleRemoveParticipants)
	registerHandler(deps, tournamentevents.TournamentDeleteRequestedV1, handlers.HandleDeleteTournament)
	registerHandler(deps, tournamentevents.TournamentStartRequestedV1, handlers.HandleStartTournament)
	registerHandler(deps, tournamentevents.TournamentRebuildRequestedV1, handlers.HandleRebuildTournament)
	registerHandler(deps, tournamentevents.TournamentMatchStartRequestedV1, handlers.HandleStartMatch)
	registerHandler(deps, tournamentevents.TournamentMatchReportRequestedV1, handlers.HandleReportMatch)
	registerHandler(deps, tournamentevents.TournamentEndRequestedV1, handlers.HandleEndTournament)

	r.logger.Info("Tournament module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Results carry their own topic, so the publish topic is left empty.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tournament." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *TournamentRouter) Close() error {
	return r.router.Close()
}
