package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/tourney-bot/app/eventbus"
	tournamentservice "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamenthandlers "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/handlers"
	tournamentmetrics "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/metrics"
	tournamentdb "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/router"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the tournament module.
type Module struct {
	TournamentService tournamentservice.Service
	TournamentRouter  *tournamentrouter.TournamentRouter
	cancelFunc        context.CancelFunc
	logger            *slog.Logger
}

// Dependencies are the shared components the module is built from. Bracket,
// Rating and Registry may be nil.
type Dependencies struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  tournamentmetrics.TournamentMetrics
	EventBus eventbus.EventBus
	Router   *message.Router
	Registry *prometheus.Registry
	DB       *bun.DB
	Bracket  tournamentdomain.BracketClient
	Rating   tournamentservice.RatingService
}

// NewTournamentModule creates and initializes a new tournament module.
func NewTournamentModule(ctx context.Context, deps Dependencies, routerCtx context.Context) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = tournamentmetrics.NewNoop()
	}

	logger.InfoContext(ctx, "tournament.NewTournamentModule initializing",
		slog.Bool("bracket_provider", deps.Bracket != nil),
		slog.Bool("rating_service", deps.Rating != nil),
	)

	// 1. Initialize Repository
	repo := tournamentdb.NewRepository(deps.DB)

	// 2. Initialize Service
	service := tournamentservice.NewTournamentService(repo, deps.Bracket, deps.Rating, logger, metrics, deps.Tracer, deps.DB)

	// 3. Initialize Handlers
	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, deps.Tracer)

	// 4. Initialize Router
	router := tournamentrouter.NewTournamentRouter(
		logger,
		deps.Router,
		deps.EventBus,
		deps.EventBus,
		metrics,
		deps.Tracer,
		deps.Registry,
	)

	// 5. Configure the router with handlers
	if err := router.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	return &Module{
		TournamentService: service,
		TournamentRouter:  router,
		logger:            logger,
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Tournament module goroutine stopped")
}

// Close shuts down the tournament module.
func (m *Module) Close() error {
	m.logger.Info("Stopping tournament module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.TournamentRouter != nil {
		if err := m.TournamentRouter.Close(); err != nil {
			m.logger.Error("Error closing TournamentRouter from module", "error", err)
			return fmt.Errorf("error closing TournamentRouter: %w", err)
		}
	}

	m.logger.Info("Tournament module stopped")
	return nil
}
