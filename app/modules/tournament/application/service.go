package tournamentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentmetrics "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/metrics"
	tournamentdb "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/tourney-bot/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "TournamentService"

// TournamentService implements the Service interface. Each guild has its own
// controller, restored from the repository on first use. Local changes to one
// guild run one at a time and are saved before the bracket provider is called;
// provider calls run without the guild lock or a transaction.
type TournamentService struct {
	repo    tournamentdb.Repository
	bracket tournamentdomain.BracketClient
	rating  RatingService
	logger  *slog.Logger
	metrics tournamentmetrics.TournamentMetrics
	tracer  trace.Tracer
	db      *bun.DB
	now     func() time.Time

	guildsMu sync.Mutex
	guilds   map[string]*guildEntry
}

type guildEntry struct {
	mu         sync.RWMutex
	controller *tournamentdomain.Controller
}

// NewTournamentService creates a new TournamentService. bracket and rating may be
// nil: linked tournaments are then refused and matches are recorded unrated.
func NewTournamentService(
	repo tournamentdb.Repository,
	bracket tournamentdomain.BracketClient,
	rating RatingService,
	logger *slog.Logger,
	metrics tournamentmetrics.TournamentMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TournamentService{
		repo:    repo,
		bracket: bracket,
		rating:  rating,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		now:     time.Now,
		guilds:  make(map[string]*guildEntry),
	}
}

func (s *TournamentService) guild(guildID string) *guildEntry {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	entry, ok := s.guilds[guildID]
	if !ok {
		entry = &guildEntry{}
		s.guilds[guildID] = entry
	}
	return entry
}

// loadController restores the guild's tournaments and selection. Must be called
// with entry.mu write-locked.
func (s *TournamentService) loadController(ctx context.Context, db bun.IDB, guildID string, entry *guildEntry) (*tournamentdomain.Controller, error) {
	if entry.controller != nil {
		return entry.controller, nil
	}

	rows, err := s.repo.ListByGuild(ctx, db, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournaments: %w", err)
	}

	tournaments := make([]*tournamentdomain.Tournament, 0, len(rows))
	var selected *tournamentdomain.Tournament
	for _, row := range rows {
		t, err := tournamentdomain.RestoreTournament(row.Snapshot(), s.bracket)
		if err != nil {
			return nil, fmt.Errorf("failed to restore tournament %s: %w", row.ID, err)
		}
		tournaments = append(tournaments, t)
		if row.Selected {
			selected = t
		}
	}

	c := tournamentdomain.NewController(tournaments...)
	if selected != nil {
		if err := c.Select(selected); err != nil {
			return nil, err
		}
	}
	s.logger.InfoContext(ctx, "Restored guild tournaments",
		correlationAttr(ctx),
		slog.String("guild_id", guildID),
		slog.Int("count", len(tournaments)),
	)
	entry.controller = c
	return c, nil
}

// guildFunc is a service operation against one guild's controller.
type guildFunc[S any] func(ctx context.Context, db bun.IDB, c *tournamentdomain.Controller) (results.OperationResult[S, error], error)

// inGuild runs fn in a transaction with the guild's controller, holding the
// guild lock. fn makes local changes only; provider calls happen after it
// returns. An error drops the cached controller so the next call reloads from
// storage.
func inGuild[S any](s *TournamentService, ctx context.Context, guildID string, fn guildFunc[S]) (results.OperationResult[S, error], error) {
	if guildID == "" {
		return results.FailureResult[S, error](ErrGuildRequired), nil
	}

	entry := s.guild(guildID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error) {
		c, err := s.loadController(ctx, db, guildID, entry)
		if err != nil {
			return results.OperationResult[S, error]{}, err
		}
		return fn(ctx, db, c)
	})
	if err != nil {
		entry.controller = nil
	}
	return result, err
}

// readGuild runs fn against the cached controller under the read lock, so reads
// do not queue behind one another. A guild that is not cached yet is loaded
// through inGuild.
func readGuild[S any](s *TournamentService, ctx context.Context, guildID string, fn func(c *tournamentdomain.Controller) results.OperationResult[S, error]) (results.OperationResult[S, error], error) {
	if guildID == "" {
		return results.FailureResult[S, error](ErrGuildRequired), nil
	}

	entry := s.guild(guildID)
	entry.mu.RLock()
	if c := entry.controller; c != nil {
		defer entry.mu.RUnlock()
		return fn(c), nil
	}
	entry.mu.RUnlock()

	return inGuild(s, ctx, guildID, func(_ context.Context, _ bun.IDB, c *tournamentdomain.Controller) (results.OperationResult[S, error], error) {
		return fn(c), nil
	})
}

// persist saves t again after the provider updated it, e.g. with participant
// ids. t is only saved while it still belongs to the cached controller.
func (s *TournamentService) persist(ctx context.Context, guildID string, t *tournamentdomain.Tournament) (TournamentInfo, error) {
	entry := s.guild(guildID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	c := entry.controller
	if c == nil || !c.Contains(t) {
		return TournamentInfo{}, fmt.Errorf("%w: %q", ErrTournamentChanged, t.Name())
	}

	save := func(ctx context.Context, db bun.IDB) error {
		return s.save(ctx, db, guildID, c, t)
	}
	var err error
	if s.db == nil {
		err = save(ctx, nil)
	} else {
		err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return save(ctx, tx)
		})
	}
	if err != nil {
		entry.controller = nil
		return TournamentInfo{}, err
	}
	return describe(c, t), nil
}

// position returns t's 1-based place in the controller, or 0.
func position(c *tournamentdomain.Controller, t *tournamentdomain.Tournament) int {
	for i, candidate := range c.Tournaments() {
		if candidate == t {
			return i + 1
		}
	}
	return 0
}

func (s *TournamentService) save(ctx context.Context, db bun.IDB, guildID string, c *tournamentdomain.Controller, t *tournamentdomain.Tournament) error {
	row := tournamentdb.FromSnapshot(guildID, position(c, t), c.Selected() == t, t.Snapshot())
	if err := s.repo.Save(ctx, db, row); err != nil {
		return fmt.Errorf("failed to save tournament: %w", err)
	}
	return nil
}

func describe(c *tournamentdomain.Controller, t *tournamentdomain.Tournament) TournamentInfo {
	roster := t.Roster()
	teams := make([]string, len(roster))
	for i, team := range roster {
		teams[i] = team.String()
	}
	var podium []string
	for _, team := range t.Podium() {
		podium = append(podium, team.PodiumLabel())
	}
	info := TournamentInfo{
		ID:          t.ID(),
		Position:    position(c, t),
		Name:        t.Name(),
		ScheduledAt: t.Schedule().At,
		TimeString:  t.TimeString(),
		State:       t.State(),
		Format:      t.Format(),
		Selected:    c.Selected() == t,
		Teams:       teams,
		MatchCount:  len(t.Matches()),
		Podium:      podium,
	}
	if link, ok := t.Link(); ok {
		info.URL = link.URL
	}
	return info
}

func describeMatch(m tournamentdomain.Match) MatchInfo {
	info := MatchInfo{
		Team1:   m.Team1.String(),
		Team2:   m.Team2.String(),
		State:   m.State,
		Outcome: m.Outcome,
	}
	if winner := m.WinningTeam(); winner != nil {
		info.Winner = winner.String()
	}
	return info
}

// selectedTournament returns the selected tournament, optionally requiring it
// to be active. The error is a failure, not an infrastructure error.
func selectedTournament(c *tournamentdomain.Controller, requireActive bool) (*tournamentdomain.Tournament, error) {
	t := c.Selected()
	if t == nil {
		return nil, ErrNoSelection
	}
	if requireActive && t.State() != tournamentdomain.StateActive {
		return nil, fmt.Errorf("%w: %q is %s", ErrTournamentNotActive, t.Name(), t.State())
	}
	return t, nil
}

// remoteWarning records the sync outcome and returns the text to show, if any.
func (s *TournamentService) remoteWarning(ctx context.Context, operation string, rs tournamentdomain.RemoteSync) string {
	outcome := tournamentmetrics.RemoteSkipped
	switch {
	case rs.Err != nil:
		outcome = tournamentmetrics.RemoteFailed
	case rs.Attempted:
		outcome = tournamentmetrics.RemoteSynced
	}
	if s.metrics != nil {
		s.metrics.RecordRemoteSync(ctx, operation, outcome)
	}
	if rs.Err == nil {
		return ""
	}
	s.logger.WarnContext(ctx, "Bracket provider not updated",
		correlationAttr(ctx),
		slog.String("operation", operation),
		slog.Any("error", rs.Err),
	)
	return rs.Err.Error()
}

func buildTeams(lists ...[]tournamentdomain.Member) ([]*tournamentdomain.Team, error) {
	teams := make([]*tournamentdomain.Team, len(lists))
	for i, members := range lists {
		team, err := tournamentdomain.NewTeam(members...)
		if err != nil {
			return nil, fmt.Errorf("team %d: %w", i+1, err)
		}
		teams[i] = team
	}
	return teams, nil
}

func correlationAttr(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", handlerwrapper.CorrelationID(ctx))
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *TournamentService,
	ctx context.Context,
	operationName string,
	guildID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("guild_id", guildID),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		correlationAttr(ctx),
		slog.String("operation", operationName),
		slog.String("guild_id", guildID),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				correlationAttr(ctx),
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			correlationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.Any("error", wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			correlationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.Any("failure_payload", *result.Failure),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		correlationAttr(ctx),
		slog.String("operation", operationName),
		slog.String("guild_id", guildID),
	)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *TournamentService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// failure is shorthand for a refused request.
func failure[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

// isNotFound reports a repository miss.
func isNotFound(err error) bool {
	return errors.Is(err, tournamentdb.ErrNotFound)
}
