package tournamentmetrics

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
)

// Remote sync outcomes.
const (
	RemoteSynced  = "synced"
	RemoteFailed  = "failed"
	RemoteSkipped = "skipped"
)

// TournamentMetrics records service, handler and bracket provider activity.
type TournamentMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	// RecordRemoteSync counts the outcome of mirroring a local change.
	RecordRemoteSync(ctx context.Context, operation, outcome string)

	// RecordBracketRequest observes one HTTP call to the bracket provider.
	RecordBracketRequest(ctx context.Context, endpoint, status string, duration time.Duration)

	handlerwrapper.ReturningMetrics
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() TournamentMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordRemoteSync(context.Context, string, string)                       {}
func (NoOpMetrics) RecordBracketRequest(context.Context, string, string, time.Duration)    {}
func (NoOpMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}
