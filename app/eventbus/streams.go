package eventbus

import (
	"context"
	"fmt"
	"log/slog"
)

// StreamConfig names a JetStream stream and the subjects it captures.
type StreamConfig struct {
	Name     string
	Subjects []string
}

// DefaultStreams are the streams the bot needs at startup.
var DefaultStreams = []StreamConfig{
	{Name: "tournament", Subjects: []string{"tournament.>"}},
}

// InitializeStreams creates the necessary streams during application startup.
func InitializeStreams(ctx context.Context, bus EventBus, logger *slog.Logger, streams ...StreamConfig) error {
	if len(streams) == 0 {
		streams = DefaultStreams
	}
	for _, s := range streams {
		if err := bus.CreateStream(ctx, s.Name, s.Subjects...); err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream", slog.String("stream", s.Name), slog.Any("error", err))
			return fmt.Errorf("stream %s: %w", s.Name, err)
		}
		logger.InfoContext(ctx, "JetStream stream ready", slog.String("stream", s.Name))
	}
	return nil
}
