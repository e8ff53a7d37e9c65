package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// memoryBus runs the same routing rules over an in-process Go channel pub/sub.
// Used when no NATS URL is configured and in tests.
type memoryBus struct {
	pubsub *gochannel.GoChannel
}

// NewInMemoryEventBus returns an EventBus that never leaves the process.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	var wl watermill.LoggerAdapter = watermill.NopLogger{}
	if logger != nil {
		wl = watermill.NewSlogLogger(logger)
	}
	return &memoryBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wl),
	}
}

func (b *memoryBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		subject, err := resolveTopic(topic, msg)
		if err != nil {
			return err
		}
		if err := b.pubsub.Publish(subject, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *memoryBus) CreateStream(context.Context, string, ...string) error {
	return nil
}

func (b *memoryBus) Close() error {
	return b.pubsub.Close()
}
