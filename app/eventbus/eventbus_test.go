package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tourney-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		metadata string
		want     string
		wantErr  bool
	}{
		{name: "publish topic", topic: "a.v1", want: "a.v1"},
		{name: "metadata wins", topic: "", metadata: "b.v1", want: "b.v1"},
		{name: "metadata wins over publish topic", topic: "a.v1", metadata: "b.v1", want: "b.v1"},
		{name: "neither", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := message.NewMessage("m", nil)
			if tt.metadata != "" {
				msg.Metadata.Set(handlerwrapper.MetadataTopic, tt.metadata)
			}
			got, err := resolveTopic(tt.topic, msg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInMemoryEventBus_RoutesByMetadata(t *testing.T) {
	bus := NewInMemoryEventBus(slog.Default())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, InitializeStreams(ctx, bus, slog.Default()))

	created, err := bus.Subscribe(ctx, "tournament.created.v1")
	require.NoError(t, err)

	msg := message.NewMessage("m1", []byte(`{}`))
	msg.Metadata.Set(handlerwrapper.MetadataTopic, "tournament.created.v1")
	require.NoError(t, bus.Publish("", msg))

	select {
	case got := <-created:
		assert.Equal(t, "m1", got.UUID)
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message was not routed by metadata")
	}

	assert.Error(t, bus.Publish("", message.NewMessage("m2", nil)))
}
