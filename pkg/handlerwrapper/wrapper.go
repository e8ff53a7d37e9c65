// Package handlerwrapper adapts typed request handlers to Watermill handler
// functions. A handler receives a decoded payload and returns the events to
// publish; the wrapper owns decoding, encoding, tracing, metadata and metrics.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// CtxKeyReplyTo carries the request's reply_to metadata, if any.
	CtxKeyReplyTo contextKey = "reply_to"
	// CtxKeyCorrelationID carries the request's correlation id.
	CtxKeyCorrelationID contextKey = "correlation_id"
)

// Metadata keys read from and written to messages.
const (
	MetadataTopic   = "topic"
	MetadataReplyTo = "reply_to"
	MetadataGuildID = "guild_id"
)

// Result is one outgoing event.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// ReturningMetrics records handler outcomes. A nil value disables recording.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// CorrelationID returns the correlation id stored in ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyCorrelationID).(string)
	return id
}

// WrapTransformingTyped decodes the message into T, runs handler and turns its
// results into messages. The produced messages carry their topic in metadata and
// inherit the request's correlation id.
//
// Undecodable payloads are logged and acknowledged; they would never succeed on
// redelivery. Handler errors are returned so the router nacks the message.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics ReturningMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = context.WithValue(ctx, CtxKeyCorrelationID, correlationID)
		if replyTo := msg.Metadata.Get(MetadataReplyTo); replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("handler", handlerName),
				attribute.String("message_uuid", msg.UUID),
				attribute.String("correlation_id", correlationID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			start := time.Now()
			defer func() {
				metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start))
			}()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				slog.String("handler", handlerName),
				slog.String("message_uuid", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "undecodable payload")
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, err
		}

		out, err := buildMessages(results, correlationID)
		if err != nil {
			span.RecordError(err)
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		return out, nil
	}
}

func buildMessages(results []Result, correlationID string) ([]*message.Message, error) {
	out := make([]*message.Message, 0, len(results))
	for _, r := range results {
		if r.Topic == "" {
			return nil, fmt.Errorf("result has no topic")
		}
		body, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload for %s: %w", r.Topic, err)
		}
		m := message.NewMessage(watermill.NewUUID(), body)
		for k, v := range r.Metadata {
			m.Metadata.Set(k, v)
		}
		m.Metadata.Set(MetadataTopic, r.Topic)
		middleware.SetCorrelationID(correlationID, m)
		out = append(out, m)
	}
	return out, nil
}
