package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"video-portal/constant"
	"video-portal/dto"
	"video-portal/service"
)

type ServiceDependencies struct {
	WatchEvents service.WatchEventService
}

// WatchEventHandler records one queued watch event. Payloads that cannot be
// decoded or name an unknown event type are permanent failures.
func WatchEventHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.WatchEventMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal watch event message")
		return backoff.Permanent(err)
	}

	var err error
	switch event.Type {
	case constant.WatchEventPlay:
		_, err = deps.WatchEvents.RecordPlay(ctx, event.UserId, event.VideoId, event.IsRewatch)
	case constant.WatchEventProgress:
		_, err = deps.WatchEvents.RecordProgress(ctx, event.UserId, event.VideoId, event.Progress, event.Elapsed)
	case constant.WatchEventComplete:
		_, err = deps.WatchEvents.RecordCompletion(ctx, event.UserId, event.VideoId, event.Elapsed)
	default:
		return backoff.Permanent(fmt.Errorf("unknown watch event type %q", event.Type))
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("type", string(event.Type)).
		Str("user_id", event.UserId.String()).
		Str("video_id", event.VideoId.String()).
		Msg("watch event recorded")
	return nil
}
