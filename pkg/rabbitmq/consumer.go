package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"video-portal/config"
)

// Binding names the exchange, queue and routing key a consumer reads from.
// When DeadLetterExchange is set, messages that keep failing are routed to
// Queue+"_dlq" through it.
type Binding struct {
	Exchange           string
	Queue              string
	RoutingKey         string
	DeadLetterExchange string
}

var (
	TranscodeBinding = Binding{
		Exchange:   "transcoding_exchange",
		Queue:      "transcoding_queue",
		RoutingKey: "transcoding.request",
	}
	WatchEventBinding = Binding{
		Exchange:           "watch_events_exchange",
		Queue:              "watch_events_queue",
		RoutingKey:         "watch.event",
		DeadLetterExchange: "watch_events_exchange_dlx",
	}
)

const maxDeliveryTries = 5

type Handler[T any] func(ctx context.Context, msg amqp.Delivery, dependencies T) error

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type consumer[T any] struct {
	conn       *amqp.Connection
	cfg        *config.RabbitMQ
	binding    Binding
	handler    Handler[T]
	numWorkers int
}

func (c consumer[T]) declare(ctx context.Context, ch *amqp.Channel) error {
	b := c.binding
	err := ch.ExchangeDeclare(b.Exchange, c.cfg.Kind, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("exchange", b.Exchange).Msg("failed to declare exchange")
		return err
	}

	var args amqp.Table
	if b.DeadLetterExchange != "" {
		dlqName := b.Queue + "_dlq"
		dlqRoutingKey := "dlq." + b.RoutingKey
		if err := ch.ExchangeDeclare(b.DeadLetterExchange, c.cfg.Kind, true, false, false, false, nil); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("exchange", b.DeadLetterExchange).Msg("failed to declare dlx")
			return err
		}
		dlq, err := ch.QueueDeclare(dlqName, true, false, false, false, nil)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("queue", dlqName).Msg("failed to declare dlq")
			return err
		}
		if err := ch.QueueBind(dlq.Name, dlqRoutingKey, b.DeadLetterExchange, false, nil); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("queue", dlqName).Msg("failed to bind dlq")
			return err
		}
		args = amqp.Table{
			"x-dead-letter-exchange":    b.DeadLetterExchange,
			"x-dead-letter-routing-key": dlqRoutingKey,
		}
	}

	q, err := ch.QueueDeclare(b.Queue, true, false, false, false, args)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", b.Queue).Msg("failed to declare queue")
		return err
	}
	if err := ch.QueueBind(q.Name, b.RoutingKey, b.Exchange, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", b.Queue).Msg("failed to bind queue")
		return err
	}
	return nil
}

func (c consumer[T]) handle(ctx context.Context, workerId int, msg amqp.Delivery, dependencies T) {
	operation := func() (struct{}, error) {
		return struct{}{}, c.handler(ctx, msg, dependencies)
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(maxDeliveryTries))
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
		}
		return
	}

	if ctx.Err() != nil {
		zerolog.Ctx(ctx).Warn().Int("worker_id", workerId).Str("queue", c.binding.Queue).Msg("shutting down, requeueing message")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to requeue message")
		}
		return
	}

	zerolog.Ctx(ctx).Error().Err(err).Int("worker_id", workerId).Str("queue", c.binding.Queue).Msg("failed to handle message")
	if c.binding.DeadLetterExchange == "" {
		if ackErr := msg.Ack(false); ackErr != nil {
			zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
		}
		return
	}
	if nackErr := msg.Nack(false, false); nackErr != nil {
		zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to nack message to send to DLQ")
	}
}

func (c consumer[T]) Consume(ctx context.Context, dependencies T) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.declare(ctx, ch); err != nil {
		return err
	}

	if err := ch.Qos(c.numWorkers, 0, false); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", c.binding.Queue).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(c.binding.Queue, "", false, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", c.binding.Queue).Msg("failed to consume queue")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("queue", c.binding.Queue).
		Str("exchange", c.binding.Exchange).
		Str("routing_key", c.binding.RoutingKey).
		Int("workers", c.numWorkers).
		Msg("consumer started")

	jobs := make(chan amqp.Delivery, c.numWorkers)
	var wg sync.WaitGroup
	for i := 1; i <= c.numWorkers; i++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()
			for msg := range jobs {
				c.handle(ctx, workerId, msg, dependencies)
			}
		}(i)
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

func NewConsumer[T any](
	conn *amqp.Connection,
	cfg *config.RabbitMQ,
	binding Binding,
	numWorkers int,
	handler Handler[T],
) Consumer[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &consumer[T]{
		conn:       conn,
		cfg:        cfg,
		binding:    binding,
		handler:    handler,
		numWorkers: numWorkers,
	}
}
