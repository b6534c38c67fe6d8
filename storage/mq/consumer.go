package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"AddressBook/config"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/logger"
	pkgmq "AddressBook/pkg/mq"
)

type MessageHandler func(ctx context.Context, body []byte) error

type ConsumeOptions struct {
	Queue         string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Decision 一条消息处理后的去向
type Decision int

const (
	Ack Decision = iota
	Requeue
	Drop
)

// Decide SkipMessageError 直接 ack；其他错误第一次投递时重新入队，重复投递仍失败则丢弃
func Decide(err error, redelivered bool) Decision {
	if err == nil {
		return Ack
	}

	var skip *pkgerrors.SkipMessageError
	if errors.As(err, &skip) {
		return Ack
	}

	if redelivered {
		return Drop
	}
	return Requeue
}

// Consume 阻塞消费直到 ctx 取消或 channel 关闭
func Consume(ctx context.Context, opts ConsumeOptions) error {
	if conn == nil {
		return ErrDisabled
	}

	raw, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer raw.Close()

	if opts.PrefetchCount > 0 {
		if err := raw.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	ch := pkgmq.NewInstrumentedChannel(raw, config.Cfg.ServiceName)
	msgs, err := ch.Consume(opts.Queue, opts.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("consumer channel closed")
			}
			handle(ctx, ch, opts, msg)
		}
	}
}

func handle(ctx context.Context, ch *pkgmq.InstrumentedChannel, opts ConsumeOptions, msg amqp.Delivery) {
	started := time.Now()
	msgCtx, span := ch.StartProcessSpan(ctx, msg)
	defer span.End()

	err := opts.Handler(msgCtx, msg.Body)
	status := "success"

	switch Decide(err, msg.Redelivered) {
	case Ack:
		if err != nil {
			status = "skipped"
			logger.Logger.Info("Message skipped",
				zap.String("queue", opts.Queue),
				zap.String("message_id", msg.MessageId),
				zap.Error(err),
			)
		}
		_ = msg.Ack(false)
	case Requeue:
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		logger.Logger.Warn("Failed to process message, requeueing",
			zap.String("queue", opts.Queue),
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
		_ = msg.Nack(false, true)
	case Drop:
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		logger.Logger.Error("Failed to process redelivered message, dropping",
			zap.String("queue", opts.Queue),
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
		_ = msg.Nack(false, false)
	}

	pkgmq.RecordProcessed(msgCtx, opts.Queue, status, started)
}
