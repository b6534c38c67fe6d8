package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/pkg/logger"
	pkgmq "AddressBook/pkg/mq"
)

var (
	publisherCh *pkgmq.InstrumentedChannel
	pubMutex    sync.RWMutex // 读多写少
)

// getPublisherChannel 复用同一个发布 channel，关闭后下次发布时重建
func getPublisherChannel() (*pkgmq.InstrumentedChannel, error) {
	pubMutex.RLock()
	if publisherCh != nil && !publisherCh.Channel().IsClosed() {
		ch := publisherCh
		pubMutex.RUnlock()
		return ch, nil
	}
	pubMutex.RUnlock()

	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.Channel().IsClosed() {
		return publisherCh, nil
	}

	if conn == nil {
		return nil, ErrDisabled
	}

	raw, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	ch := pkgmq.NewInstrumentedChannel(raw, config.Cfg.ServiceName)
	publisherCh = ch

	go func() {
		<-raw.NotifyClose(make(chan *amqp.Error, 1))

		pubMutex.Lock()
		if publisherCh == ch {
			publisherCh = nil
		}
		pubMutex.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}()

	logger.Logger.Info("Publisher channel created",
		zap.String("component", "rabbitmq"),
	)

	return ch, nil
}

// Publish 以 JSON 持久化消息发送到默认交换机上的 queue
func Publish(ctx context.Context, queue, messageID string, body interface{}) error {
	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    messageID,
		Body:         bodyBytes,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
