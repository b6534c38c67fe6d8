package mq

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"AddressBook/config"
)

// ErrDisabled 没有配置 RABBITMQ_ADDR
var ErrDisabled = errors.New("rabbitmq is not configured")

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

// Init 建立 RabbitMQ 连接；未配置地址时返回 ErrDisabled
func Init() error {
	cfg := config.Cfg
	if !cfg.RabbitMQEnabled() {
		return ErrDisabled
	}

	connOnce.Do(func() {
		conn, connErr = amqp.Dial(cfg.GetRabbitMQURL())
	})

	return connErr
}

// Connection 未初始化时返回 nil
func Connection() *amqp.Connection {
	return conn
}

// DeclareQueue 声明持久化队列，生产者与消费者各自调用，顺序无关
func DeclareQueue(name string) error {
	if conn == nil {
		return ErrDisabled
	}

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

func Close(ctx context.Context) error {
	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Channel().Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- conn.Close() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
