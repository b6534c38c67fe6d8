package mq

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	// RabbitMQ 相关指标
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
	mqPublishErrors   metric.Int64Counter
	mqConsumeErrors   metric.Int64Counter

	metricsOnce sync.Once
)

// InitMQMetrics 初始化 RabbitMQ 指标
func InitMQMetrics(meter metric.Meter) error {
	var err error

	mqMessagesTotal, err = meter.Int64Counter(
		"mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	mqMessageDuration, err = meter.Float64Histogram(
		"mq.message.duration",
		metric.WithDescription("RabbitMQ message processing duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	mqPublishErrors, err = meter.Int64Counter(
		"mq.publish.errors",
		metric.WithDescription("Number of RabbitMQ publish errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mqConsumeErrors, err = meter.Int64Counter(
		"mq.consume.errors",
		metric.WithDescription("Number of RabbitMQ consume errors"),
		metric.WithUnit("{error}"),
	)
	return err
}

func ensureMetrics(serviceName string) {
	metricsOnce.Do(func() {
		if err := InitMQMetrics(otel.Meter(serviceName + ".rabbitmq")); err != nil {
			otel.Handle(err)
		}
	})
}

// InstrumentedChannel 包装 amqp.Channel 以添加 OpenTelemetry 支持
type InstrumentedChannel struct {
	ch          *amqp.Channel
	serviceName string
	propagators propagation.TextMapPropagator
	tracer      trace.Tracer
}

// NewInstrumentedChannel 创建带有 OpenTelemetry 支持的 Channel
func NewInstrumentedChannel(ch *amqp.Channel, serviceName string) *InstrumentedChannel {
	ensureMetrics(serviceName)
	return &InstrumentedChannel{
		ch:          ch,
		serviceName: serviceName,
		propagators: otel.GetTextMapPropagator(),
		tracer:      otel.Tracer(serviceName + ".rabbitmq"),
	}
}

// PublishWithContext 发布消息并把追踪上下文注入消息头
func (ic *InstrumentedChannel) PublishWithContext(
	ctx context.Context,
	exchange, routingKey string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	startTime := time.Now()

	spanName := "rabbitmq.publish"
	if routingKey != "" {
		spanName = "rabbitmq.publish." + routingKey
	}

	ctx, span := ic.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.rabbitmq.exchange", exchange),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
			semconv.MessagingMessageID(msg.MessageId),
		))
	defer span.End()

	msg.Headers = InjectHeaders(ctx, msg.Headers)

	err := ic.ch.PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, msg)
	duration := time.Since(startTime).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		if mqPublishErrors != nil {
			mqPublishErrors.Add(ctx, 1)
		}
	}

	recordMessage(ctx, "publish", routingKey, status, duration)
	return err
}

// Consume 注册消费者；每条消息的处理 span 由 StartProcessSpan 创建
func (ic *InstrumentedChannel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	msgs, err := ic.ch.Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
	if err != nil && mqConsumeErrors != nil {
		mqConsumeErrors.Add(context.Background(), 1)
	}
	return msgs, err
}

// StartProcessSpan 从消息头恢复追踪上下文并开启处理 span
func (ic *InstrumentedChannel) StartProcessSpan(ctx context.Context, msg amqp.Delivery) (context.Context, trace.Span) {
	ctx = ic.propagators.Extract(ctx, &MessageHeaderCarrier{Headers: msg.Headers})
	return ic.tracer.Start(ctx, "rabbitmq.process."+msg.RoutingKey,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingRabbitmqDestinationRoutingKey(msg.RoutingKey),
			semconv.MessagingMessageID(msg.MessageId),
		))
}

// RecordProcessed 记录一条消息的处理结果
func RecordProcessed(ctx context.Context, queue, status string, started time.Time) {
	if status == "error" && mqConsumeErrors != nil {
		mqConsumeErrors.Add(ctx, 1)
	}
	recordMessage(ctx, "process", queue, status, time.Since(started).Seconds())
}

func recordMessage(ctx context.Context, operation, routingKey, status string, seconds float64) {
	if mqMessagesTotal == nil {
		return
	}

	labels := metric.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)
	mqMessagesTotal.Add(ctx, 1, labels)
	mqMessageDuration.Record(ctx, seconds, labels)
}

// Channel 返回原始的 amqp.Channel
func (ic *InstrumentedChannel) Channel() *amqp.Channel {
	return ic.ch
}

// InjectHeaders 复制 headers 并写入当前追踪上下文
func InjectHeaders(ctx context.Context, headers amqp.Table) amqp.Table {
	out := make(amqp.Table, len(headers)+2)
	for k, v := range headers {
		out[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, &MessageHeaderCarrier{Headers: out})
	return out
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier 接口
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if val, ok := m.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}
