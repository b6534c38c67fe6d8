package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 通讯录相关指标
	MutationsTotal    metric.Int64Counter
	HistoryTotal      metric.Int64Counter
	SaveDuration      metric.Float64Histogram
	SaveFailuresTotal metric.Int64Counter
	ImportRowsTotal   metric.Int64Counter
	BackupsTotal      metric.Int64Counter

	// 提醒相关指标
	RemindersPublishedTotal metric.Int64Counter
	RemindersExportedTotal  metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("addressbook")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m := &OTelMetrics{}
	var err error

	m.MutationsTotal, err = meter.Int64Counter(
		"contacts_mutations_total",
		metric.WithDescription("Total number of address book mutations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	m.HistoryTotal, err = meter.Int64Counter(
		"contacts_history_total",
		metric.WithDescription("Total number of undo/redo calls"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	m.SaveDuration, err = meter.Float64Histogram(
		"contacts_save_duration_seconds",
		metric.WithDescription("Time spent writing the contacts file in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.SaveFailuresTotal, err = meter.Int64Counter(
		"contacts_save_failures_total",
		metric.WithDescription("Total number of failed contacts file writes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	m.ImportRowsTotal, err = meter.Int64Counter(
		"contacts_import_rows_total",
		metric.WithDescription("Total number of imported rows by result"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	m.BackupsTotal, err = meter.Int64Counter(
		"contacts_backups_total",
		metric.WithDescription("Total number of backup attempts"),
		metric.WithUnit("{backup}"),
	)
	if err != nil {
		return err
	}

	m.RemindersPublishedTotal, err = meter.Int64Counter(
		"reminders_published_total",
		metric.WithDescription("Total number of birthday reminder messages published"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	m.RemindersExportedTotal, err = meter.Int64Counter(
		"reminders_exported_total",
		metric.WithDescription("Total number of birthday reminder files written"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例，未初始化时为 nil
func GetMetrics() *OTelMetrics {
	return metrics
}

func (m *OTelMetrics) RecordMutation(ctx context.Context, op, status string) {
	m.MutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
}

func (m *OTelMetrics) RecordHistory(ctx context.Context, direction, status string) {
	m.HistoryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("status", status),
	))
}

// RecordSave 记录一次写盘
func (m *OTelMetrics) RecordSave(ctx context.Context, duration float64, failed bool) {
	status := "success"
	if failed {
		status = "failed"
		m.SaveFailuresTotal.Add(ctx, 1)
	}
	m.SaveDuration.Record(ctx, duration, metric.WithAttributes(attribute.String("status", status)))
}

func (m *OTelMetrics) RecordImportRows(ctx context.Context, added, skipped int) {
	m.ImportRowsTotal.Add(ctx, int64(added), metric.WithAttributes(attribute.String("result", "added")))
	m.ImportRowsTotal.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("result", "skipped")))
}

func (m *OTelMetrics) RecordBackup(ctx context.Context, status string) {
	m.BackupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *OTelMetrics) RecordReminderPublished(ctx context.Context, items int) {
	m.RemindersPublishedTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("items", items)))
}

func (m *OTelMetrics) RecordReminderExported(ctx context.Context, status string) {
	m.RemindersExportedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
