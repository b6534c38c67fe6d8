package metrics

import (
	"context"
)

// 下面的函数在 InitMetrics 之前调用是安全的，什么都不做

// RecordMutation 记录一次增删改，status 为 success / failed
func RecordMutation(ctx context.Context, op, status string) {
	if m := GetMetrics(); m != nil {
		m.RecordMutation(ctx, op, status)
	}
}

// RecordHistory 记录撤销/重做，direction 为 undo / redo
func RecordHistory(ctx context.Context, direction, status string) {
	if m := GetMetrics(); m != nil {
		m.RecordHistory(ctx, direction, status)
	}
}

// RecordSave 记录写盘耗时（秒）
func RecordSave(ctx context.Context, duration float64, failed bool) {
	if m := GetMetrics(); m != nil {
		m.RecordSave(ctx, duration, failed)
	}
}

func RecordImportRows(ctx context.Context, added, skipped int) {
	if m := GetMetrics(); m != nil {
		m.RecordImportRows(ctx, added, skipped)
	}
}

// RecordBackup 备份结果，status 为 success / failed / rotated
func RecordBackup(status string) {
	if m := GetMetrics(); m != nil {
		m.RecordBackup(context.Background(), status)
	}
}

func RecordReminderPublished(ctx context.Context, items int) {
	if m := GetMetrics(); m != nil {
		m.RecordReminderPublished(ctx, items)
	}
}

func RecordReminderExported(ctx context.Context, status string) {
	if m := GetMetrics(); m != nil {
		m.RecordReminderExported(ctx, status)
	}
}
