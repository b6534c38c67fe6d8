package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"AddressBook/internal/cache"
	"AddressBook/internal/service"
	"AddressBook/pkg/errors"
	"AddressBook/pkg/metrics"
	"AddressBook/storage/mq"
)

const (
	processingTTL = 24 * time.Hour
	processedTTL  = 48 * time.Hour
)

// ReminderWriter 把生日提醒消息写成 <Dir>/birthdays_<date>.csv
type ReminderWriter struct {
	Dir   string
	Store cache.Store
	Log   *zap.Logger
}

func NewReminderWriter(dir string, store cache.Store, log *zap.Logger) *ReminderWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderWriter{Dir: dir, Store: store, Log: log}
}

// Path 某天提醒文件的位置
func (w *ReminderWriter) Path(date string) string {
	return filepath.Join(w.Dir, "birthdays_"+date+".csv")
}

// Handle 处理一条消息；重复消息和无法解析的消息返回 SkipMessageError，直接 ack
func (w *ReminderWriter) Handle(ctx context.Context, body []byte) error {
	var msg BirthdayReminderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("malformed birthday reminder: %v", err)}
	}
	if _, err := time.Parse("2006-01-02", msg.Date); err != nil {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("invalid reminder date %q", msg.Date)}
	}

	// 标记失败时照常处理，最坏情况是同一个文件被重写一次
	marked := false
	if msg.MessageID != "" && w.Store != nil {
		ok, err := cache.TryMarkMessageProcessing(ctx, w.Store, msg.MessageID, processingTTL)
		if err != nil {
			w.Log.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !ok {
			w.Log.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("date", msg.Date),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		} else {
			marked = true
		}
	}

	path := w.Path(msg.Date)
	if err := w.write(path, msg); err != nil {
		metrics.RecordReminderExported(ctx, "failed")
		if marked {
			_ = cache.UnmarkMessageProcessing(ctx, w.Store, msg.MessageID)
		}
		return err
	}

	metrics.RecordReminderExported(ctx, "success")
	w.Log.Info("Birthday reminder exported",
		zap.String("message_id", msg.MessageID),
		zap.String("path", path),
		zap.Int("item_count", len(msg.Items)),
	)

	if marked {
		if err := cache.MarkMessageProcessed(ctx, w.Store, msg.MessageID, processedTTL); err != nil {
			w.Log.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// write 先写临时文件再改名，读者不会看到写了一半的 CSV
func (w *ReminderWriter) write(path string, msg BirthdayReminderMessage) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Storage("mkdir", w.Dir, err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".birthdays-*.tmp")
	if err != nil {
		return errors.Storage("create", w.Dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := service.WriteBirthdaysCSV(tmp, msg.Items); err != nil {
		_ = tmp.Close()
		return errors.Storage("write", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Storage("close", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Storage("rename", path, err)
	}
	return nil
}

// StartBirthdayReminderConsumer 阻塞消费生日提醒，直到 ctx 取消
func StartBirthdayReminderConsumer(ctx context.Context, w *ReminderWriter) error {
	if err := mq.DeclareQueue(BirthdayReminderQueue); err != nil {
		return err
	}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         BirthdayReminderQueue,
		ConsumerTag:   "birthday_reminder_consumer",
		PrefetchCount: 1,
		Handler:       w.Handle,
	})
}
