package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"AddressBook/pkg/logger"
	"AddressBook/pkg/metrics"
	"AddressBook/pkg/snowflake"
	"AddressBook/storage/mq"
)

// PublishBirthdayReminder 发布生日提醒消息，MessageID 为空时生成一个
func PublishBirthdayReminder(ctx context.Context, msg BirthdayReminderMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextString()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("date", msg.Date),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = "bday_" + id
	}

	if err := mq.Publish(ctx, BirthdayReminderQueue, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish birthday reminder message",
			zap.String("message_id", msg.MessageID),
			zap.String("date", msg.Date),
			zap.Int("item_count", len(msg.Items)),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordReminderPublished(ctx, len(msg.Items))
	logger.Logger.Info("Published birthday reminder message",
		zap.String("message_id", msg.MessageID),
		zap.String("date", msg.Date),
		zap.Int("item_count", len(msg.Items)),
	)

	return nil
}
