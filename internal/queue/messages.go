package queue

import "AddressBook/internal/model/dto"

// BirthdayReminderQueue 生日提醒队列，默认 exchange 直接按队列名路由
const BirthdayReminderQueue = "addressbook.birthday.reminder"

// BirthdayReminderMessage 某一天的生日提醒批次
type BirthdayReminderMessage struct {
	MessageID   string             `json:"message_id"`
	Date        string             `json:"date"` // YYYY-MM-DD
	ScheduledAt string             `json:"scheduled_at"`
	Days        int                `json:"days"`
	Items       []dto.BirthdayItem `json:"items"`
}
