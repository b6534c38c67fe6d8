package schedule

// 生日提醒调度器：每天把未来几天的生日整理成一条消息投递给 worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"AddressBook/internal/cache"
	"AddressBook/internal/model/dto"
	"AddressBook/internal/queue"
	"AddressBook/pkg/snowflake"
	"AddressBook/utils"
)

const lockTTL = 25 * time.Hour

// Source 提供即将到来的生日，*service.ContactService 即满足
type Source interface {
	UpcomingBirthdays(ctx context.Context, days int) ([]dto.BirthdayItem, error)
}

// OpenFunc 每次运行重新打开通讯录，拿到其他进程写入的最新内容
type OpenFunc func() (Source, error)

type PublishFunc func(ctx context.Context, msg queue.BirthdayReminderMessage) error

type BirthdayScheduler struct {
	open    OpenFunc
	publish PublishFunc
	store   cache.Store
	days    int
	logger  *zap.Logger
	now     func() time.Time
	nextID  func() (string, error)

	mu      sync.Mutex
	running bool
}

type Option func(*BirthdayScheduler)

func WithLogger(l *zap.Logger) Option {
	return func(s *BirthdayScheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BirthdayScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBirthdayScheduler(open OpenFunc, publish PublishFunc, store cache.Store, days int, opts ...Option) *BirthdayScheduler {
	s := &BirthdayScheduler{
		open:    open,
		publish: publish,
		store:   store,
		days:    days,
		logger:  zap.NewNop(),
		now:     utils.Now,
		nextID:  snowflake.NextString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce 调度当天的提醒；同一天已经调度过（或另一个实例正在调度）时直接返回
// 返回是否发布了消息
func (s *BirthdayScheduler) RunOnce(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("Birthday reminder job already running, skipping")
		return false, nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// 与 UpcomingBirthdays 一样按 UTC 日期计算
	now := s.now().UTC()
	date := now.Format(utils.BirthdayLayout)
	lockKey := cache.ReminderLockKey(date)

	locked, err := cache.TryLock(ctx, s.store, lockKey, lockTTL)
	if err != nil {
		return false, fmt.Errorf("failed to acquire reminder lock: %w", err)
	}
	if !locked {
		s.logger.Info("Birthday reminders already scheduled for date", zap.String("date", date))
		return false, nil
	}

	// 失败时释放锁，下一轮可以重试
	published := false
	defer func() {
		if published {
			return
		}
		if err := cache.Unlock(context.WithoutCancel(ctx), s.store, lockKey); err != nil {
			s.logger.Warn("Failed to release reminder lock", zap.String("date", date), zap.Error(err))
		}
	}()

	src, err := s.open()
	if err != nil {
		return false, fmt.Errorf("failed to open address book: %w", err)
	}

	items, err := src.UpcomingBirthdays(ctx, s.days)
	if err != nil {
		return false, err
	}

	id, err := s.nextID()
	if err != nil {
		return false, fmt.Errorf("failed to generate message ID: %w", err)
	}

	msg := queue.BirthdayReminderMessage{
		MessageID:   "bday_" + id,
		Date:        date,
		ScheduledAt: now.Format(time.RFC3339),
		Days:        s.days,
		Items:       items,
	}
	if err := s.publish(ctx, msg); err != nil {
		return false, err
	}
	published = true

	s.logger.Info("Scheduled birthday reminders",
		zap.String("date", date),
		zap.String("message_id", msg.MessageID),
		zap.Int("item_count", len(items)),
	)
	return true, nil
}

// NextRun 下一次 00:05（now 所在时区）
func NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run 阻塞运行到 ctx 取消；interval > 0 时按固定间隔运行（开发环境），否则每天 00:05 运行一次
func (s *BirthdayScheduler) Run(ctx context.Context, interval time.Duration) {
	for {
		delay := interval
		if delay <= 0 {
			now := s.now()
			next := NextRun(now)
			delay = next.Sub(now)
			s.logger.Info("Scheduled next birthday reminder run",
				zap.Time("next_run", next),
				zap.Duration("delay", delay),
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if _, err := s.RunOnce(runCtx); err != nil {
				s.logger.Error("Birthday reminder run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
