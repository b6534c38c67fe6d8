package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AddressBook/internal/cache"
	"AddressBook/internal/model/dto"
	"AddressBook/internal/queue"
)

type fakeSource struct {
	items []dto.BirthdayItem
	days  int
}

func (f *fakeSource) UpcomingBirthdays(_ context.Context, days int) ([]dto.BirthdayItem, error) {
	f.days = days
	return f.items, nil
}

type fakePublisher struct {
	sent []queue.BirthdayReminderMessage
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg queue.BirthdayReminderMessage) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

var fixedNow = time.Date(2024, 4, 28, 0, 5, 0, 0, time.UTC)

func newScheduler(src *fakeSource, pub *fakePublisher, store cache.Store) *BirthdayScheduler {
	s := NewBirthdayScheduler(
		func() (Source, error) { return src, nil },
		pub.Publish,
		store,
		7,
		WithClock(func() time.Time { return fixedNow }),
	)
	s.nextID = func() (string, error) { return "42", nil }
	return s
}

func TestRunOnce_PublishesOncePerDay(t *testing.T) {
	src := &fakeSource{items: []dto.BirthdayItem{{ContactItem: dto.ContactItem{Name: "Dana"}, DaysUntil: 3}}}
	pub := &fakePublisher{}
	store := cache.NewMemoryStore()
	ctx := context.Background()

	published, err := newScheduler(src, pub, store).RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, published)
	require.Len(t, pub.sent, 1)

	msg := pub.sent[0]
	assert.Equal(t, "bday_42", msg.MessageID)
	assert.Equal(t, "2024-04-28", msg.Date)
	assert.Equal(t, 7, msg.Days)
	assert.Equal(t, 7, src.days)
	assert.Equal(t, src.items, msg.Items)

	// 第二个实例共享同一个 store，同一天不再发布
	published, err = newScheduler(src, pub, store).RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, published)
	assert.Len(t, pub.sent, 1)
}

func TestRunOnce_DateFollowsUTC(t *testing.T) {
	pub := &fakePublisher{}
	s := newScheduler(&fakeSource{}, pub, cache.NewMemoryStore())
	// UTC 时间 2024-04-28 22:30，本地已经是 29 号
	local := time.FixedZone("UTC+2", 2*60*60)
	s.now = func() time.Time { return time.Date(2024, 4, 29, 0, 30, 0, 0, local) }

	published, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, published)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "2024-04-28", pub.sent[0].Date)
	assert.Equal(t, "2024-04-28T22:30:00Z", pub.sent[0].ScheduledAt)
}

func TestRunOnce_ReleasesLockOnFailure(t *testing.T) {
	src := &fakeSource{}
	pub := &fakePublisher{err: errors.New("broker down")}
	store := cache.NewMemoryStore()
	s := newScheduler(src, pub, store)
	ctx := context.Background()

	published, err := s.RunOnce(ctx)
	require.Error(t, err)
	assert.False(t, published)

	pub.err = nil
	published, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, published)
}

func TestRunOnce_OpenFailure(t *testing.T) {
	pub := &fakePublisher{}
	store := cache.NewMemoryStore()
	s := NewBirthdayScheduler(
		func() (Source, error) { return nil, errors.New("unreadable") },
		pub.Publish, store, 7,
		WithClock(func() time.Time { return fixedNow }),
	)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, pub.sent)

	locked, err := cache.TryLock(context.Background(), store, cache.ReminderLockKey("2024-04-28"), time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestNextRun(t *testing.T) {
	loc := time.UTC
	assert.Equal(t, time.Date(2024, 4, 28, 0, 5, 0, 0, loc), NextRun(time.Date(2024, 4, 28, 0, 1, 0, 0, loc)))
	assert.Equal(t, time.Date(2024, 4, 29, 0, 5, 0, 0, loc), NextRun(time.Date(2024, 4, 28, 0, 5, 0, 0, loc)))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 5, 0, 0, loc), NextRun(time.Date(2024, 4, 30, 23, 0, 0, 0, loc)))
}
