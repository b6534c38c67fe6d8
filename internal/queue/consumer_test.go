package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AddressBook/internal/cache"
	"AddressBook/internal/model/dto"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/storage/redis"
)

func reminderBody(t *testing.T, msg BirthdayReminderMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func sampleMessage() BirthdayReminderMessage {
	bday := "1990-05-01"
	return BirthdayReminderMessage{
		MessageID: "bday_1",
		Date:      "2024-04-28",
		Days:      7,
		Items: []dto.BirthdayItem{{
			ContactItem: dto.ContactItem{Name: "Dana", Phone: "+11111111111", Birthday: &bday, CreatedAt: time.Now()},
			DaysUntil:   3,
		}},
	}
}

func isSkip(err error) bool {
	var skip *pkgerrors.SkipMessageError
	return errors.As(err, &skip)
}

func TestReminderWriter_WritesCSVOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reminders")
	store := cache.NewMemoryStore()
	w := NewReminderWriter(dir, store, nil)
	ctx := context.Background()
	body := reminderBody(t, sampleMessage())

	require.NoError(t, w.Handle(ctx, body))

	data, err := os.ReadFile(w.Path("2024-04-28"))
	require.NoError(t, err)
	assert.Equal(t, "name,phone,birthday,days_until,notes\nDana,+11111111111,1990-05-01,3,\n", string(data))

	err = w.Handle(ctx, body)
	assert.True(t, isSkip(err), "duplicate delivery is acked without work")

	ok, err := store.SetNX(ctx, redis.Key("msg:processed", "bday_1"), 1, time.Hour).Result()
	require.NoError(t, err)
	assert.False(t, ok, "message stays marked after success")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReminderWriter_RejectsBadMessages(t *testing.T) {
	w := NewReminderWriter(t.TempDir(), cache.NewMemoryStore(), nil)
	ctx := context.Background()

	assert.True(t, isSkip(w.Handle(ctx, []byte("{not json"))))

	msg := sampleMessage()
	msg.Date = "../../etc/passwd"
	assert.True(t, isSkip(w.Handle(ctx, reminderBody(t, msg))))
}

func TestReminderWriter_UnmarksOnFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := cache.NewMemoryStore()
	w := NewReminderWriter(filepath.Join(blocker, "reminders"), store, nil)
	ctx := context.Background()

	err := w.Handle(ctx, reminderBody(t, sampleMessage()))
	require.Error(t, err)
	assert.False(t, isSkip(err))
	assert.Equal(t, pkgerrors.KindStorage, pkgerrors.KindOf(err))

	ok, err := cache.TryMarkMessageProcessing(ctx, store, "bday_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "failed message can be retried")
}

func TestReminderWriter_WithoutStore(t *testing.T) {
	w := NewReminderWriter(t.TempDir(), nil, nil)
	ctx := context.Background()
	body := reminderBody(t, sampleMessage())

	require.NoError(t, w.Handle(ctx, body))
	require.NoError(t, w.Handle(ctx, body))
}
