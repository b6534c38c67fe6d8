package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AddressBook/internal/model/dto"
)

func openOptions(dir string, clock func() time.Time) OpenOptions {
	return OpenOptions{
		DataDir:            dir,
		ContactsFile:       "contacts.json",
		LegacyFile:         "contacts.txt",
		EnableBackups:      true,
		BackupKeep:         2,
		DefaultCountryCode: "+38",
		Clock:              clock,
	}
}

func TestOpen_PersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	clk := &testClock{t: time.Date(2024, 4, 28, 9, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	svc, err := Open(openOptions(dir, clk.Now))
	require.NoError(t, err)
	_, err = svc.Add(ctx, dto.CreateContactRequest{Name: "Bob", Phone: "050 123 45 67", Birthday: ptr("1990-05-01")})
	require.NoError(t, err)
	clk.Advance(time.Second)
	_, err = svc.SetNote(ctx, "Bob", "desk")
	require.NoError(t, err)
	before := svc.All(ctx)

	reopened, err := Open(openOptions(dir, clk.Now))
	require.NoError(t, err)
	assert.Equal(t, before, reopened.All(ctx))
	assert.Equal(t, "+38501234567", before[0].Phone)
	assert.False(t, reopened.CanUndo(), "history is not persisted")

	st := reopened.Stats(ctx)
	require.NotNil(t, st.LastModified)
	assert.Equal(t, clk.Now(), *st.LastModified)
}

func TestOpen_BackupRotation(t *testing.T) {
	dir := t.TempDir()
	clk := &testClock{t: time.Date(2024, 4, 28, 9, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	svc, err := Open(openOptions(dir, clk.Now))
	require.NoError(t, err)
	for i, name := range []string{"Ann", "Bob", "Cid", "Dan", "Eve"} {
		clk.Advance(time.Minute)
		phone := "+1555000123" + string(rune('0'+i))
		_, err := svc.Add(ctx, dto.CreateContactRequest{Name: name, Phone: phone})
		require.NoError(t, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "contacts.json.backup.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestOpen_MigratesLegacyText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.txt"),
		[]byte("Bob: +12345678901\nAnn,0501234567\n"), 0o644))

	svc, err := Open(openOptions(dir, nil))
	require.NoError(t, err)

	all := svc.All(context.Background())
	require.Len(t, all, 2)
	assert.Equal(t, "Ann", all[0].Name)
	assert.Equal(t, "+38501234567", all[0].Phone)

	_, err = os.Stat(filepath.Join(dir, "contacts.json"))
	assert.NoError(t, err)
}

func TestOpen_MalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.json"), []byte("{broken"), 0o644))

	svc, err := Open(openOptions(dir, nil))
	require.NoError(t, err)
	assert.Empty(t, svc.All(context.Background()))
}
