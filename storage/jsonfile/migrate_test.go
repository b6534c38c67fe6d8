package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "AddressBook/pkg/errors"
)

func writeLegacy(t *testing.T, dir, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := filepath.Join(dir, "contacts.txt")
	require.NoError(t, os.WriteFile(legacy, []byte(body), 0o644))
	return legacy
}

func TestMigrateLegacy(t *testing.T) {
	dir := t.TempDir()
	legacy := writeLegacy(t, dir, "Bob: +1 234 567 8901\n\nAnn,050 123 45 67\nbroken line\nX: +12345678901\nBob: +19999999999\nCid: 12\n")
	path := filepath.Join(dir, "contacts.json")
	s := New(path,
		WithLegacyPath(legacy),
		WithDefaultCountryCode("+38"),
		WithClock(func() time.Time { return fixedNow }),
	)

	migrated, err := s.MigrateLegacy()
	require.NoError(t, err)
	assert.True(t, migrated)

	contacts, last, err := s.Load()
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ann", contacts[0].Name)
	assert.Equal(t, "+38501234567", contacts[0].Phone)
	assert.Equal(t, "Bob", contacts[1].Name)
	assert.Equal(t, "+12345678901", contacts[1].Phone)
	require.NotNil(t, last)
	assert.Equal(t, fixedNow, *last)

	names := backupNames(t, legacy)
	require.Len(t, names, 1)
	assert.Equal(t, "contacts.txt.backup.20240428T100000", names[0])

	_, err = os.Stat(legacy)
	assert.NoError(t, err, "legacy file is kept")
}

func TestMigrateLegacy_OverlongLineAborts(t *testing.T) {
	dir := t.TempDir()
	body := "Bob: +12345678901\nAnn: " + strings.Repeat("1", 70*1024) + "\nCid: +19876543210\n"
	legacy := writeLegacy(t, dir, body)
	path := filepath.Join(dir, "contacts.json")
	s := New(path, WithLegacyPath(legacy), WithClock(func() time.Time { return fixedNow }))

	migrated, err := s.MigrateLegacy()
	require.Error(t, err)
	assert.False(t, migrated)
	assert.Equal(t, pkgerrors.KindStorage, pkgerrors.KindOf(err))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "a partial migration is not written")
	assert.Empty(t, backupNames(t, legacy))
}

func TestMigrateLegacy_NoopWhenCurrentExists(t *testing.T) {
	dir := t.TempDir()
	legacy := writeLegacy(t, dir, "Bob: +12345678901\n")
	path := filepath.Join(dir, "contacts.json")
	s := New(path, WithLegacyPath(legacy), WithClock(func() time.Time { return fixedNow }))

	require.NoError(t, s.Save(nil, nil))

	migrated, err := s.MigrateLegacy()
	require.NoError(t, err)
	assert.False(t, migrated)

	contacts, _, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.Empty(t, backupNames(t, legacy))
}

func TestMigrateLegacy_NoLegacyFile(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "contacts.json"), WithLegacyPath(filepath.Join(dir, "contacts.txt")))

	migrated, err := s.MigrateLegacy()
	require.NoError(t, err)
	assert.False(t, migrated)

	_, err = os.Stat(filepath.Join(dir, "contacts.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestMigrateLegacy_BacksUpLegacyOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	legacy := writeLegacy(t, dir, "Bob: +12345678901\n")
	path := filepath.Join(dir, "contacts.json")
	s := New(path, WithLegacyPath(legacy), WithClock(func() time.Time { return fixedNow }))

	migrated, err := s.MigrateLegacy()
	require.NoError(t, err)
	require.True(t, migrated)

	// JSON 被删除后再次迁移，不再重复备份旧文件
	require.NoError(t, os.Remove(path))
	migrated, err = s.MigrateLegacy()
	require.NoError(t, err)
	require.True(t, migrated)

	assert.Len(t, backupNames(t, legacy), 1)
}

func TestSplitLegacyLine(t *testing.T) {
	name, phone, ok := splitLegacyLine("Bob : +1 234")
	require.True(t, ok)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "+1 234", phone)

	name, phone, ok = splitLegacyLine("Ann,0501234567")
	require.True(t, ok)
	assert.Equal(t, "Ann", name)
	assert.Equal(t, "0501234567", phone)

	_, _, ok = splitLegacyLine("nothing here")
	assert.False(t, ok)
}
