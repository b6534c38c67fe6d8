package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AddressBook/internal/service"
)

type recorder struct{ commands []string }

func (r *recorder) Record(_ context.Context, command string) {
	r.commands = append(r.commands, command)
}

func openService(t *testing.T, dir string) *service.ContactService {
	t.Helper()
	now := time.Date(2024, 4, 28, 9, 0, 0, 0, time.UTC)
	svc, err := service.Open(service.OpenOptions{
		DataDir:            dir,
		ContactsFile:       "contacts.json",
		DefaultCountryCode: "+38",
		Clock:              func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func newConsole(t *testing.T, input string) (*Console, *bytes.Buffer, *recorder, string) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	rec := &recorder{}
	return New(openService(t, dir), strings.NewReader(input), out, WithTelemetry(rec)), out, rec, dir
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		line    string
		command string
		args    []string
	}{
		{"", "", nil},
		{"   ", "", nil},
		{"ADD Bob 0501234567", "add", []string{"Bob", "0501234567"}},
		{`add "John Doe" "+38 050 123 45 67"`, "add", []string{"John Doe", "+38 050 123 45 67"}},
		{`setnote Bob 'call after 6'`, "setnote", []string{"Bob", "call after 6"}},
		{`add "John Doe 123`, "add", []string{`"John`, "Doe", "123"}},
	}

	for _, tt := range tests {
		command, args := parseInput(tt.line)
		assert.Equal(t, tt.command, command, tt.line)
		if tt.args == nil {
			assert.Empty(t, args, tt.line)
		} else {
			assert.Equal(t, tt.args, args, tt.line)
		}
	}
}

func TestExecute_ContactCommands(t *testing.T) {
	c, _, rec, _ := newConsole(t, "")
	ctx := context.Background()

	reply, quit := c.Execute(ctx, `add "John Doe" 050-123-45-67`)
	assert.Equal(t, "Contact added.", reply)
	assert.False(t, quit)

	reply, _ = c.Execute(ctx, "add Ann +38501234567")
	assert.Equal(t, "This phone is already used by another contact.", reply)

	reply, _ = c.Execute(ctx, `add "John Doe" +12345678901`)
	assert.Equal(t, "A contact with this name already exists.", reply)

	reply, _ = c.Execute(ctx, "add A +12345678901")
	assert.True(t, strings.HasPrefix(reply, "Invalid input:"), reply)

	reply, _ = c.Execute(ctx, "add Bob")
	assert.Equal(t, "Usage: add <name> <phone>", reply)

	reply, _ = c.Execute(ctx, `phone "John Doe"`)
	assert.Contains(t, reply, "+38501234567")

	reply, _ = c.Execute(ctx, "phone Nobody")
	assert.Equal(t, "Contact not found.", reply)

	reply, _ = c.Execute(ctx, `setbday "John Doe" 1990-05-01`)
	assert.Equal(t, "Birthday updated.", reply)
	reply, _ = c.Execute(ctx, `setnote "John Doe" likes tea`)
	assert.Equal(t, "Note updated.", reply)

	reply, _ = c.Execute(ctx, "birthdays 5")
	assert.Contains(t, reply, "John Doe")
	assert.Contains(t, reply, "likes tea")

	reply, _ = c.Execute(ctx, "birthdays soon")
	assert.True(t, strings.HasPrefix(reply, "Invalid input:"), reply)

	reply, _ = c.Execute(ctx, `rename "John Doe" John`)
	assert.Equal(t, "Renamed successfully.", reply)

	reply, _ = c.Execute(ctx, "search 501")
	assert.Contains(t, reply, "John")

	reply, _ = c.Execute(ctx, "search zzz")
	assert.Equal(t, "No matches found.", reply)

	reply, _ = c.Execute(ctx, "stats")
	assert.Contains(t, reply, "Contacts:      1")

	assert.Contains(t, rec.commands, "add")
	assert.Contains(t, rec.commands, "rename")
}

func TestExecute_PhoneSplitAcrossArgs(t *testing.T) {
	c, _, _, _ := newConsole(t, "")
	ctx := context.Background()

	reply, _ := c.Execute(ctx, "add Bob +1 (234) 567-8901")
	assert.Equal(t, "Contact added.", reply)
	reply, _ = c.Execute(ctx, "phone Bob")
	assert.Contains(t, reply, "+12345678901")

	reply, _ = c.Execute(ctx, "change Bob 050 123 45 67")
	assert.Equal(t, "Contact updated.", reply)
	reply, _ = c.Execute(ctx, "phone Bob")
	assert.Contains(t, reply, "+38501234567")
}

func TestExecute_UndoRedo(t *testing.T) {
	c, _, _, _ := newConsole(t, "")
	ctx := context.Background()

	reply, _ := c.Execute(ctx, "undo")
	assert.Equal(t, "Nothing to undo.", reply)

	c.Execute(ctx, "add Bob +12345678901")
	reply, _ = c.Execute(ctx, "undo")
	assert.Equal(t, "Undone: add", reply)

	reply, _ = c.Execute(ctx, "all")
	assert.Equal(t, noContacts, reply)

	reply, _ = c.Execute(ctx, "redo")
	assert.Equal(t, "Redone: add", reply)
	reply, _ = c.Execute(ctx, "redo")
	assert.Equal(t, "Nothing to redo.", reply)
}

func TestExecute_RemoveAsksForConfirmation(t *testing.T) {
	c, out, _, _ := newConsole(t, "no\nYES\n")
	ctx := context.Background()
	c.Execute(ctx, "add Bob +12345678901")

	reply, _ := c.Execute(ctx, "remove Bob")
	assert.Equal(t, "Removal canceled.", reply)
	assert.Contains(t, out.String(), "Type YES to remove Bob")

	reply, _ = c.Execute(ctx, "delete Bob")
	assert.Equal(t, "Contact removed.", reply)

	reply, _ = c.Execute(ctx, "remove Bob")
	assert.Equal(t, "Contact not found.", reply)
}

func TestExecute_ImportExport(t *testing.T) {
	c, _, _, dir := newConsole(t, "")
	ctx := context.Background()

	reply, _ := c.Execute(ctx, "export "+filepath.Join(dir, "out.csv"))
	assert.Equal(t, noContacts, reply)

	src := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(src, []byte("name,phone,birthday\nAnn,+11111111111,1990-04-30\nBob,,\n"), 0o644))

	reply, _ = c.Execute(ctx, "import "+src)
	assert.Equal(t, "Imported: 1 added, 1 skipped.", reply)

	reply, _ = c.Execute(ctx, "import "+filepath.Join(dir, "missing.csv"))
	assert.Equal(t, "File not found.", reply)

	dst := filepath.Join(dir, "out.csv")
	reply, _ = c.Execute(ctx, "export "+dst)
	assert.Equal(t, "Exported 1 contacts to "+dst, reply)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ann,+11111111111,1990-04-30")

	bdays := filepath.Join(dir, "bdays.csv")
	reply, _ = c.Execute(ctx, "birthdays_export "+bdays+" 3")
	assert.Equal(t, "Exported 1 upcoming birthdays to "+bdays, reply)
	data, err = os.ReadFile(bdays)
	require.NoError(t, err)
	assert.Equal(t, "name,phone,birthday,days_until,notes\nAnn,+11111111111,1990-04-30,2,\n", string(data))
}

func TestExecute_InvalidAndEmptyInput(t *testing.T) {
	c, _, rec, _ := newConsole(t, "")
	ctx := context.Background()

	reply, _ := c.Execute(ctx, "fly")
	assert.Equal(t, invalidCommand, reply)
	c.Execute(ctx, "fly")
	reply, _ = c.Execute(ctx, "fly")
	assert.Contains(t, reply, helpText, "help is shown after repeated mistakes")
	assert.Contains(t, rec.commands, "invalid:fly")

	c.Execute(ctx, "")
	c.Execute(ctx, "")
	reply, _ = c.Execute(ctx, "")
	assert.Contains(t, reply, helpText)

	reply, quit := c.Execute(ctx, "exit")
	assert.Equal(t, goodbye, reply)
	assert.True(t, quit)
}

func TestRun_PersistsAndExitsOnEOF(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	c := New(openService(t, dir), strings.NewReader("add Bob +12345678901\nhello\n"), out)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Contact added.")
	assert.Contains(t, out.String(), "How can I help you?")
	assert.Contains(t, out.String(), goodbye)

	reopened := openService(t, dir)
	phone, err := reopened.Get(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Equal(t, "+12345678901", phone)
}
