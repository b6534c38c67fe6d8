package console

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"AddressBook/internal/model"
	"AddressBook/internal/model/dto"
	pkgerrors "AddressBook/pkg/errors"
)

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, c *Console, args []string) (string, error)
}

const defaultBirthdayDays = 7

var commands map[string]command

func init() {
	remove := command{usage: "remove <name>", minArgs: 1, run: removeContact}

	commands = map[string]command{
		"hello":            {usage: "hello", run: sayHello},
		"help":             {usage: "help", run: showHelp},
		"add":              {usage: "add <name> <phone>", minArgs: 2, run: addContact},
		"change":           {usage: "change <name> <phone>", minArgs: 2, run: changeContact},
		"phone":            {usage: "phone <name>", minArgs: 1, run: showPhone},
		"all":              {usage: "all", run: showAll},
		"remove":           remove,
		"delete":           remove,
		"search":           {usage: "search <query>", minArgs: 1, run: searchContacts},
		"rename":           {usage: "rename <old> <new>", minArgs: 2, run: renameContact},
		"stats":            {usage: "stats", run: showStats},
		"export":           {usage: "export <file.csv>", minArgs: 1, run: exportContacts},
		"import":           {usage: "import <file.csv>", minArgs: 1, run: importContacts},
		"setbday":          {usage: "setbday <name> <YYYY-MM-DD>", minArgs: 2, run: setBirthday},
		"setnote":          {usage: "setnote <name> <note>", minArgs: 2, run: setNote},
		"clearnote":        {usage: "clearnote <name>", minArgs: 1, run: clearNote},
		"birthdays":        {usage: "birthdays [days]", run: listBirthdays},
		"birthdays_export": {usage: "birthdays_export <file.csv> [days]", minArgs: 1, run: exportBirthdays},
		"undo":             {usage: "undo", run: undo},
		"redo":             {usage: "redo", run: redo},
	}
}

func sayHello(context.Context, *Console, []string) (string, error) {
	return "How can I help you?", nil
}

func showHelp(context.Context, *Console, []string) (string, error) {
	return helpText, nil
}

func addContact(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.Add(ctx, dto.CreateContactRequest{Name: args[0], Phone: strings.Join(args[1:], " ")}); err != nil {
		return "", err
	}
	return "Contact added.", nil
}

func changeContact(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.Change(ctx, args[0], dto.UpdateContactRequest{Phone: strings.Join(args[1:], " ")}); err != nil {
		return "", err
	}
	return "Contact updated.", nil
}

func showPhone(ctx context.Context, c *Console, args []string) (string, error) {
	rec, err := c.svc.GetRecord(ctx, args[0])
	if err != nil {
		return "", err
	}
	return renderContacts(dto.NewContactItems([]model.Contact{rec})), nil
}

func showAll(ctx context.Context, c *Console, _ []string) (string, error) {
	all := c.svc.All(ctx)
	if len(all) == 0 {
		return noContacts, nil
	}
	return renderContacts(dto.NewContactItems(all)), nil
}

func removeContact(ctx context.Context, c *Console, args []string) (string, error) {
	name := args[0]
	if _, err := c.svc.GetRecord(ctx, name); err != nil {
		return "", err
	}

	if !c.confirm(fmt.Sprintf("Type YES to remove %s: ", name)) {
		return "Removal canceled.", nil
	}

	if _, err := c.svc.Remove(ctx, name); err != nil {
		return "", err
	}
	return "Contact removed.", nil
}

func searchContacts(ctx context.Context, c *Console, args []string) (string, error) {
	found, err := c.svc.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "No matches found.", nil
	}
	return renderContacts(dto.NewContactItems(found)), nil
}

func renameContact(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.Rename(ctx, args[0], args[1]); err != nil {
		return "", err
	}
	return "Renamed successfully.", nil
}

func showStats(ctx context.Context, c *Console, _ []string) (string, error) {
	return renderStats(c.svc.Stats(ctx)), nil
}

func setBirthday(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.SetBirthday(ctx, args[0], args[1]); err != nil {
		return "", err
	}
	return "Birthday updated.", nil
}

func setNote(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.SetNote(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return "", err
	}
	return "Note updated.", nil
}

func clearNote(ctx context.Context, c *Console, args []string) (string, error) {
	if _, err := c.svc.ClearNote(ctx, args[0]); err != nil {
		return "", err
	}
	return "Note cleared.", nil
}

func parseDays(args []string, at int) (int, error) {
	if len(args) <= at {
		return defaultBirthdayDays, nil
	}
	n, err := strconv.Atoi(args[at])
	if err != nil {
		return 0, pkgerrors.With(pkgerrors.InvalidDays, "%q", args[at])
	}
	return n, nil
}

func listBirthdays(ctx context.Context, c *Console, args []string) (string, error) {
	days, err := parseDays(args, 0)
	if err != nil {
		return "", err
	}

	items, err := c.svc.UpcomingBirthdays(ctx, days)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "No upcoming birthdays.", nil
	}
	return renderBirthdays(items), nil
}

func exportBirthdays(ctx context.Context, c *Console, args []string) (string, error) {
	days, err := parseDays(args, 1)
	if err != nil {
		return "", err
	}

	items, err := c.svc.UpcomingBirthdays(ctx, days)
	if err != nil {
		return "", err
	}

	if err := writeFile(args[0], func(f *os.File) error { return c.svc.ExportBirthdaysCSV(ctx, f, days) }); err != nil {
		return "", err
	}
	return fmt.Sprintf("Exported %d upcoming birthdays to %s", len(items), args[0]), nil
}

func exportContacts(ctx context.Context, c *Console, args []string) (string, error) {
	n := len(c.svc.All(ctx))
	if n == 0 {
		return noContacts, nil
	}

	if err := writeFile(args[0], func(f *os.File) error { return c.svc.ExportCSV(ctx, f) }); err != nil {
		return "", err
	}
	return fmt.Sprintf("Exported %d contacts to %s", n, args[0]), nil
}

func importContacts(ctx context.Context, c *Console, args []string) (string, error) {
	f, err := os.Open(args[0])
	if errors.Is(err, fs.ErrNotExist) {
		return "File not found.", nil
	}
	if err != nil {
		return "", pkgerrors.Storage("open", args[0], err)
	}
	defer f.Close()

	res, err := c.svc.ImportCSV(ctx, f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Imported: %d added, %d skipped.", res.Added, res.Skipped), nil
}

func undo(ctx context.Context, c *Console, _ []string) (string, error) {
	entry, err := c.svc.Undo(ctx)
	if err != nil {
		return "", err
	}
	return "Undone: " + entry.Op(), nil
}

func redo(ctx context.Context, c *Console, _ []string) (string, error) {
	entry, err := c.svc.Redo(ctx)
	if err != nil {
		return "", err
	}
	return "Redone: " + entry.Op(), nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Storage("create", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return pkgerrors.Storage("write", path, err)
	}
	if err := f.Close(); err != nil {
		return pkgerrors.Storage("close", path, err)
	}
	return nil
}
