package console

import (
	"go.uber.org/zap"

	"AddressBook/pkg/errors"
)

const (
	goodbye        = "Good bye!"
	emptyInput     = "Please enter a command. Type 'help' to see what I can do."
	invalidCommand = "Invalid command. Type 'help' to see available commands."
	noContacts     = "No contacts yet."
)

const helpText = `Available commands:
  hello                              greeting
  add <name> <phone>                 add a contact
  change <name> <phone>              change a phone
  phone <name>                       show a contact
  all                                show all contacts
  remove|delete <name>               remove a contact (asks for YES)
  search <query>                     search by name or phone
  rename <old> <new>                 rename a contact
  stats                              address book statistics
  setbday <name> <YYYY-MM-DD>        set a birthday
  setnote <name> <note>              set a note
  clearnote <name>                   clear a note
  birthdays [days]                   upcoming birthdays (default 7 days)
  birthdays_export <file> [days]     export upcoming birthdays to CSV
  export <file>                      export contacts to CSV
  import <file>                      import contacts from CSV
  undo | redo                        undo or redo the last change
  close | exit                       quit
Use quotes for names with spaces: add "John Doe" +380501234567`

// errorText 按错误类别选择提示文案
func (c *Console) errorText(command string, err error) string {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return "Invalid input: " + err.Error()
	case errors.KindDuplicateName:
		return "A contact with this name already exists."
	case errors.KindDuplicatePhone:
		return "This phone is already used by another contact."
	case errors.KindNotFound:
		return "Contact not found."
	case errors.KindNothingToUndo:
		return "Nothing to undo."
	case errors.KindNothingToRedo:
		return "Nothing to redo."
	}

	c.log.Error("command failed", zap.String("command", command), zap.Error(err))
	return "An internal error occurred. Check logs."
}
