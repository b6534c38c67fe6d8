package console

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"AddressBook/internal/model"
	"AddressBook/internal/model/dto"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func dash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func renderContacts(items []dto.ContactItem) string {
	t := newTable("Name", "Phone", "Birthday", "Notes")
	for _, it := range items {
		t.Row(it.Name, it.Phone, dash(it.Birthday), dash(it.Notes))
	}
	return t.String()
}

func renderBirthdays(items []dto.BirthdayItem) string {
	t := newTable("Name", "Phone", "Birthday", "In days", "Notes")
	for _, it := range items {
		t.Row(it.Name, it.Phone, dash(it.Birthday), strconv.Itoa(it.DaysUntil), dash(it.Notes))
	}
	return t.String()
}

func renderStats(st model.Stats) string {
	last := "never"
	if st.LastModified != nil {
		last = st.LastModified.Format("2006-01-02 15:04:05 MST")
	}
	policy := "unique"
	if st.AllowDuplicatePhones {
		policy = "duplicates allowed"
	}

	return boxStyle.Render(fmt.Sprintf(
		"Contacts:      %d\nUnique phones: %d\nPhone policy:  %s\nLast modified: %s",
		st.Total, st.UniquePhones, policy, last,
	))
}
