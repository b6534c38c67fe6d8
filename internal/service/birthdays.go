package service

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"AddressBook/internal/model/dto"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/utils"
)

var birthdayHeader = []string{"name", "phone", "birthday", "days_until", "notes"}

// UpcomingBirthdays 未来 days 天内（含今天）过生日的联系人，按剩余天数排序，天数相同按姓名
func (s *ContactService) UpcomingBirthdays(ctx context.Context, days int) ([]dto.BirthdayItem, error) {
	if days < 0 {
		return nil, pkgerrors.With(pkgerrors.InvalidDays, "%d", days)
	}

	today := s.now()
	items := make([]dto.BirthdayItem, 0)
	for _, c := range s.All(ctx) {
		if c.Birthday == nil {
			continue
		}
		d, ok := utils.DaysUntilBirthday(*c.Birthday, today)
		if !ok || d > days {
			continue
		}
		items = append(items, dto.BirthdayItem{ContactItem: dto.NewContactItem(c), DaysUntil: d})
	}

	// All 已经按姓名排好，稳定排序保留这个顺序
	sort.SliceStable(items, func(i, j int) bool { return items[i].DaysUntil < items[j].DaysUntil })
	return items, nil
}

// ExportBirthdaysCSV 导出即将到来的生日
func (s *ContactService) ExportBirthdaysCSV(ctx context.Context, w io.Writer, days int) error {
	items, err := s.UpcomingBirthdays(ctx, days)
	if err != nil {
		return err
	}
	return WriteBirthdaysCSV(w, items)
}

// WriteBirthdaysCSV 提醒 worker 也用它写文件
func WriteBirthdaysCSV(w io.Writer, items []dto.BirthdayItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(birthdayHeader); err != nil {
		return err
	}
	for _, it := range items {
		birthday, notes := "", ""
		if it.Birthday != nil {
			birthday = *it.Birthday
		}
		if it.Notes != nil {
			notes = *it.Notes
		}
		if err := cw.Write([]string{it.Name, it.Phone, birthday, strconv.Itoa(it.DaysUntil), notes}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
