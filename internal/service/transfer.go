package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"AddressBook/internal/history"
	"AddressBook/internal/model/dto"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/metrics"
	"AddressBook/utils"
)

var (
	exportHeader    = []string{"name", "phone", "birthday", "notes", "created_at", "updated_at"}
	requiredColumns = []string{"name", "phone"}
)

// ImportRows 批量导入
//
// 不合法或重复的行计入 Skipped，不会中断导入；只要新增了至少一条，
// 就只记录一个 BulkAdded，一次撤销即可删除本次导入的全部联系人。
func (s *ContactService) ImportRows(ctx context.Context, rows []dto.ImportRow) dto.ImportResult {
	var (
		result dto.ImportResult
		names  []string
	)

	for i, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			result.Skipped++
			s.log.Debug("import row skipped", zap.Int("row", i+1), zap.Error(err))
			continue
		}

		birthday, notes := row.Birthday, row.Notes
		c, err := s.book.Add(row.Name, row.Phone, &birthday, &notes)
		if err != nil {
			result.Skipped++
			s.log.Debug("import row skipped", zap.Int("row", i+1),
				zap.String("kind", string(pkgerrors.KindOf(err))), zap.Error(err))
			continue
		}
		names = append(names, c.Name)
		result.Added++
	}

	metrics.RecordImportRows(ctx, result.Added, result.Skipped)
	if len(names) > 0 {
		s.commit(ctx, history.BulkAdded{Names: names})
	}

	s.log.Info("contacts imported", zap.Int("added", result.Added), zap.Int("skipped", result.Skipped))
	return result
}

// ImportCSV 读取带表头的 CSV，至少要有 name 和 phone 两列，列顺序不限
func (s *ContactService) ImportCSV(ctx context.Context, r io.Reader) (dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportResult{}, pkgerrors.With(pkgerrors.InvalidCSV, "empty input")
		}
		return dto.ImportResult{}, pkgerrors.With(pkgerrors.InvalidCSV, "%v", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return dto.ImportResult{}, pkgerrors.With(pkgerrors.InvalidCSV, "missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []dto.ImportRow
	malformed := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return dto.ImportResult{}, pkgerrors.Storage("read", "csv", err)
		}
		rows = append(rows, dto.ImportRow{
			Name:     field(record, "name"),
			Phone:    field(record, "phone"),
			Birthday: field(record, "birthday"),
			Notes:    field(record, "notes"),
		})
	}

	result := s.ImportRows(ctx, rows)
	result.Skipped += malformed
	return result, nil
}

// ExportCSV 按姓名顺序导出全部联系人
func (s *ContactService) ExportCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, c := range s.All(ctx) {
		if err := cw.Write([]string{
			c.Name,
			c.Phone,
			c.BirthdayValue(),
			c.NotesValue(),
			c.CreatedAt.UTC().Format(utils.TimestampLayout),
			c.UpdatedAt.UTC().Format(utils.TimestampLayout),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
