package jsonfile

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"go.uber.org/zap"

	"AddressBook/internal/model"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/utils"
)

// MigrateLegacy 把旧版纯文本通讯录（每行 "name: phone" 或 "name,phone"）转成 JSON
//
// 只在 JSON 文件不存在、旧文件存在时执行一次；写入前会给旧文件做一次备份。
// 无法解析、姓名或号码不合法、重名的行会被跳过。返回是否执行了迁移。
func (s *Store) MigrateLegacy() (bool, error) {
	if s.legacyPath == "" {
		return false, nil
	}
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	}

	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, pkgerrors.Storage("read", s.legacyPath, err)
	}

	contacts, skipped, err := s.parseLegacy(data)
	if err != nil {
		return false, pkgerrors.Storage("read", s.legacyPath, err)
	}

	existing, err := listBackups(s.legacyPath)
	if err != nil || len(existing) == 0 {
		if name, err := s.copyToBackup(s.legacyPath); err != nil {
			s.log.Warn("legacy backup failed", zap.String("path", s.legacyPath), zap.Error(err))
		} else {
			s.log.Info("legacy file backed up", zap.String("backup", name))
		}
	}

	now := s.now()
	if err := s.Save(contacts, &now); err != nil {
		return false, err
	}

	s.log.Info("legacy contacts migrated",
		zap.String("from", s.legacyPath),
		zap.String("to", s.path),
		zap.Int("migrated", len(contacts)),
		zap.Int("skipped", skipped),
	)
	return true, nil
}

func (s *Store) parseLegacy(data []byte) ([]model.Contact, int, error) {
	now := s.now()
	seen := make(map[string]struct{})
	var contacts []model.Contact
	skipped := 0

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		rawName, rawPhone, ok := splitLegacyLine(line)
		if !ok {
			skipped++
			continue
		}
		name, err := utils.ValidateName(rawName)
		if err != nil {
			skipped++
			continue
		}
		phone, err := utils.NormalizePhone(rawPhone, s.defaultCountryCode)
		if err != nil {
			skipped++
			continue
		}
		if _, dup := seen[name]; dup {
			skipped++
			continue
		}
		seen[name] = struct{}{}

		contacts = append(contacts, model.Contact{Name: name, Phone: phone, CreatedAt: now, UpdatedAt: now})
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return contacts, skipped, nil
}

// splitLegacyLine ":" 优先于 ","
func splitLegacyLine(line string) (string, string, bool) {
	for _, sep := range []string{":", ","} {
		if name, phone, found := strings.Cut(line, sep); found {
			return strings.TrimSpace(name), strings.TrimSpace(phone), true
		}
	}
	return "", "", false
}
