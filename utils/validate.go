package utils

import (
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "AddressBook/pkg/errors"
)

const (
	minNameLength  = 2
	minPhoneDigits = 7
	maxPhoneDigits = 15

	// BirthdayLayout 生日的存储格式 YYYY-MM-DD
	BirthdayLayout = "2006-01-02"
)

// ValidateName 去掉首尾空白，长度至少为 2
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < minNameLength {
		return "", pkgerrors.With(pkgerrors.InvalidName, "%q is too short", name)
	}
	return name, nil
}

// NormalizePhone 把号码规范成 "+" 加 7~15 位数字
//
// 只允许 "+" 出现在首位；"00" 开头视为国际前缀；没有 "+" 且以 0 开头时，
// 如果给了默认国家码，则去掉这个 0 并补上国家码。对已经规范的号码再次调用结果不变。
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", pkgerrors.With(pkgerrors.InvalidPhone, "empty phone")
	}

	if strings.LastIndex(s, "+") > 0 {
		return "", pkgerrors.With(pkgerrors.InvalidPhone, "'+' is only allowed as the first character")
	}

	hasPlus := strings.HasPrefix(s, "+")
	digits := onlyDigits(s)

	var normalized string
	switch {
	case hasPlus:
		normalized = "+" + digits
	case strings.HasPrefix(digits, "00"):
		normalized = "+" + digits[2:]
	case strings.HasPrefix(digits, "0") && defaultCountryCode != "":
		cc := NormalizeCountryCode(defaultCountryCode)
		normalized = cc + digits[1:]
	default:
		normalized = "+" + digits
	}

	n := len(normalized) - 1
	if n < minPhoneDigits || n > maxPhoneDigits {
		return "", pkgerrors.With(pkgerrors.InvalidPhone, "%d digits, want %d-%d", n, minPhoneDigits, maxPhoneDigits)
	}
	return normalized, nil
}

// NormalizeCountryCode "38" / "+38" / " +38 " -> "+38"，空串保持为空
func NormalizeCountryCode(cc string) string {
	digits := onlyDigits(cc)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// ValidateBirthday 校验 YYYY-MM-DD 格式的日期
func ValidateBirthday(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if _, err := time.Parse(BirthdayLayout, s); err != nil {
		return "", pkgerrors.With(pkgerrors.InvalidBirthday, "%q", s)
	}
	return s, nil
}

func onlyDigits(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
