package utils

import (
	"time"
)

// TimestampLayout 持久化使用的时间格式（UTC，精确到秒）
const TimestampLayout = time.RFC3339

// Now 返回截断到秒的 UTC 当前时间，保证写盘后再读回来完全一致
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// ParseTimestamp 解析 ISO-8601 时间，兼容带小数秒和 +00:00 偏移的写法
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

// DateOf 取某个时间在其时区下的日期（零点）
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntilBirthday 计算从 today 起下一次生日还有几天
//
// 今年的生日已经过去则取明年；2 月 29 日在平年按 2 月 28 日计算。
func DaysUntilBirthday(birthday string, today time.Time) (int, bool) {
	b, err := time.Parse(BirthdayLayout, birthday)
	if err != nil {
		return 0, false
	}

	start := DateOf(today)
	next := anniversary(b, start.Year())
	if next.Before(start) {
		next = anniversary(b, start.Year()+1)
	}

	return int(next.Sub(start).Hours() / 24), true
}

func anniversary(b time.Time, year int) time.Time {
	day := b.Day()
	if b.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, b.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
