package features

import (
	"time"
)

// DateLayout ISO 8601 カレンダー日付
const DateLayout = "2006-01-02"

// CalendarFields 日付から導出される数値特徴量
type CalendarFields struct {
	Year      int
	Month     int
	Day       int
	DayOfWeek int // Monday=0 ... Sunday=6
}

// ParseDate parses an ISO 8601 calendar date. Any other form is a MalformedDateError.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &MalformedDateError{Value: value, Err: err}
	}
	return t, nil
}

// DayOfWeek 月曜=0〜日曜=6 の曜日番号。学習とサービングの両方でこの関数だけを使う
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DecomposeDate 日付文字列をカレンダー特徴量に分解
func DecomposeDate(value string) (CalendarFields, error) {
	t, err := ParseDate(value)
	if err != nil {
		return CalendarFields{}, err
	}
	return CalendarFieldsOf(t), nil
}

// CalendarFieldsOf decomposes an already parsed date.
func CalendarFieldsOf(t time.Time) CalendarFields {
	return CalendarFields{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		DayOfWeek: DayOfWeek(t),
	}
}
