// Package duedate собирает дедлайн плана из даты и необязательного времени.
//
// Если время не передано, дедлайн — конец дня (23:59:59) в часовом поясе приложения.
package duedate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// EndOfDay время по умолчанию, если клиент передал только дату.
	EndOfDay = "23:59:59"
)

// ErrInvalid возвращается для строк, которые не удалось разобрать.
var ErrInvalid = errors.New("invalid due date")

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Compose возвращает дедлайн по дате и времени.
//
// date: "YYYY-MM-DD", "YYYY-MM-DDTHH:MM[:SS]" или RFC 3339.
// clock: "HH:MM" или "HH:MM:SS"; учитывается только вместе с датой без времени.
func Compose(date, clock string, loc *time.Location) (time.Time, error) {
	const op = "duedate.Compose"
	if loc == nil {
		loc = time.UTC
	}
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, fmt.Errorf("%s: %w: date is empty", op, ErrInvalid)
	}

	if t, err := time.Parse(time.RFC3339Nano, date); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, date, loc); err == nil {
			return t, nil
		}
	}

	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", op, ErrInvalid, date)
	}

	if clock == "" {
		clock = EndOfDay
	}
	h, m, s, err := parseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", op, ErrInvalid, clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc), nil
}

func parseClock(clock string) (int, int, int, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	return 0, 0, 0, ErrInvalid
}
