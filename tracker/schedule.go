package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is a recurring wall-clock boundary. CountBoundaries returns the
// exact number of occurrences in the open-closed interval (prev, now], and
// Next returns the first occurrence strictly after the given instant.
type Schedule interface {
	CountBoundaries(prev, now time.Time) int
	Next(now time.Time) time.Time
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func cronNext(expr string, now time.Time) time.Time {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now)
}

// atHour returns the instant on ref's calendar day at the given local hour.
func atHour(ref time.Time, hour int) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, 0, 0, 0, ref.Location())
}

// calendarDays counts whole calendar days from a's date to b's date,
// independent of clock shifts between them.
func calendarDays(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

// DailySchedule fires once per calendar day at a fixed local hour.
type DailySchedule struct {
	Hour int
}

func (s DailySchedule) CountBoundaries(prev, now time.Time) int {
	if !now.After(prev) {
		return 0
	}
	first := atHour(prev, s.Hour)
	if !first.After(prev) {
		first = atHour(prev.AddDate(0, 0, 1), s.Hour)
	}
	if first.After(now) {
		return 0
	}
	last := atHour(now, s.Hour)
	if last.After(now) {
		last = atHour(now.AddDate(0, 0, -1), s.Hour)
	}
	return calendarDays(first, last) + 1
}

func (s DailySchedule) Next(now time.Time) time.Time {
	return cronNext(fmt.Sprintf("0 %d * * *", s.Hour), now)
}

// WeeklySchedule fires once per week at a fixed weekday and local hour.
type WeeklySchedule struct {
	Weekday time.Weekday
	Hour    int
}

func (s WeeklySchedule) CountBoundaries(prev, now time.Time) int {
	if !now.After(prev) {
		return 0
	}
	offset := (int(s.Weekday) - int(prev.Weekday()) + 7) % 7
	first := atHour(prev.AddDate(0, 0, offset), s.Hour)
	if !first.After(prev) {
		first = atHour(first.AddDate(0, 0, 7), s.Hour)
	}
	if first.After(now) {
		return 0
	}
	back := (int(now.Weekday()) - int(s.Weekday) + 7) % 7
	last := atHour(now.AddDate(0, 0, -back), s.Hour)
	if last.After(now) {
		last = atHour(last.AddDate(0, 0, -7), s.Hour)
	}
	return calendarDays(first, last)/7 + 1
}

func (s WeeklySchedule) Next(now time.Time) time.Time {
	return cronNext(fmt.Sprintf("0 %d * * %d", s.Hour, int(s.Weekday)), now)
}

// HourListSchedule fires at each listed hour-of-day, every day. Used for the
// multi-tick dispatch recovery schedules. Hours must be sorted ascending.
type HourListSchedule struct {
	Hours []int
}

func (s HourListSchedule) CountBoundaries(prev, now time.Time) int {
	// One closed-form daily count per listed hour keeps the work bounded by
	// the list length no matter how large the gap is.
	total := 0
	for _, h := range s.Hours {
		total += DailySchedule{Hour: h}.CountBoundaries(prev, now)
	}
	return total
}

func (s HourListSchedule) Next(now time.Time) time.Time {
	parts := make([]string, len(s.Hours))
	for i, h := range s.Hours {
		parts[i] = strconv.Itoa(h)
	}
	return cronNext(fmt.Sprintf("0 %s * * *", strings.Join(parts, ",")), now)
}

// IntervalSchedule fires every fixed duration, anchored to the epoch. The
// energy tick is the sub-day case where fixed-duration arithmetic is the
// wall-clock behavior.
type IntervalSchedule struct {
	Every time.Duration
}

func (s IntervalSchedule) CountBoundaries(prev, now time.Time) int {
	if !now.After(prev) || s.Every <= 0 {
		return 0
	}
	step := int64(s.Every / time.Second)
	return int(now.Unix()/step - prev.Unix()/step)
}

func (s IntervalSchedule) Next(now time.Time) time.Time {
	if s.Every <= 0 {
		return time.Time{}
	}
	step := int64(s.Every / time.Second)
	next := (now.Unix()/step + 1) * step
	return time.Unix(next, 0).In(now.Location())
}
