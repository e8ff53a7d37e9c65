package tournamentdomain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const scheduleLayout = "Monday, 2 January 2006 15:04 UTC"

// Schedule is when a tournament starts: a UTC time of day on a calendar date.
type Schedule struct {
	At time.Time
}

// NewSchedule combines a UTC time of day with a calendar date.
func NewSchedule(hour, minute, year int, month time.Month, day int) (Schedule, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Schedule{}, fmt.Errorf("%w: time %02d:%02d", ErrInvalidSchedule, hour, minute)
	}
	if month < time.January || month > time.December || day < 1 || day > daysIn(year, month) {
		return Schedule{}, fmt.Errorf("%w: date %02d/%02d/%04d", ErrInvalidSchedule, day, month, year)
	}
	return Schedule{At: time.Date(year, month, day, hour, minute, 0, 0, time.UTC)}, nil
}

// ParseSchedule builds a schedule from a UTC time written as HHMM (1600 for 4PM)
// and a calendar date written as DD/MM/YYYY, DD/MM or DD. Missing date fields are
// taken from now; an empty date means today. Other date text ("next friday") is
// read as natural language relative to now.
func ParseSchedule(utcTime uint16, calendarDate string, now time.Time) (Schedule, error) {
	hour, minute := int(utcTime/100), int(utcTime%100)
	now = now.UTC()

	calendarDate = strings.TrimSpace(calendarDate)
	if calendarDate == "" {
		return NewSchedule(hour, minute, now.Year(), now.Month(), now.Day())
	}

	if year, month, day, ok, err := parseNumericDate(calendarDate, now); ok {
		if err != nil {
			return Schedule{}, err
		}
		return NewSchedule(hour, minute, year, month, day)
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(calendarDate, now)
	if err != nil || r == nil {
		return Schedule{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidSchedule, calendarDate)
	}
	d := r.Time.UTC()
	return NewSchedule(hour, minute, d.Year(), d.Month(), d.Day())
}

// parseNumericDate handles the DD[/MM[/YYYY]] forms. ok is false when the input
// is not numeric at all and should go to the natural language parser.
func parseNumericDate(s string, now time.Time) (year int, month time.Month, day int, ok bool, err error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return 0, 0, 0, true, fmt.Errorf("%w: too many date fields in %q", ErrInvalidSchedule, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			if i == 0 {
				return 0, 0, 0, false, nil
			}
			return 0, 0, 0, true, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
		}
		nums[i] = n
	}

	year, month, day = now.Year(), now.Month(), nums[0]
	if len(nums) > 1 {
		month = time.Month(nums[1])
	}
	if len(nums) > 2 {
		year = nums[2]
		if year < 100 {
			year += 2000
		}
	}
	return year, month, day, true, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String renders the schedule deterministically, e.g. "Monday, 19 October 2026 16:00 UTC".
func (s Schedule) String() string {
	return s.At.UTC().Format(scheduleLayout)
}
