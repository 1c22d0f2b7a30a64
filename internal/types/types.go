package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Downtime is one recurring downtime record as produced by the converter.
// Thruk is sloppy about numeric fields (they show up quoted as often as
// not), so the numeric fields decode leniently via Number.
type Downtime struct {
	Target       string     `json:"target"`
	Host         []string   `json:"host"`
	Service      string     `json:"service"`
	Hostgroup    []string   `json:"hostgroup"`
	Servicegroup []string   `json:"servicegroup"`
	Backends     []string   `json:"backends"`
	Comment      string     `json:"comment"`
	Fixed        Number     `json:"fixed"`
	Duration     Number     `json:"duration"`
	FlexRange    Number     `json:"flex_range"`
	ChildOptions Number     `json:"childoptions"`
	Schedule     []Schedule `json:"schedule"`
}

// Schedule is one recurrence rule inside a Downtime.
type Schedule struct {
	Type    string   `json:"type"`
	WeekDay WeekDays `json:"week_day"`
	Day     Number   `json:"day"`
	Hour    Number   `json:"hour"`
	Minute  Number   `json:"minute"`
}

// Matches reports whether the rule fires on the given date. Daily rules
// always fire, weekly rules fire when the ISO weekday is listed, monthly
// rules fire on the matching day of month.
func (s Schedule) Matches(now time.Time) bool {
	switch s.Type {
	case "day":
		return true
	case "week":
		return s.WeekDay.Contains(ISOWeekday(now))
	case "month":
		return now.Day() == int(s.Day)
	}
	return false
}

// ISOWeekday returns the weekday with Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}

// Number decodes a JSON number, a quoted number, null or "" to an int.
type Number int

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrapf(err, "numeric field %s", string(b))
	}
	*n = Number(v)
	return nil
}

// WeekDays holds the week_day field, which Thruk stores as a number, a
// comma-separated string or a list depending on how it was edited.
type WeekDays string

func (w *WeekDays) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.WithStack(err)
	}
	switch t := v.(type) {
	case nil:
		*w = ""
	case string:
		*w = WeekDays(t)
	case float64:
		*w = WeekDays(strconv.Itoa(int(t)))
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			switch d := e.(type) {
			case string:
				parts = append(parts, d)
			case float64:
				parts = append(parts, strconv.Itoa(int(d)))
			}
		}
		*w = WeekDays(strings.Join(parts, ","))
	default:
		return errors.Errorf("unexpected week_day value %s", string(b))
	}
	return nil
}

// Contains reports whether the ISO weekday is listed.
func (w WeekDays) Contains(day int) bool {
	for _, part := range strings.Split(string(w), ",") {
		if strings.TrimSpace(part) == strconv.Itoa(day) {
			return true
		}
	}
	return false
}

// Summary collects the outcome of one pump run for the report.
type Summary struct {
	TimeStarted string
	TimeEnded   string
	Author      string
	URL         string
	Prepared    int
	Submitted   int
	Simulated   int
	Failures    []FailureRecord
}

// FailureRecord is one downtime submission that did not go through.
type FailureRecord struct {
	Target string
	Detail string
}
