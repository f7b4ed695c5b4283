// Package calendar converts Gregorian dates to the Chinese lunar calendar.
package calendar

import (
	"fmt"
	"time"

	lunar "github.com/6tail/lunar-go/calendar"
)

// LunarDate is a date in the Chinese lunar calendar.
// Month is always positive; Leap marks an intercalary month.
type LunarDate struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Leap  bool `json:"leap"`
}

// String renders e.g. "2020年闰4月1日".
func (d LunarDate) String() string {
	leap := ""
	if d.Leap {
		leap = "闰"
	}
	return fmt.Sprintf("%d年%s%d月%d日", d.Year, leap, d.Month, d.Day)
}

// ToLunar converts the calendar date of t. The time of day is ignored.
func ToLunar(t time.Time) LunarDate {
	l := lunar.NewSolarFromYmd(t.Year(), int(t.Month()), t.Day()).GetLunar()

	month := l.GetMonth()
	leap := month < 0
	if leap {
		month = -month
	}
	return LunarDate{Year: l.GetYear(), Month: month, Day: l.GetDay(), Leap: leap}
}

// EightCharacters returns the year, month, day and time pillars of t as
// computed by the lunar calendar, honouring solar-term month boundaries.
func EightCharacters(t time.Time) [4]string {
	ec := lunar.NewSolar(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()).
		GetLunar().
		GetEightChar()
	return [4]string{ec.GetYear(), ec.GetMonth(), ec.GetDay(), ec.GetTime()}
}
