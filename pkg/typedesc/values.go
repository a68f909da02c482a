package typedesc

import (
	"fmt"
	"time"
)

// Date is a calendar day without a time of day.
type Date struct {
	time.Time
}

// NewDate returns the date y-m-d in UTC.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String formats the date as ISO 8601 (2006-01-02).
func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour, Minute, Second int
}

// String formats the time as 15:04:05.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Char is a single Unicode character.
type Char rune

func (c Char) String() string {
	return string(rune(c))
}
