package domain

import "time"

// Interval полуоткрытый интервал дат [CheckIn, CheckOut)
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// IsValid returns true if the interval contains at least one night
func (i Interval) IsValid() bool {
	return i.CheckOut.After(i.CheckIn)
}

// Overlaps returns true if both intervals share at least one night.
// Adjacent stays (a.CheckOut == b.CheckIn) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(i.CheckOut)
}

// Nights returns the number of nights in the interval
func (i Interval) Nights() int {
	if !i.IsValid() {
		return 0
	}
	return int(i.CheckOut.Sub(i.CheckIn).Hours() / 24)
}

// DateOf возвращает календарную дату момента t в зоне loc как полночь UTC
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate отбрасывает время и зону, оставляя календарную дату
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AtLocalHour возвращает момент date в hour:00 по времени loc
func AtLocalHour(date time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, loc)
}
