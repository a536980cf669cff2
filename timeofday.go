package appgridlog

import "time"

// Time-of-day dimension labels understood by AppGrid.
const (
	TimeOfDayEarlyMorning = "01-05"
	TimeOfDayMorning      = "05-09"
	TimeOfDayMidday       = "09-13"
	TimeOfDayAfternoon    = "13-17"
	TimeOfDayEvening      = "17-21"
	TimeOfDayNight        = "21-01"
)

// ClassifyHour maps an hour (0-23) to its time-of-day label.
//
// Ranges share their boundary hour and the first matching range wins, so
// 5 is "01-05", 9 is "05-09", 13 is "09-13", 17 is "13-17" and 21 is "17-21".
// AppGrid dashboards are keyed on this exact assignment.
func ClassifyHour(hour int) string {
	switch {
	case hour >= 1 && hour <= 5:
		return TimeOfDayEarlyMorning
	case hour >= 5 && hour <= 9:
		return TimeOfDayMorning
	case hour >= 9 && hour <= 13:
		return TimeOfDayMidday
	case hour >= 13 && hour <= 17:
		return TimeOfDayAfternoon
	case hour >= 17 && hour <= 21:
		return TimeOfDayEvening
	default:
		return TimeOfDayNight
	}
}

// TimeOfDay classifies t's hour in t's own location.
func TimeOfDay(t time.Time) string {
	return ClassifyHour(t.Hour())
}

// CurrentTimeOfDay classifies the local wall-clock hour.
func CurrentTimeOfDay() string {
	return TimeOfDay(time.Now())
}
