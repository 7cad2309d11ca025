// Package timeutil converts the human-entered date and duration formats
// accepted on the CLI into absolute Unix epochs. All parsing happens in
// local wall-clock time, matching what a user means by "06/01/2024".
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "01/02/2006"
	dateTimeLayout = "01/02/2006 15:04:05"
)

// StringToEpoch parses "MM/DD/YYYY" or "MM/DD/YYYY HH:MM:SS" into Unix seconds.
func StringToEpoch(s string) (int64, error) {
	layout := dateLayout
	if strings.Contains(s, " ") {
		layout = dateTimeLayout
	}
	t, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid date string %q: expected MM/DD/YYYY or MM/DD/YYYY HH:MM:SS", s)
	}
	return t.Unix(), nil
}

// EpochToString renders an epoch as "M/D/YYYY h:mm:ss AM" in local time.
func EpochToString(epoch int64) string {
	t := time.Unix(epoch, 0)
	return fmt.Sprintf("%d/%d/%d %s", int(t.Month()), t.Day(), t.Year(),
		toTwelveHour(t.Hour(), t.Minute(), t.Second()))
}

func toTwelveHour(hour, minute, second int) string {
	hour %= 24
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d:%02d %s", display, minute, second, suffix)
}

// ToSeconds converts a count of the given unit into a span of seconds ending
// now. Units: "min", "h", "d", "w" are fixed-length; "m" and "y" subtract
// calendar months/years from the current local time, so the span tracks
// month-length and leap-year variation.
func ToSeconds(number int, unit string) (int64, error) {
	switch unit {
	case "min":
		return int64(number) * 60, nil
	case "h":
		return int64(number) * 3600, nil
	case "d":
		return int64(number) * 86400, nil
	case "w":
		return int64(number) * 7 * 86400, nil
	case "m":
		now := time.Now()
		cutoff := now.AddDate(0, -number, 0)
		return now.Unix() - cutoff.Unix(), nil
	case "y":
		now := time.Now()
		cutoff := now.AddDate(-number, 0, 0)
		return now.Unix() - cutoff.Unix(), nil
	default:
		return 0, fmt.Errorf("invalid unit %q for last_used duration", unit)
	}
}

// Cutoff resolves a last-used argument into an absolute epoch. The argument
// is either a duration like "30min", "6h", "2w" (how far back from now) or an
// absolute "MM/DD/YYYY" date. Empty input returns 0, meaning no cutoff.
func Cutoff(lastUsed string) (int64, error) {
	if lastUsed == "" {
		return 0, nil
	}

	components := strings.Split(lastUsed, "/")
	switch len(components) {
	case 1:
		split := len(lastUsed)
		for i, r := range lastUsed {
			if r < '0' || r > '9' {
				split = i
				break
			}
		}
		number, err := strconv.Atoi(lastUsed[:split])
		if err != nil {
			return 0, fmt.Errorf("invalid last_used argument %q", lastUsed)
		}
		span, err := ToSeconds(number, lastUsed[split:])
		if err != nil {
			return 0, err
		}
		return time.Now().Unix() - span, nil
	case 3:
		t, err := time.ParseInLocation(dateLayout, lastUsed, time.Local)
		if err != nil {
			return 0, fmt.Errorf("invalid last_used argument %q", lastUsed)
		}
		return t.Unix(), nil
	default:
		return 0, fmt.Errorf("invalid last_used argument %q", lastUsed)
	}
}
