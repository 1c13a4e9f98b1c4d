package rsm

import (
	"errors"
	"strings"
	"time"
)

// timeNow is a test seam so the today/tomorrow inference can be pinned.
var timeNow = time.Now

// ParseDue parses a due argument in one of the two accepted forms, "HH:MM"
// or "YYYY-MM-DD HH:MM", and normalizes it to "YYYY-MM-DDTHH:MM:00" in
// local time.
//
// With a bare time, the date is inferred: today if the time has not passed
// yet, tomorrow otherwise. With an explicit date the timestamp is passed
// through unchanged, even if it lies in the past.
//
// The returned errors carry user-facing messages; callers print them rather
// than matching on them.
func ParseDue(s string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	switch len(fields) {
	case 1:
		t, err := parseClock(fields[0])
		if err != nil {
			return "", err
		}
		now := timeNow()
		day := now
		// Strictly earlier than the current wall clock means tomorrow.
		if t.Hour()*60+t.Minute() < now.Hour()*60+now.Minute() {
			day = now.AddDate(0, 0, 1)
		}
		return day.Format("2006-01-02") + "T" + t.Format("15:04") + ":00", nil
	case 2:
		d, err := parseDate(fields[0])
		if err != nil {
			return "", err
		}
		t, err := parseClock(fields[1])
		if err != nil {
			return "", err
		}
		return d.Format("2006-01-02") + "T" + t.Format("15:04") + ":00", nil
	default:
		return "", errors.New("Invalid date and time format")
	}
}

func parseClock(s string) (time.Time, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return time.Time{}, errors.New("Invalid time format")
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, errors.New("Invalid time")
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return time.Time{}, errors.New("Invalid date")
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("Invalid date")
	}
	return d, nil
}
