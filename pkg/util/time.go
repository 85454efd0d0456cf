package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseServiceTime turns an HH:MM:SS timetable time into a time on the service
// date. Hours of 24 and above run into the following days.
func ParseServiceTime(date time.Time, value string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("invalid service time %q", value)
	}

	var values [3]int
	for i, part := range parts {
		parsed, err := strconv.Atoi(part)
		if err != nil || parsed < 0 {
			return time.Time{}, fmt.Errorf("invalid service time %q", value)
		}
		values[i] = parsed
	}

	if values[1] > 59 || values[2] > 59 {
		return time.Time{}, fmt.Errorf("invalid service time %q", value)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), values[0], values[1], values[2], 0, date.Location()), nil
}
