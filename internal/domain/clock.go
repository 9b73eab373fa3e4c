package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day in the configured zone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" into a Clock.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Clock{}, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, errors.New("invalid minute")
	}
	return Clock{Hour: h, Minute: m}, nil
}

// String returns the HH:MM form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// CronSpec returns the standard 5-field cron expression firing daily at this time.
func (c Clock) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", c.Minute, c.Hour)
}
