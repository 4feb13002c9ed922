package domain

import (
	"strconv"
	"strings"
	"time"
)

// ParseEstimatedTime converts a "<hours>h <minutes>m" display string into a
// duration. Either token defaults to 0 when absent or unparseable, so "3h"
// parses as three hours and garbage parses as zero.
func ParseEstimatedTime(s string) time.Duration {
	hours := 0
	minutes := 0

	head, tail, found := strings.Cut(s, "h")
	if n, err := strconv.Atoi(strings.TrimSpace(head)); err == nil {
		hours = n
	}
	if found {
		if m, _, ok := strings.Cut(tail, "m"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(m)); err == nil {
				minutes = n
			}
		}
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
}
