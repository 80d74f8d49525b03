package calendar

import (
	"fmt"
	"strings"
)

// TimeToMinutes converts an "H:MM" / "HH:MM" duration into minutes.
// Malformed input counts as zero duration instead of failing: anything that does not
// split into exactly two parts on ':' is 0, and each part is read like a lenient integer
// (leading digits only, so "1a" reads as 1 and "ab" as 0).
func TimeToMinutes(s string) int {
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}

	return leadingInt(parts[0])*60 + leadingInt(parts[1])
}

// MinutesToTime renders minutes as "H:MM", with no padding on hours.
func MinutesToTime(minutes int) string {
	if minutes <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	n := 0
	for i, r := range s {
		// 9 digits is far beyond any real duration and keeps n from overflowing
		if r < '0' || r > '9' || i >= 9 {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
