package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationSeconds is the fallback when a duration string cannot be
// parsed: 25 minutes, one standard focus block.
const DefaultDurationSeconds = 25 * 60

var (
	minutesRe = regexp.MustCompile(`(\d+)\s*min`)
	hoursRe   = regexp.MustCompile(`(\d+)\s*hr`)
	bareNumRe = regexp.MustCompile(`^(\d+)$`)
	clockRe   = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{2}))?\s*(?::\d{2})?\s*([AaPp][Mm])?\s*$`)
)

// ParseDurationSeconds converts a display duration string to seconds.
// Recognized forms: "<N> min" (minutes), "<N> hr" (hours), and a bare
// integer (minutes). The function is total: anything else yields the
// 25-minute default. Callers cannot observe a parse failure.
func ParseDurationSeconds(s string) int {
	if s == "" {
		return DefaultDurationSeconds
	}

	seconds := 0
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		seconds = n * 60
	} else if m := hoursRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		seconds = n * 3600
	} else if m := bareNumRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		n, _ := strconv.Atoi(m[1])
		seconds = n * 60
	}

	// Zero-length tasks make no sense for a countdown; degrade to the
	// default block instead.
	if seconds <= 0 {
		return DefaultDurationSeconds
	}
	return seconds
}

// ParseClockMinutes converts a clock time string to minutes since midnight.
// Accepts "H:MM", "H:MM AM/PM", and "H AM/PM"; minutes default to 0 when
// absent. 12 AM maps to 0; 12 PM stays 12. Total: unparseable input yields 0.
func ParseClockMinutes(s string) int {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}

	switch strings.ToUpper(m[3]) {
	case "AM":
		if hours == 12 {
			hours = 0
		}
	case "PM":
		if hours != 12 {
			hours += 12
		}
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0
	}

	return hours*60 + minutes
}

// FormatClock renders minutes since midnight as a 12-hour display string,
// e.g. 870 -> "02:30 PM".
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440

	hours := minutes / 60
	mins := minutes % 60

	meridiem := "AM"
	displayHours := hours
	switch {
	case hours == 0:
		displayHours = 12
	case hours == 12:
		meridiem = "PM"
	case hours > 12:
		displayHours = hours - 12
		meridiem = "PM"
	}

	return fmt.Sprintf("%02d:%02d %s", displayHours, mins, meridiem)
}

// FormatClock24 renders minutes since midnight as 24-hour "HH:MM".
func FormatClock24(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDurationMinutes renders a duration in minutes in the display form
// the rest of the system expects: "45min", "1hr", "1hr 30min".
func FormatDurationMinutes(minutes int) string {
	if minutes <= 0 {
		minutes = DefaultDurationSeconds / 60
	}

	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dhr", minutes/60)
	}
	return fmt.Sprintf("%dhr %dmin", minutes/60, minutes%60)
}

// FormatCountdown renders seconds as "MM:SS" for timer displays.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
