package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTime parses a SLURM --time value: "minutes", "MM:SS", "HH:MM:SS",
// "D-HH", "D-HH:MM" or "D-HH:MM:SS". A bare number is minutes.
func ParseTime(timeStr string) (time.Duration, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTimeFormat)
	}

	num := func(s string) (int64, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, timeStr)
		}
		return n, nil
	}

	var days, hours, minutes, seconds int64
	hms := timeStr
	hasDays := false
	if idx := strings.Index(hms, "-"); idx >= 0 {
		d, err := num(hms[:idx])
		if err != nil {
			return 0, err
		}
		days = d
		hasDays = true
		hms = hms[idx+1:]
	}

	parts := strings.Split(hms, ":")
	vals := make([]int64, len(parts))
	for i, p := range parts {
		n, err := num(p)
		if err != nil {
			return 0, err
		}
		vals[i] = n
	}

	switch {
	case hasDays && len(vals) == 1:
		hours = vals[0]
	case hasDays && len(vals) == 2:
		hours, minutes = vals[0], vals[1]
	case len(vals) == 3:
		hours, minutes, seconds = vals[0], vals[1], vals[2]
	case len(vals) == 2:
		minutes, seconds = vals[0], vals[1]
	case len(vals) == 1:
		minutes = vals[0]
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, timeStr)
	}

	// Each component is bounded so the sum stays representable as a Duration.
	const maxSeconds = math.MaxInt64 / int64(time.Second)
	if days > maxSeconds/(24*3600) || hours > maxSeconds/3600 || minutes > maxSeconds/60 || seconds > maxSeconds {
		return 0, fmt.Errorf("%w: %s is too long", ErrInvalidTimeFormat, timeStr)
	}
	totalSeconds := days*24*3600 + hours*3600 + minutes*60 + seconds
	if totalSeconds > maxSeconds {
		return 0, fmt.Errorf("%w: %s is too long", ErrInvalidTimeFormat, timeStr)
	}
	return time.Duration(totalSeconds) * time.Second, nil
}

// FormatTime renders d as a SLURM --time value ([D-]HH:MM:SS).
func FormatTime(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int64(d.Seconds())
	days := total / (24 * 3600)
	rem := total % (24 * 3600)
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60
	if days > 0 {
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatSeconds is FormatTime for a whole number of seconds.
func FormatSeconds(seconds int) string {
	return FormatTime(time.Duration(seconds) * time.Second)
}
