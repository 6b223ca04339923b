package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var sizeGiBRe = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)\s*(G|GB|GIB|T|TB|TIB)?$`)

// ParseSizeToGiB converts strings like "64", "64G", "1.5GB", "1T" into GiB.
// Default unit is GiB if no suffix is provided.
func ParseSizeToGiB(sizeStr string) (float64, error) {
	s := strings.TrimSpace(strings.ToUpper(sizeStr))

	matches := sizeGiBRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size format: %q (expected '64', '64G', '1T', etc.)", sizeStr)
	}

	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", matches[1])
	}

	switch matches[2] {
	case "T", "TB", "TIB":
		return val * 1024, nil
	default:
		return val, nil
	}
}

// ParseDuration parses a duration string supporting multiple formats:
//   - Go duration: "2h", "30m", "1h30m", "90s"
//   - HH:MM:SS format: "02:00:00", "2:30:00", "00:30:00"
//   - H:MM format: "2:30" (interpreted as hours:minutes)
//
// Returns the duration in time.Duration format.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		nums := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid time component %q in %s", p, s)
			}
			nums[i] = n
		}
		switch len(nums) {
		case 2:
			return time.Duration(nums[0])*time.Hour + time.Duration(nums[1])*time.Minute, nil
		case 3:
			return time.Duration(nums[0])*time.Hour +
				time.Duration(nums[1])*time.Minute +
				time.Duration(nums[2])*time.Second, nil
		default:
			return 0, fmt.Errorf("invalid time format: %s (use HH:MM:SS or HH:MM)", s)
		}
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s (use '2h', '30m', '1h30m', or '02:00:00')", s)
	}
	return dur, nil
}

// ParseBool accepts the usual yes/no spellings used at interactive prompts.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "t", "1", "on":
		return true, nil
	case "n", "no", "false", "f", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid yes/no answer: %q", s)
}

// ParseKeyValue splits "name=value" into its trimmed parts.
func ParseKeyValue(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid resource %q (expected name=value)", s)
	}
	return name, strings.TrimSpace(value), nil
}
