package job

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp normalizes a user-supplied duration to integer seconds.
// Accepted forms: bare seconds ("600"), M:SS ("10:00"), and H:MM:SS
// ("0:10:00"). In the colon forms the trailing fields must be two digits in
// 00-59; the leading field may be any width.
func ParseTimestamp(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	if !strings.Contains(s, ":") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number of seconds", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return n, nil
	}

	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("%q is not in M:SS or H:MM:SS form", s)
	}

	head, err := strconv.Atoi(fields[0])
	if err != nil || head < 0 || fields[0] == "" {
		return 0, fmt.Errorf("%q has an invalid leading field", s)
	}

	total := head
	for _, f := range fields[1:] {
		if len(f) != 2 {
			return 0, fmt.Errorf("%q: minutes and seconds must be two digits", s)
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 59 {
			return 0, fmt.Errorf("%q: field %q must be 00-59", s, f)
		}
		total = total*60 + n
	}
	return total, nil
}
