package analytics

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	clockPattern = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,2}))?$`)
	unitPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
	leadNumber   = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)
)

// ParseDurationMinutes reads the free-text duration admins type into the
// catalog ("5", "5 min", "5:30", "1:02:03", "1h 5m") as minutes. Anything it
// cannot read is 0.
func ParseDurationMinutes(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		a, _ := strconv.ParseFloat(m[1], 64)
		b, _ := strconv.ParseFloat(m[2], 64)
		if m[3] == "" {
			return a + b/60
		}
		c, _ := strconv.ParseFloat(m[3], 64)
		return a*60 + b + c/60
	}

	if matches := unitPattern.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		var total float64
		for _, m := range matches {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			switch m[2][0] {
			case 'h':
				total += n * 60
			case 'm':
				total += n
			case 's':
				total += n / 60
			}
		}
		return total
	}

	if m := leadNumber.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		return n
	}
	return 0
}
