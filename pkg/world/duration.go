package world

import (
	"fmt"
	"strconv"
	"strings"
)

// hoursPerDay is the tracker workday: "1d" logs 8 hours, not 24.
const hoursPerDay = 8

// ParseTimeSpent converts worklog time strings like "2h 30m" or "1d 4h"
// into seconds. Tokens are a number followed by d, h, m, or s,
// whitespace separated, case-insensitive.
func ParseTimeSpent(s string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, fmt.Errorf(`time spent must not be empty (use e.g. "2h 30m" or "1d 4h")`)
	}
	total := 0
	for _, tok := range fields {
		tok = strings.ToLower(tok)
		if len(tok) < 2 {
			return 0, fmt.Errorf("invalid time token %q (expected e.g. 2h, 30m, 1d)", tok)
		}
		unit := tok[len(tok)-1]
		n, err := strconv.Atoi(tok[:len(tok)-1])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time token %q (expected e.g. 2h, 30m, 1d)", tok)
		}
		switch unit {
		case 'd':
			total += n * hoursPerDay * 3600
		case 'h':
			total += n * 3600
		case 'm':
			total += n * 60
		case 's':
			total += n
		default:
			return 0, fmt.Errorf("invalid time unit %q in %q (use d, h, m, or s)", string(unit), tok)
		}
	}
	return total, nil
}
