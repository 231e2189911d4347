package ingestion

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePeriod turns a reported period into a yyyymm integer. A quarter
// such as "2021Q4" or "2021-Q1" maps to its last month; anything else must
// carry exactly six digits, e.g. "202106" or "2021-06".
func NormalizePeriod(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "Qq"); i >= 0 {
		year := digits(s[:i])
		if len(year) != 4 {
			return 0, fmt.Errorf("period %q: bad year", raw)
		}
		q, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil || q < 1 || q > 4 {
			return 0, fmt.Errorf("period %q: bad quarter", raw)
		}
		y, _ := strconv.Atoi(year)
		return y*100 + q*3, nil
	}

	d := digits(s)
	if len(d) != 6 {
		return 0, fmt.Errorf("period %q: want yyyymm", raw)
	}
	p, _ := strconv.Atoi(d)
	if m := p % 100; m < 1 || m > 12 {
		return 0, fmt.Errorf("period %q: bad month", raw)
	}
	return p, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
