package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// ParseAmount parses a numeric token with locale-ambiguous separators.
// When both "," and "." occur, whichever occurs last is the decimal mark and
// the other is a thousands separator. A single-separator token is read as
// grouped thousands when the groups are exactly 3 digits, else as a decimal.
func ParseAmount(token string) (float64, bool) {
	compact := strings.ReplaceAll(token, "\u00a0", " ")
	compact = strings.ReplaceAll(compact, " ", "")
	if compact == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(compact, ",")
	lastDot := strings.LastIndex(compact, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			compact = strings.ReplaceAll(compact, ".", "")
			compact = strings.Replace(compact, ",", ".", 1)
		} else {
			compact = strings.ReplaceAll(compact, ",", "")
		}
	case lastComma >= 0:
		if reThousandsComma.MatchString(compact) {
			compact = strings.ReplaceAll(compact, ",", "")
		} else if strings.Count(compact, ",") == 1 {
			compact = strings.Replace(compact, ",", ".", 1)
		} else {
			return 0, false
		}
	case lastDot >= 0:
		if reThousandsDot.MatchString(compact) {
			compact = strings.ReplaceAll(compact, ".", "")
		}
		// a single dot is already a decimal mark
	}

	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// Magnitude resolves a trailing multiplier token: "k"/"mil" scale by a
// thousand, "m"/"mm"/"millon"/"millones" by a million. Acceptance of each
// family is profile-gated.
func Magnitude(suffix string, acceptK, acceptMil bool) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(suffix))
	s = strings.TrimSuffix(s, ".")
	s = strings.ReplaceAll(s, "ó", "o")
	switch s {
	case "k":
		if acceptK {
			return 1000, true
		}
	case "mil":
		if acceptMil {
			return 1000, true
		}
	case "m", "mm", "millon", "millones":
		if acceptMil {
			return 1000000, true
		}
	}
	return 0, false
}
