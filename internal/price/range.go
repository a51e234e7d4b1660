package price

import (
	"strings"
	"unicode"

	"anuncios/internal"
)

// resolveRanges pairs adjacent tokens separated by a configured connector.
// A bare side may inherit the other side's currency when the inheritance
// flag is on and the bare value clears the minimum-value guard (which keeps
// "2-3 habitaciones" style counts out). A pair where both sides carry a
// different explicit currency is the dual-currency exception: two
// independent same-listing offers, never a range.
func (s *Scanner) resolveRanges(text string, tokens []token, flags *[]string) []token {
	for i := 0; i+1 < len(tokens); i++ {
		left := &tokens[i]
		right := &tokens[i+1]
		if left.dropped || right.dropped {
			continue
		}
		between := text[left.span.End:right.span.Start]
		if !s.isRangeConnector(between) {
			continue
		}

		switch {
		case left.code != "" && right.code != "":
			right.group = left.group
			if left.code == right.code {
				tagRange(left, right)
			}
			// different codes: independent offers, keep both untagged
			i++
		case left.code != "" || right.code != "":
			explicit, bare := left, right
			if right.code != "" {
				explicit, bare = right, left
			}
			if s.prof.InheritCurrencyInRanges && bare.value >= s.prof.InheritCurrencyMinValue {
				bare.code = explicit.code
				right.group = left.group
				tagRange(left, right)
				i++
			} else {
				bare.dropped = true
				*flags = appendFlag(*flags, internal.QCAmbiguousRangeRejected)
			}
		default:
			// two bare numbers: nothing to inherit from, leave independent
		}
	}

	out := tokens[:0]
	for _, t := range tokens {
		if !t.dropped {
			out = append(out, t)
		}
	}
	return out
}

func tagRange(left, right *token) {
	if left.value <= right.value {
		left.isMin = true
		right.isMax = true
	} else {
		left.isMax = true
		right.isMin = true
	}
}

// isRangeConnector reports whether the text between two tokens is exactly
// one configured connector. Word connectors ("a", "hasta", "to") must stand
// alone between whitespace; symbol connectors may sit flush against the
// numbers.
func (s *Scanner) isRangeConnector(between string) bool {
	trimmed := strings.TrimSpace(between)
	if trimmed == "" {
		return false
	}
	folded := strings.ToLower(trimmed)
	for _, sep := range s.prof.RangeSeparators {
		sep = strings.ToLower(strings.TrimSpace(sep))
		if sep == "" || folded != sep {
			continue
		}
		if isWordConnector(sep) && len(trimmed) == len(between) {
			// word connectors glued to a number are part of a word, not a range
			continue
		}
		return true
	}
	return false
}

func isWordConnector(sep string) bool {
	for _, r := range sep {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
