package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"anuncios/internal/price"
	"anuncios/internal/profile"
	"anuncios/internal/util"
)

// dotAbbrev holds abbreviation words whose trailing dot is punctuation, not
// a listing terminator ("Col. Kennedy", "Res. El Trapiche").
var dotAbbrev = map[string]struct{}{
	"COL": {}, "RES": {}, "BO": {}, "URB": {}, "AVE": {}, "APTO": {},
	"NO": {}, "KM": {}, "SR": {}, "SRA": {}, "ING": {}, "LIC": {}, "ARQ": {},
}

// decider evaluates the per-line start heuristics for one profile. Each
// check is a named predicate so the rules can be tested one at a time.
type decider struct {
	prof *profile.Profile
	scan *price.Scanner
}

// isStart reports whether a line opens a new listing: either the forced cue
// fires, or the start gate accepts the leading text.
func (d *decider) isStart(line string) bool {
	return d.forcedStart(line) || d.gatedStart(line)
}

// forcedStart fires when the configured cue character appears at or before
// max_cue_pos. Lines that open with a price are continuations of the
// previous record's price list, and lines opening with an administrative
// not-start word precede a place name rather than a listing.
func (d *decider) forcedStart(line string) bool {
	i := d.firstCue(line)
	if i < 0 {
		return false
	}
	if utf8.RuneCountInString(line[:i]) > d.prof.MaxCuePos {
		return false
	}
	if d.prof.IsNotStartWord(util.FirstToken(line)) {
		return false
	}
	return !d.scan.StartsWithPrice(line)
}

// gatedStart accepts a line whose leading text (before the cue, or the
// configured prefix length when the line has no cue) looks like a listing
// title: it contains a letter, satisfies the uppercase gate, and does not
// open with a not-start word or a price.
func (d *decider) gatedStart(line string) bool {
	prefix := line
	if i := d.firstCue(line); i >= 0 {
		prefix = line[:i]
	} else {
		runes := []rune(line)
		if len(runes) > d.prof.GatePrefixLen {
			prefix = string(runes[:d.prof.GatePrefixLen])
		}
	}

	if !util.HasLetter(prefix) {
		return false
	}
	switch d.prof.RequireUpper {
	case "first":
		if !util.IsUpperStart(prefix) {
			return false
		}
	case "all":
		if !util.IsAllUpper(prefix) {
			return false
		}
	}
	if d.prof.IsNotStartWord(util.FirstToken(prefix)) {
		return false
	}
	return !d.scan.StartsWithPrice(line)
}

// hasCue reports whether the line carries any valid cue occurrence at all.
// A start line without one looks like a broken title and arms the 1-line
// demotion window.
func (d *decider) hasCue(line string) bool {
	return d.firstCue(line) >= 0
}

// firstCue returns the byte index of the first cue occurrence that is not a
// numeric-grouping separator or an abbreviation dot, or -1.
func (d *decider) firstCue(line string) int {
	cue := byte(d.prof.CueRune())
	for i := 0; i < len(line); i++ {
		if line[i] != cue {
			continue
		}
		if d.validCueAt(line, i) {
			return i
		}
	}
	return -1
}

func (d *decider) validCueAt(line string, i int) bool {
	c := line[i]
	if c == ',' || c == '.' {
		// 14,000 / 14.000 style grouping is not a cue
		if i > 0 && i+1 < len(line) && isDigit(line[i-1]) && isDigit(line[i+1]) {
			return false
		}
	}
	if c == '.' {
		word := wordBefore(line, i)
		if len(word) <= 1 {
			return false
		}
		upper := strings.ToUpper(word)
		if _, ok := dotAbbrev[upper]; ok {
			return false
		}
		if d.prof.IsNotStartWord(upper) {
			return false
		}
	}
	return true
}

func wordBefore(line string, i int) string {
	j := i
	for j > 0 {
		c := line[j-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			j--
			continue
		}
		break
	}
	return line[j:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// startsUpperLetter reports whether the very first rune is an upper-case
// letter. Inline splits only cut where the remainder looks like a title.
func startsUpperLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
