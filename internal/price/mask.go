package price

import (
	"regexp"
	"strings"

	"anuncios/internal"
	"anuncios/internal/profile"
)

// Non-price numeric patterns are not removed from the text; they become
// exclusion zones and any number inside one is never offered as a price
// candidate. Zones cover area expressions, bedroom/bathroom counts,
// floor/parking counts, label:number pairs, phone numbers and bare years.

var (
	reLabelNumber = regexp.MustCompile(`(?i)\b[\p{L}][\p{L}\d]*\.?\s*[:#]\s*\d+`)
	rePhone       = regexp.MustCompile(`\b\d{4}[- ]\d{4}\b`)
	reYear        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

type masker struct {
	patterns []*regexp.Regexp
}

func newMasker(prof *profile.Profile) *masker {
	m := &masker{}
	if re := keywordCountPattern(prof.AreaUnitAliases); re != nil {
		m.patterns = append(m.patterns, re)
	}
	if re := keywordCountPattern(prof.BedroomKeywords); re != nil {
		m.patterns = append(m.patterns, re)
	}
	if re := keywordCountPattern(prof.BathroomKeywords); re != nil {
		m.patterns = append(m.patterns, re)
	}
	if re := keywordCountPattern(prof.FloorKeywords); re != nil {
		m.patterns = append(m.patterns, re)
	}
	m.patterns = append(m.patterns, reLabelNumber, rePhone, reYear)
	return m
}

// keywordCountPattern builds `<number> <keyword>` for lists like bedroom or
// area-unit aliases. Keywords are matched as prefixes so "hab" also covers
// "habitaciones".
func keywordCountPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:` + strings.Join(quoted, "|") + `)[\p{L}]*`)
}

// zones computes the exclusion spans for text.
func (m *masker) zones(text string) []internal.Span {
	var out []internal.Span
	for _, re := range m.patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, internal.Span{Start: loc[0], End: loc[1]})
		}
	}
	return out
}

func inZones(zones []internal.Span, start, end int) bool {
	for _, z := range zones {
		if start < z.End && end > z.Start {
			return true
		}
	}
	return false
}
