// Package price extracts typed currency/amount candidates from listing
// block text. The scan never mutates the text: known non-price numeric
// patterns become exclusion zones, then currency-prefix, currency-suffix and
// bare numeric tokens are collected, adjacent tokens are resolved into
// ranges or independent offers, and the surviving candidates are scored.
package price

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"anuncios/internal"
	"anuncios/internal/profile"
	"anuncios/internal/util"
)

const amountPattern = `(?:\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d+)?)`

var (
	reMagTail = regexp.MustCompile(`(?i)^\s*(millones|millón|millon|mil|mm|k|m)\b`)
	reGrouped = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+`)
	reBare    = regexp.MustCompile(amountPattern)
)

// Scanner is the compiled price tokenizer for one agency profile. It is
// read-only after construction and safe to share across documents.
type Scanner struct {
	prof      *profile.Profile
	mask      *masker
	rePrefix  *regexp.Regexp
	reSuffix  *regexp.Regexp
	reKeyword *regexp.Regexp
	reRoom    *regexp.Regexp
}

func NewScanner(prof *profile.Profile) *Scanner {
	s := &Scanner{prof: prof, mask: newMasker(prof)}

	tokens := prof.Aliases().Tokens()
	if len(tokens) > 0 {
		quoted := make([]string, 0, len(tokens))
		for _, t := range tokens {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
		alt := strings.Join(quoted, "|")
		s.rePrefix = regexp.MustCompile(`(?i)(` + alt + `)\s*(` + amountPattern + `)`)
		s.reSuffix = regexp.MustCompile(`(?i)(` + amountPattern + `)(?:\s*(millones|millón|millon|mil|mm|k|m)\b)?\s*(` + alt + `)`)
	}
	s.reKeyword = keywordAlternation(prof.PriceKeywords)
	s.reRoom = keywordAlternation(append(append([]string{}, prof.BedroomKeywords...), prof.BathroomKeywords...))
	return s
}

func keywordAlternation(keywords []string) *regexp.Regexp {
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
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// token is one numeric occurrence under consideration. group ties the two
// halves of a range (or a dual-currency pair) together for the multi-offer
// selection policy.
type token struct {
	span       internal.Span
	value      float64
	surface    string
	code       string
	explicit   bool
	priceLike  bool
	magnitude  bool
	confidence float64
	isMin      bool
	isMax      bool
	group      int
	dropped    bool
}

// Extract returns the surviving price candidates for blockText along with
// the QC flags accrued while scanning.
func (s *Scanner) Extract(blockText string) ([]internal.PriceCandidate, []string) {
	tokens := s.scan(blockText)
	var flags []string
	tokens = s.resolveRanges(blockText, tokens, &flags)

	kept := make([]token, 0, len(tokens))
	for _, t := range tokens {
		if t.dropped {
			continue
		}
		if t.code == "" {
			if !t.priceLike {
				continue
			}
			if s.prof.PriceRequireCurrency {
				flags = appendFlag(flags, internal.QCNoCurrencyResolved)
				continue
			}
			flags = appendFlag(flags, internal.QCUnresolvedCurrency)
		}
		kept = append(kept, t)
	}

	for i := range kept {
		kept[i].confidence = s.score(blockText, kept[i])
	}
	kept = s.selectPolicy(kept, &flags)

	out := make([]internal.PriceCandidate, 0, len(kept))
	for _, t := range kept {
		code := t.code
		if code == "" {
			code = internal.CurrencyUnknown
		}
		out = append(out, internal.PriceCandidate{
			CurrencyCode: code,
			Amount:       t.value,
			Source:       t.span,
			Confidence:   t.confidence,
			IsRangeMin:   t.isMin,
			IsRangeMax:   t.isMax,
		})
	}
	return out, flags
}

// HasPrice reports whether text carries at least one explicit currency token
// or a thousands-grouped amount. Used by the segmentation engine to decide
// whether an orphan line opens an implicit buffer.
func (s *Scanner) HasPrice(text string) bool {
	for _, t := range s.scan(text) {
		if t.explicit || t.priceLike {
			return true
		}
	}
	return false
}

// StartsWithPrice reports whether text begins with a price token. A leading
// price almost always marks the continuation of the previous record's price
// list rather than a new record.
func (s *Scanner) StartsWithPrice(text string) bool {
	trimmed := strings.TrimLeft(text, " \t")
	offset := len(text) - len(trimmed)
	for _, t := range s.scan(text) {
		if t.span.Start > offset {
			return false
		}
		if t.span.Start == offset {
			return t.explicit || t.priceLike
		}
	}
	return false
}

// Spans returns the spans of explicit currency-bearing tokens, for the
// engine's inline-split lookback.
func (s *Scanner) Spans(text string) []internal.Span {
	var out []internal.Span
	for _, t := range s.scan(text) {
		if t.explicit {
			out = append(out, t.span)
		}
	}
	return out
}

func (s *Scanner) scan(text string) []token {
	zones := s.mask.zones(text)
	var tokens []token
	var occupied []internal.Span

	if s.rePrefix != nil {
		for _, m := range s.rePrefix.FindAllStringSubmatchIndex(text, -1) {
			if !boundaryBefore(text, m[0]) {
				continue
			}
			surface := text[m[2]:m[3]]
			value, ok := util.ParseAmount(text[m[4]:m[5]])
			if !ok {
				continue
			}
			end := m[1]
			hasMag := false
			if factor, magEnd := s.magnitudeAt(text, end); factor > 0 {
				value *= factor
				end = magEnd
				hasMag = true
			}
			tokens, occupied = s.appendToken(tokens, occupied, token{
				span:      internal.Span{Start: m[0], End: end},
				value:     value,
				surface:   surface,
				explicit:  true,
				priceLike: true,
				magnitude: hasMag,
			})
		}
	}

	if s.reSuffix != nil {
		for _, m := range s.reSuffix.FindAllStringSubmatchIndex(text, -1) {
			if overlaps(occupied, m[0], m[1]) {
				continue
			}
			if !boundaryBefore(text, m[0]) || !boundaryAfter(text, m[1]) {
				continue
			}
			if inZones(zones, m[2], m[3]) {
				continue
			}
			value, ok := util.ParseAmount(text[m[2]:m[3]])
			if !ok {
				continue
			}
			hasMag := false
			if m[4] >= 0 {
				if factor, accepted := util.Magnitude(text[m[4]:m[5]], s.prof.AcceptK, s.prof.AcceptMil); accepted {
					value *= factor
					hasMag = true
				}
			}
			tokens, occupied = s.appendToken(tokens, occupied, token{
				span:      internal.Span{Start: m[0], End: m[1]},
				value:     value,
				surface:   text[m[6]:m[7]],
				explicit:  true,
				priceLike: true,
				magnitude: hasMag,
			})
		}
	}

	for _, m := range reBare.FindAllStringIndex(text, -1) {
		if overlaps(occupied, m[0], m[1]) {
			continue
		}
		if !boundaryBefore(text, m[0]) || !boundaryAfter(text, m[1]) {
			continue
		}
		if inZones(zones, m[0], m[1]) {
			continue
		}
		raw := text[m[0]:m[1]]
		value, ok := util.ParseAmount(raw)
		if !ok {
			continue
		}
		end := m[1]
		hasMag := false
		if factor, magEnd := s.magnitudeAt(text, end); factor > 0 {
			value *= factor
			end = magEnd
			hasMag = true
		}
		tokens, occupied = s.appendToken(tokens, occupied, token{
			span:      internal.Span{Start: m[0], End: end},
			value:     value,
			priceLike: reGrouped.MatchString(raw) || value >= s.prof.InheritCurrencyMinValue,
			magnitude: hasMag,
		})
	}

	sortTokens(tokens)
	for i := range tokens {
		tokens[i].group = i
	}
	resolveCurrencies(tokens, s.prof)
	return tokens
}

// magnitudeAt checks for an accepted magnitude word starting at offset and
// returns its factor and the new token end.
func (s *Scanner) magnitudeAt(text string, offset int) (float64, int) {
	m := reMagTail.FindStringSubmatchIndex(text[offset:])
	if m == nil {
		return 0, offset
	}
	word := text[offset+m[2] : offset+m[3]]
	factor, ok := util.Magnitude(word, s.prof.AcceptK, s.prof.AcceptMil)
	if !ok {
		return 0, offset
	}
	return factor, offset + m[3]
}

func (s *Scanner) appendToken(tokens []token, occupied []internal.Span, t token) ([]token, []internal.Span) {
	if overlaps(occupied, t.span.Start, t.span.End) {
		return tokens, occupied
	}
	return append(tokens, t), append(occupied, t.span)
}

// score accrues the candidate confidence: resolved currency and price
// keywords raise it, room-count keywords nearby lower it.
func (s *Scanner) score(text string, t token) float64 {
	score := 0.5
	if t.code != "" {
		score += 0.3
	}
	if t.magnitude {
		score += 0.05
	}
	if s.reKeyword != nil && keywordNear(s.reKeyword, text, t.span, 24) {
		score += 0.1
	}
	if s.reRoom != nil && keywordNear(s.reRoom, text, t.span, 12) {
		score -= 0.2
	}
	if score < 0.05 {
		score = 0.05
	}
	if score > 0.99 {
		score = 0.99
	}
	return score
}

// selectPolicy applies the multi-offer policy. A range pair (or the
// dual-currency exception pair) counts as one offer and survives first_only
// as a unit; discarding any competing offer is flagged.
func (s *Scanner) selectPolicy(tokens []token, flags *[]string) []token {
	if len(tokens) <= 1 || s.prof.MultiPricePolicy == "enumerate_all" {
		return tokens
	}

	bestGroup := -1
	bestScore := -1.0
	bestStart := -1
	byGroup := map[int][]token{}
	for _, t := range tokens {
		byGroup[t.group] = append(byGroup[t.group], t)
	}
	if len(byGroup) > 1 {
		*flags = appendFlag(*flags, internal.QCMultiCandidateKeptOne)
	}
	for group, members := range byGroup {
		score := -1.0
		start := members[0].span.Start
		for _, t := range members {
			if t.confidence > score {
				score = t.confidence
			}
			if t.span.Start < start {
				start = t.span.Start
			}
		}
		if score > bestScore || (score == bestScore && (bestStart < 0 || start < bestStart)) {
			bestGroup, bestScore, bestStart = group, score, start
		}
	}

	out := make([]token, 0, 2)
	for _, t := range tokens {
		if t.group == bestGroup {
			out = append(out, t)
		}
	}
	return out
}

func resolveCurrencies(tokens []token, prof *profile.Profile) {
	table := prof.Aliases()
	for i := range tokens {
		if !tokens[i].explicit {
			continue
		}
		if code, ok := table.Resolve(tokens[i].surface); ok {
			tokens[i].code = code
		}
	}
}

func sortTokens(tokens []token) {
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0 && tokens[j].span.Start < tokens[j-1].span.Start; j-- {
			tokens[j], tokens[j-1] = tokens[j-1], tokens[j]
		}
	}
}

func overlaps(spans []internal.Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && end > s.Start {
			return true
		}
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func keywordNear(re *regexp.Regexp, text string, span internal.Span, window int) bool {
	lo := span.Start - window
	if lo < 0 {
		lo = 0
	}
	hi := span.End + window
	if hi > len(text) {
		hi = len(text)
	}
	return re.MatchString(text[lo:span.Start]) || re.MatchString(text[span.End:hi])
}

func appendFlag(flags []string, name string) []string {
	for _, f := range flags {
		if f == name {
			return flags
		}
	}
	return append(flags, name)
}
