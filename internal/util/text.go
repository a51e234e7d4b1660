package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces       = regexp.MustCompile(`[ \t\f\v]+`)
	reSymbolDigit  = regexp.MustCompile(`([$€£¥])(\d)`)
	reDigitSymbol  = regexp.MustCompile(`(\d)([$€£¥])`)
	reZeroWidth    = regexp.MustCompile("[\u200b\u200c\u200d\ufeff\u00ad]")
	reControlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
)

// mojibakeRepl repairs the common UTF-8-read-as-Latin-1 corruptions seen in
// OCR and scrape dumps of Spanish-language ads.
var mojibakeRepl = strings.NewReplacer(
	"Ã¡", "á", "Ã©", "é", "Ã­", "í", "Ã³", "ó", "Ãº", "ú",
	"Ã±", "ñ", "Ã‘", "Ñ", "Ã¼", "ü",
	"Ã‰", "É", "Ã“", "Ó", "Ãš", "Ú", "Ã", "Á",
	"Â°", "°", "Â²", "²", "Â", "",
)

// punctRepl folds typographic quotes and dashes to their ASCII forms so the
// segmentation cues and range connectors see one spelling.
var punctRepl = strings.NewReplacer(
	"“", "\"", "”", "\"", "„", "\"",
	"‘", "'", "’", "'",
	"—", "-", "−", "-",
	"\u00a0", " ", "\u2007", " ", "\u202f", " ",
	"…", "...",
)

// NormalizeText cleans one physical line of OCR/scrape text. It is total:
// input it cannot repair passes through unchanged. Applied in order: mojibake
// repair, Unicode NFKC, quote/dash folding, soft-hyphen and zero-width
// removal, currency-symbol/digit spacing, whitespace collapsing.
func NormalizeText(input string) string {
	s := mojibakeRepl.Replace(input)
	s = norm.NFKC.String(s)
	s = punctRepl.Replace(s)
	s = reZeroWidth.ReplaceAllString(s, "")
	s = reControlChars.ReplaceAllString(s, " ")
	s = reSymbolDigit.ReplaceAllString(s, "$1 $2")
	s = reDigitSymbol.ReplaceAllString(s, "$1 $2")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FirstToken returns the first whitespace-delimited token of s, upper-cased.
func FirstToken(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.ToUpper(trimmed)
}

// HasLetter reports whether s contains at least one Unicode letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if isLetter(r) {
			return true
		}
	}
	return false
}

// IsUpperStart reports whether the first letter of s is upper case. A string
// with no letter at all fails the gate.
func IsUpperStart(s string) bool {
	for _, r := range s {
		if isLetter(r) {
			return isUpper(r)
		}
	}
	return false
}

// IsAllUpper reports whether every letter in s is upper case and at least
// one letter is present.
func IsAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if !isLetter(r) {
			continue
		}
		hasLetter = true
		if !isUpper(r) {
			return false
		}
	}
	return hasLetter
}

func isLetter(r rune) bool {
	if r == '×' || r == '÷' {
		return false
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= 'à' && r <= 'ý') || (r >= 'À' && r <= 'Ý') || r == 'ñ' || r == 'Ñ'
}

func isUpper(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'À' && r <= 'Ý' && r != '×') || r == 'Ñ'
}
