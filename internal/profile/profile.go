// Package profile loads and validates per-agency parsing profiles. A profile
// collapses every agency quirk (cue character, start gates, header rules,
// currency aliases, range behavior) into one typed value, validated once at
// load time. Malformed profiles are the only hard failure in the system:
// everything past this point degrades via QC flags.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"anuncios/internal"
	"anuncios/internal/currency"
)

type HeaderRule struct {
	Pattern      string `json:"pattern"`
	Transaction  string `json:"transaction"`
	PropertyType string `json:"property_type"`
	Category     string `json:"category"`

	re *regexp.Regexp
}

// Match reports whether line matches the rule and, if so, the context the
// header establishes.
func (r *HeaderRule) Match(line string) (internal.HeaderContext, bool) {
	if r.re == nil || !r.re.MatchString(line) {
		return internal.HeaderContext{}, false
	}
	ctx := internal.HeaderContext{Transaction: internal.Transaction(r.Transaction)}
	if ctx.Transaction == "" {
		ctx.Transaction = internal.TransactionUnknown
	}
	if r.PropertyType != "" {
		ctx.PropertyType = internal.StringPtr(r.PropertyType)
	}
	if r.Category != "" {
		ctx.Category = internal.StringPtr(r.Category)
	}
	return ctx, true
}

type Profile struct {
	Agency string `json:"agency"`

	Cue           string `json:"cue"`
	MaxCuePos     int    `json:"max_cue_pos"`
	RequireUpper  string `json:"require_upper"` // "", "first" or "all"
	GatePrefixLen int    `json:"gate_prefix_len"`

	NotStartWords []string     `json:"not_start_words"`
	HeaderRules   []HeaderRule `json:"header_rules"`

	CurrencyAliases map[string]string `json:"currency_aliases"`

	RangeSeparators         []string `json:"range_separators"`
	InheritCurrencyInRanges bool     `json:"inherit_currency_in_ranges"`
	InheritCurrencyMinValue float64  `json:"inherit_currency_in_ranges_min_value"`

	MultiPricePolicy string `json:"multi_price_policy"` // first_only | enumerate_all

	AcceptK              bool `json:"accept_k"`
	AcceptMil            bool `json:"accept_mil"`
	PriceRequireCurrency bool `json:"price_require_currency"`

	RequirePriceBefore  bool `json:"require_price_before"`
	InlinePriceLookback int  `json:"inline_price_lookback"`

	BackfillOrphans bool `json:"backfill_orphans"`

	AreaUnitAliases  []string `json:"area_unit_aliases"`
	BedroomKeywords  []string `json:"bedroom_keywords"`
	BathroomKeywords []string `json:"bathroom_keywords"`
	FloorKeywords    []string `json:"floor_keywords"`
	PriceKeywords    []string `json:"price_keywords"`

	cueRune     rune
	notStartSet map[string]struct{}
	aliasTable  *currency.AliasTable
}

var cueRunes = map[string]rune{
	"comma":     ',',
	"colon":     ':',
	"semicolon": ';',
	"dot":       '.',
}

// Load reads a profile JSON file and compiles it. Any validation error here
// aborts before a single document line is touched.
func Load(path string) (*Profile, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(blob, &p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	if err := p.Compile(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

// Compile validates the profile and precompiles its regexes and lookup sets.
func (p *Profile) Compile() error {
	cue, ok := cueRunes[strings.TrimSpace(p.Cue)]
	if !ok {
		return fmt.Errorf("cue must be one of comma|colon|semicolon|dot, got %q", p.Cue)
	}
	p.cueRune = cue

	if p.MaxCuePos <= 0 {
		p.MaxCuePos = 40
	}
	if p.GatePrefixLen <= 0 {
		p.GatePrefixLen = 24
	}
	switch p.RequireUpper {
	case "", "first", "all":
	default:
		return fmt.Errorf("require_upper must be empty, \"first\" or \"all\", got %q", p.RequireUpper)
	}
	switch p.MultiPricePolicy {
	case "":
		p.MultiPricePolicy = "first_only"
	case "first_only", "enumerate_all":
	default:
		return fmt.Errorf("multi_price_policy must be first_only or enumerate_all, got %q", p.MultiPricePolicy)
	}
	if p.InheritCurrencyMinValue <= 0 {
		p.InheritCurrencyMinValue = 1000
	}
	if p.InlinePriceLookback <= 0 {
		p.InlinePriceLookback = 16
	}
	if len(p.RangeSeparators) == 0 {
		p.RangeSeparators = []string{"-", "–", "/", "a", "hasta", "to"}
	}

	for i := range p.HeaderRules {
		rule := &p.HeaderRules[i]
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("header_rules[%d]: empty pattern", i)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("header_rules[%d]: %w", i, err)
		}
		rule.re = re
		switch rule.Transaction {
		case "", string(internal.TransactionRent), string(internal.TransactionSale), string(internal.TransactionUnknown):
		default:
			return fmt.Errorf("header_rules[%d]: unknown transaction %q", i, rule.Transaction)
		}
	}

	p.notStartSet = make(map[string]struct{}, len(p.NotStartWords))
	for _, w := range p.NotStartWords {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			p.notStartSet[w] = struct{}{}
		}
	}

	p.aliasTable = currency.NewAliasTable(p.CurrencyAliases)
	return nil
}

// CueRune returns the configured cue character. Only valid after Compile.
func (p *Profile) CueRune() rune {
	return p.cueRune
}

// Aliases returns the compiled currency alias table.
func (p *Profile) Aliases() *currency.AliasTable {
	return p.aliasTable
}

// IsNotStartWord reports whether token (upper-cased, trailing dot kept) is in
// the administrative not-start-word list.
func (p *Profile) IsNotStartWord(token string) bool {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	if _, ok := p.notStartSet[token]; ok {
		return true
	}
	_, ok := p.notStartSet[strings.TrimSuffix(token, ".")]
	return ok
}

// MatchHeader runs the ordered header rules, first match wins.
func (p *Profile) MatchHeader(line string) (internal.HeaderContext, bool) {
	for i := range p.HeaderRules {
		if ctx, ok := p.HeaderRules[i].Match(line); ok {
			return ctx, true
		}
	}
	return internal.HeaderContext{}, false
}

// Default returns the stock Honduran-classifieds profile used by tests and
// as a template for new agencies.
func Default() *Profile {
	p := &Profile{
		Agency:       "default",
		Cue:          "comma",
		MaxCuePos:    40,
		RequireUpper: "first",
		NotStartWords: []string{
			"RES", "COL", "BO", "TORRE", "KM", "AVE", "CALLE", "ZONA",
		},
		HeaderRules: []HeaderRule{
			{Pattern: `(?i)^\s*ALQUILERES?\b`, Transaction: "RENT"},
			{Pattern: `(?i)^\s*VENTAS?\b`, Transaction: "SALE"},
			{Pattern: `(?i)^\s*SE\s+ALQUILA`, Transaction: "RENT"},
			{Pattern: `(?i)^\s*SE\s+VENDE`, Transaction: "SALE"},
			{Pattern: `(?i)^\s*APARTAMENTOS?\s*$`, PropertyType: "apartment"},
			{Pattern: `(?i)^\s*CASAS?\s*$`, PropertyType: "house"},
			{Pattern: `(?i)^\s*TERRENOS?\s*$`, PropertyType: "lot"},
			{Pattern: `(?i)^\s*LOCALES?\s*(COMERCIALES?)?\s*$`, PropertyType: "commercial"},
		},
		CurrencyAliases: map[string]string{
			"$": "USD", "US$": "USD", "USD": "USD", "Dlls": "USD", "Dlls.": "USD",
			"L": "HNL", "L.": "HNL", "Lps": "HNL", "Lps.": "HNL", "HNL": "HNL",
			"€": "EUR", "EUR": "EUR",
		},
		RangeSeparators:         []string{"-", "–", "/", "a", "hasta", "to"},
		InheritCurrencyInRanges: true,
		InheritCurrencyMinValue: 1000,
		MultiPricePolicy:        "first_only",
		AcceptK:                 true,
		AcceptMil:               true,
		PriceRequireCurrency:    false,
		RequirePriceBefore:      true,
		InlinePriceLookback:     16,
		BackfillOrphans:         true,
		AreaUnitAliases:         []string{"m2", "mts2", "mt2", "v2", "vrs2", "varas2", "mz", "manzanas"},
		BedroomKeywords:         []string{"hab", "habs", "habitacion", "habitaciones", "dorm", "dormitorios", "cuartos"},
		BathroomKeywords:        []string{"baño", "baños", "bano", "banos"},
		FloorKeywords:           []string{"nivel", "niveles", "piso", "pisos", "planta", "plantas", "parqueo", "parqueos", "estacionamientos"},
		PriceKeywords:           []string{"precio", "valor", "desde", "renta", "mensual"},
	}
	if err := p.Compile(); err != nil {
		panic(err)
	}
	return p
}
