// Package currency holds the per-profile alias table mapping surface tokens
// seen in ad text ("$", "US$", "Lps.", "L.") to canonical currency codes.
// The table is built once per agency profile and is read-only afterwards, so
// it can be shared across concurrently processed documents.
package currency

import (
	"sort"
	"strings"
)

type AliasTable struct {
	exact  map[string]string
	folded map[string]string
	tokens []string
}

// NewAliasTable builds a table from the profile's token→code map. Tokens are
// returned by Tokens longest first so regex alternations prefer "Lps." over
// "L.".
func NewAliasTable(aliases map[string]string) *AliasTable {
	t := &AliasTable{
		exact:  make(map[string]string, len(aliases)),
		folded: make(map[string]string, len(aliases)),
		tokens: make([]string, 0, len(aliases)),
	}
	for token, code := range aliases {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		t.exact[token] = code
		t.folded[strings.ToLower(token)] = code
		t.tokens = append(t.tokens, token)
	}
	sort.Slice(t.tokens, func(i, j int) bool {
		if len(t.tokens[i]) != len(t.tokens[j]) {
			return len(t.tokens[i]) > len(t.tokens[j])
		}
		return t.tokens[i] < t.tokens[j]
	})
	return t
}

// Resolve looks a surface token up, case-sensitive first, then case-folded.
func (t *AliasTable) Resolve(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if code, ok := t.exact[token]; ok {
		return code, true
	}
	if code, ok := t.folded[strings.ToLower(token)]; ok {
		return code, true
	}
	return "", false
}

// Tokens returns every alias token, longest first.
func (t *AliasTable) Tokens() []string {
	return t.tokens
}

func (t *AliasTable) Len() int {
	return len(t.exact)
}
