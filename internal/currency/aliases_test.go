package currency

import "testing"

func testTable() *AliasTable {
	return NewAliasTable(map[string]string{
		"$": "USD", "US$": "USD", "USD": "USD",
		"L": "HNL", "L.": "HNL", "Lps": "HNL", "Lps.": "HNL",
	})
}

func TestResolve(t *testing.T) {
	table := testTable()
	cases := []struct {
		token string
		want  string
		ok    bool
	}{
		{"$", "USD", true},
		{"US$", "USD", true},
		{"usd", "USD", true},
		{"Lps.", "HNL", true},
		{"lps", "HNL", true},
		{" L. ", "HNL", true},
		{"EUR", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := table.Resolve(tc.token)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tc.token, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTokensLongestFirst(t *testing.T) {
	tokens := testTable().Tokens()
	if len(tokens) != 7 {
		t.Fatalf("expected 7 tokens, got %d", len(tokens))
	}
	for i := 1; i < len(tokens); i++ {
		if len(tokens[i]) > len(tokens[i-1]) {
			t.Fatalf("tokens not sorted longest first: %q before %q", tokens[i-1], tokens[i])
		}
	}
	if tokens[0] != "Lps." {
		t.Errorf("longest token should come first, got %q", tokens[0])
	}
}
