package util

import "testing"

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Casa en venta", "Casa en venta"},
		{"mojibake accents", "Casa cÃ©ntrica en GracÃ­as", "Casa céntrica en Gracías"},
		{"mojibake enye", "CabaÃ±a MontaÃ±a", "Cabaña Montaña"},
		{"stray latin1 marker", "100 mÂ²", "100 m2"},
		{"smart quotes", "“Residencial” — zona sur", "\"Residencial\" - zona sur"},
		{"nbsp and narrow nbsp", "L.\u00a014,000\u202fmensuales", "L. 14,000 mensuales"},
		{"zero width and soft hyphen", "apar\u00adta\u200bmento", "apartamento"},
		{"symbol digit spacing", "$550 y 1200$", "$ 550 y 1200 $"},
		{"whitespace collapse", "  Casa \t grande  ", "Casa grande"},
		{"control chars", "Casa\x00linda\x1f", "Casa linda"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeText(tc.input)
			if got != tc.want {
				t.Fatalf("NormalizeText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFirstToken(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Res. El Trapiche", "RES."},
		{"  casa grande", "CASA"},
		{"", ""},
		{"única", "ÚNICA"},
	}
	for _, tc := range cases {
		if got := FirstToken(tc.input); got != tc.want {
			t.Errorf("FirstToken(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCaseGates(t *testing.T) {
	if !IsUpperStart("Casa grande") {
		t.Error("IsUpperStart should accept a leading capital")
	}
	if IsUpperStart("casa Grande") {
		t.Error("IsUpperStart should reject a leading lowercase letter")
	}
	if IsUpperStart("1200 varas") {
		t.Error("IsUpperStart skips digits but still needs an upper letter first")
	}
	if !IsUpperStart("Única oportunidad") {
		t.Error("IsUpperStart should accept accented capitals")
	}
	if !IsAllUpper("VENTA DE CASAS 2024") {
		t.Error("IsAllUpper should ignore digits")
	}
	if IsAllUpper("VENTA de casas") {
		t.Error("IsAllUpper should reject mixed case")
	}
	if IsAllUpper("12345") {
		t.Error("IsAllUpper needs at least one letter")
	}
	if !HasLetter("ñ") || HasLetter("123 - 456") {
		t.Error("HasLetter misclassified input")
	}
}
