package pipeline

import (
	"strings"
	"testing"

	"anuncios/internal"
	"anuncios/internal/profile"
)

func TestProcessLines(t *testing.T) {
	proc := NewProcessor(profile.Default())
	result := proc.ProcessLines([]string{
		"ALQUILERES",
		"Apartamento Palmira, 2 hab, L. 14,000 mensuales",
		"con parqueo techado",
		"Casa Kennedy, 3 hab, precio a convenir",
	})

	if len(result.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(result.Listings), result.Listings)
	}

	first := result.Listings[0]
	if first.Header.Transaction != internal.TransactionRent {
		t.Errorf("first listing transaction = %s, want RENT", first.Header.Transaction)
	}
	if len(first.Prices) != 1 || first.Prices[0].CurrencyCode != "HNL" || first.Prices[0].Amount != 14000 {
		t.Errorf("first listing prices = %+v", first.Prices)
	}
	if !strings.Contains(first.RawText, "con parqueo techado") {
		t.Errorf("continuation line missing from raw text: %q", first.RawText)
	}

	second := result.Listings[1]
	if len(second.Prices) != 0 {
		t.Errorf("second listing should have no prices: %+v", second.Prices)
	}
	if !containsFlag(second.QCFlags, internal.QCNoPriceFound) {
		t.Errorf("missing NoPriceFound flag: %v", second.QCFlags)
	}
	if result.Diag.FlagCount(internal.QCNoPriceFound) != 1 {
		t.Errorf("collector NoPriceFound count = %d", result.Diag.FlagCount(internal.QCNoPriceFound))
	}
}

func TestProcessLinesNormalizesBeforeSegmenting(t *testing.T) {
	proc := NewProcessor(profile.Default())
	// mojibake plus glued currency symbol, as OCR delivers it
	result := proc.ProcessLines([]string{
		"Casa cÃ©ntrica dos plantas, 3 hab, $85,000 negociable",
	})
	if len(result.Listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(result.Listings))
	}
	listing := result.Listings[0]
	if !strings.Contains(listing.RawText, "céntrica") {
		t.Errorf("mojibake not repaired: %q", listing.RawText)
	}
	if len(listing.Prices) != 1 || listing.Prices[0].Amount != 85000 || listing.Prices[0].CurrencyCode != "USD" {
		t.Errorf("prices = %+v", listing.Prices)
	}
}

func TestProcessLinesEmptyDocument(t *testing.T) {
	proc := NewProcessor(profile.Default())
	result := proc.ProcessLines(nil)
	if len(result.Blocks) != 0 || len(result.Listings) != 0 {
		t.Fatalf("empty input produced output: %+v", result)
	}
}

func containsFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}
