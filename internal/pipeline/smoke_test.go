package pipeline

import (
	"path/filepath"
	"testing"

	"anuncios/internal"
)

// End-to-end pass over a realistic agency feed: ingest, segment, price,
// persist, export.
func TestSmokeFeedFixture(t *testing.T) {
	svc, db := newTestService(t)

	res, err := svc.ProcessFile(filepath.Join("testdata", "feed.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Listings != 9 {
		t.Fatalf("parsed %d listings, want 9", res.Listings)
	}

	if res.Diag.DanglingGlues != 1 {
		t.Errorf("DanglingGlues = %d, want 1", res.Diag.DanglingGlues)
	}
	if res.Diag.BrokenTitleMerges != 2 {
		t.Errorf("BrokenTitleMerges = %d, want 2", res.Diag.BrokenTitleMerges)
	}
	if res.Diag.InlineSplits != 0 {
		t.Errorf("InlineSplits = %d, want 0", res.Diag.InlineSplits)
	}
	if got := res.Diag.FlagCount(internal.QCNoPriceFound); got != 2 {
		t.Errorf("NoPriceFound count = %d, want 2", got)
	}

	rows, err := db.GetExportRows(res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	// one row per price candidate, one empty row per priceless listing
	if len(rows) != 12 {
		t.Fatalf("exported %d rows, want 12", len(rows))
	}

	byCurrency := map[string]int{}
	ranges := 0
	for _, row := range rows {
		if row.CurrencyCode != nil {
			byCurrency[*row.CurrencyCode]++
		}
		if row.IsRangeMin || row.IsRangeMax {
			ranges++
		}
	}
	if byCurrency["HNL"] != 6 || byCurrency["USD"] != 4 {
		t.Errorf("currency spread = %v, want HNL:6 USD:4", byCurrency)
	}
	if ranges != 4 {
		t.Errorf("range-tagged rows = %d, want 4", ranges)
	}

	sales := 0
	for _, row := range rows {
		if row.Transaction == string(internal.TransactionSale) {
			sales++
		}
	}
	if sales != 7 {
		t.Errorf("SALE rows = %d, want 7", sales)
	}
}
