package storage

import (
	"path/filepath"
	"testing"
	"time"

	"anuncios/internal"
	"anuncios/internal/diag"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndExportRoundTrip(t *testing.T) {
	db := openTestDB(t)

	docID, err := db.InsertDocument("acme", "/feeds/enero.txt", 12)
	if err != nil {
		t.Fatal(err)
	}

	withPrice := internal.ParsedListing{
		LineNo:  2,
		RawText: "Apartamento Palmira, 2 hab, L. 14,000",
		Header:  internal.HeaderContext{Transaction: internal.TransactionRent},
		Prices: []internal.PriceCandidate{
			{CurrencyCode: "HNL", Amount: 14000, Confidence: 0.8, Source: internal.Span{Start: 28, End: 37}},
		},
	}
	priceless := internal.ParsedListing{
		LineNo:  4,
		RawText: "Casa Kennedy, precio a convenir",
		Header: internal.HeaderContext{
			Transaction:  internal.TransactionSale,
			PropertyType: internal.StringPtr("house"),
		},
		QCFlags: []string{internal.QCNoPriceFound},
	}
	if _, err := db.InsertListing(docID, withPrice); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertListing(docID, priceless); err != nil {
		t.Fatal(err)
	}

	rows, err := db.GetExportRows(docID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.LineNo != 2 || first.Transaction != "RENT" {
		t.Errorf("first row = %+v", first)
	}
	if first.CurrencyCode == nil || *first.CurrencyCode != "HNL" || first.Amount == nil || *first.Amount != 14000 {
		t.Errorf("first row price columns = %+v", first)
	}

	second := rows[1]
	if second.Amount != nil || second.CurrencyCode != nil {
		t.Errorf("priceless row carries price columns: %+v", second)
	}
	if second.PropertyType == nil || *second.PropertyType != "house" {
		t.Errorf("property type lost: %+v", second)
	}
	if second.QCFlags != internal.QCNoPriceFound {
		t.Errorf("qc flags = %q", second.QCFlags)
	}
}

func TestExportRowsScopedToDocument(t *testing.T) {
	db := openTestDB(t)
	docA, err := db.InsertDocument("acme", "a.txt", 1)
	if err != nil {
		t.Fatal(err)
	}
	docB, err := db.InsertDocument("acme", "b.txt", 1)
	if err != nil {
		t.Fatal(err)
	}
	listing := internal.ParsedListing{LineNo: 0, RawText: "Casa linda, L. 7,000",
		Header: internal.HeaderContext{Transaction: internal.TransactionUnknown}}
	if _, err := db.InsertListing(docA, listing); err != nil {
		t.Fatal(err)
	}

	rows, err := db.GetExportRows(docB)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("document B should have no rows, got %+v", rows)
	}
}

func TestInsertRun(t *testing.T) {
	db := openTestDB(t)
	docID, err := db.InsertDocument("acme", "a.txt", 3)
	if err != nil {
		t.Fatal(err)
	}

	dc := diag.NewCollector()
	dc.NoiseLines = 2
	dc.InlineSplits = 1
	dc.Flag(internal.QCNoPriceFound)

	if err := db.InsertRun(docID, dc, 42*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	var noise, splits int
	var flagsJSON string
	err = db.conn.QueryRow(
		`SELECT noiseLines, inlineSplits, flagsJson FROM runs WHERE documentId = ?`, docID,
	).Scan(&noise, &splits, &flagsJSON)
	if err != nil {
		t.Fatal(err)
	}
	if noise != 2 || splits != 1 {
		t.Errorf("counters = %d, %d", noise, splits)
	}
	if flagsJSON != `{"NoPriceFound":1}` {
		t.Errorf("flagsJson = %s", flagsJSON)
	}
}
