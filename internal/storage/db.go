package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"anuncios/internal"
	"anuncios/internal/diag"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  agency TEXT NOT NULL,
  path TEXT NOT NULL,
  lineCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  rawText TEXT NOT NULL,
  tx TEXT NOT NULL,
  propertyType TEXT,
  category TEXT,
  qcFlags TEXT NOT NULL DEFAULT '',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_listings_document ON listings(documentId);

CREATE TABLE IF NOT EXISTS prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listingId INTEGER NOT NULL,
  currency TEXT NOT NULL,
  amount REAL NOT NULL,
  isRangeMin INTEGER NOT NULL DEFAULT 0,
  isRangeMax INTEGER NOT NULL DEFAULT 0,
  confidence REAL NOT NULL,
  sourceStart INTEGER NOT NULL,
  sourceEnd INTEGER NOT NULL,
  FOREIGN KEY(listingId) REFERENCES listings(id)
);
CREATE INDEX IF NOT EXISTS idx_prices_listing ON prices(listingId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  noiseLines INTEGER NOT NULL,
  brokenTitleMerges INTEGER NOT NULL,
  inlineSplits INTEGER NOT NULL,
  danglingGlues INTEGER NOT NULL,
  orphanBackfills INTEGER NOT NULL,
  flagsJson TEXT NOT NULL,
  totalMs REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertDocument(agency, path string, lineCount int) (int, error) {
	res, err := d.conn.Exec(
		`INSERT INTO documents (agency, path, lineCount) VALUES (?, ?, ?)`,
		agency, path, lineCount,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (d *DB) InsertListing(documentID int, listing internal.ParsedListing) (int, error) {
	res, err := d.conn.Exec(
		`INSERT INTO listings (documentId, lineNo, rawText, tx, propertyType, category, qcFlags)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		documentID, listing.LineNo, listing.RawText,
		string(listing.Header.Transaction), listing.Header.PropertyType, listing.Header.Category,
		joinFlags(listing.QCFlags),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, price := range listing.Prices {
		if _, err := d.conn.Exec(
			`INSERT INTO prices (listingId, currency, amount, isRangeMin, isRangeMax, confidence, sourceStart, sourceEnd)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, price.CurrencyCode, price.Amount,
			boolInt(price.IsRangeMin), boolInt(price.IsRangeMax),
			price.Confidence, price.Source.Start, price.Source.End,
		); err != nil {
			return 0, err
		}
	}
	return int(id), nil
}

func (d *DB) InsertRun(documentID int, dc *diag.Collector, elapsed time.Duration) error {
	flagCounts := map[string]int{}
	for _, name := range dc.Flags() {
		flagCounts[name] = dc.FlagCount(name)
	}
	blob, err := json.Marshal(flagCounts)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(
		`INSERT INTO runs (documentId, noiseLines, brokenTitleMerges, inlineSplits, danglingGlues, orphanBackfills, flagsJson, totalMs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		documentID, dc.NoiseLines, dc.BrokenTitleMerges, dc.InlineSplits,
		dc.DanglingGlues, dc.OrphanBackfills, string(blob),
		float64(elapsed.Milliseconds()),
	)
	return err
}

// GetExportRows returns the flattened price rows for one document, one row
// per price candidate (or one empty-price row for priceless listings).
func (d *DB) GetExportRows(documentID int) ([]internal.ExportRow, error) {
	rows, err := d.conn.Query(
		`SELECT l.lineNo, l.rawText, l.tx, l.propertyType, l.category, l.qcFlags,
		        p.currency, p.amount, p.isRangeMin, p.isRangeMax, p.confidence
		 FROM listings l
		 LEFT JOIN prices p ON p.listingId = l.id
		 WHERE l.documentId = ?
		 ORDER BY l.lineNo, p.id`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ExportRow{}
	for rows.Next() {
		var row internal.ExportRow
		var propertyType, category, curr sql.NullString
		var amount, confidence sql.NullFloat64
		var rangeMin, rangeMax sql.NullInt64
		var qcFlags string
		if err := rows.Scan(
			&row.LineNo, &row.RawText, &row.Transaction, &propertyType, &category, &qcFlags,
			&curr, &amount, &rangeMin, &rangeMax, &confidence,
		); err != nil {
			return nil, err
		}
		row.DocumentID = documentID
		row.QCFlags = qcFlags
		if propertyType.Valid {
			row.PropertyType = internal.StringPtr(propertyType.String)
		}
		if category.Valid {
			row.Category = internal.StringPtr(category.String)
		}
		if curr.Valid {
			row.CurrencyCode = internal.StringPtr(curr.String)
		}
		if amount.Valid {
			row.Amount = internal.FloatPtr(amount.Float64)
		}
		row.IsRangeMin = rangeMin.Valid && rangeMin.Int64 != 0
		row.IsRangeMax = rangeMax.Valid && rangeMax.Int64 != 0
		if confidence.Valid {
			row.Confidence = internal.FloatPtr(confidence.Float64)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func joinFlags(flags []string) string {
	out := ""
	for i, f := range flags {
		if i > 0 {
			out += ";"
		}
		out += f
	}
	return out
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
