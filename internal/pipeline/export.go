package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"anuncios/internal"
)

var exportHeaders = []string{
	"document_id", "line_no", "raw_text",
	"transaction", "property_type", "category",
	"currency", "amount", "is_range_min", "is_range_max", "confidence",
	"qc_flags",
}

// RowsFromListings flattens parsed listings to one row per price candidate.
// A listing with no surviving candidate still yields one row so the raw
// text is never lost downstream.
func RowsFromListings(documentID int, listings []internal.ParsedListing) []internal.ExportRow {
	out := make([]internal.ExportRow, 0, len(listings))
	for _, listing := range listings {
		base := internal.ExportRow{
			DocumentID:   documentID,
			LineNo:       listing.LineNo,
			RawText:      listing.RawText,
			Transaction:  string(listing.Header.Transaction),
			PropertyType: listing.Header.PropertyType,
			Category:     listing.Header.Category,
			QCFlags:      strings.Join(listing.QCFlags, ";"),
		}
		if len(listing.Prices) == 0 {
			out = append(out, base)
			continue
		}
		for _, price := range listing.Prices {
			row := base
			row.CurrencyCode = internal.StringPtr(price.CurrencyCode)
			row.Amount = internal.FloatPtr(price.Amount)
			row.IsRangeMin = price.IsRangeMin
			row.IsRangeMax = price.IsRangeMax
			row.Confidence = internal.FloatPtr(price.Confidence)
			out = append(out, row)
		}
	}
	return out
}

// ExportRowsToCSV writes rows for the downstream FX/GIS consumers.
func ExportRowsToCSV(rows []internal.ExportRow, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.DocumentID),
			strconv.Itoa(row.LineNo),
			row.RawText,
			row.Transaction,
			derefString(row.PropertyType),
			derefString(row.Category),
			derefString(row.CurrencyCode),
			formatFloat(row.Amount),
			formatBool(row.IsRangeMin),
			formatBool(row.IsRangeMax),
			formatFloat(row.Confidence),
			row.QCFlags,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ExportRowsToXLSX(rows []internal.ExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.DocumentID)
		set(2, row.LineNo)
		set(3, row.RawText)
		set(4, row.Transaction)
		set(5, derefString(row.PropertyType))
		set(6, derefString(row.Category))
		set(7, derefString(row.CurrencyCode))
		set(8, derefFloat(row.Amount))
		set(9, row.IsRangeMin)
		set(10, row.IsRangeMax)
		set(11, derefFloat(row.Confidence))
		set(12, row.QCFlags)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return ""
}
