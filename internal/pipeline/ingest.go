package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Ingestion is deliberately thin: loaders turn a feed file into the ordered
// raw text lines the engine consumes and nothing else. All parsing
// intelligence lives behind this boundary.

var reBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// SupportedFeedFile reports whether path has a feed extension the loaders
// understand.
func SupportedFeedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".html", ".htm", ".pdf", ".xlsx", ".xls", ".eml":
		return true
	}
	return false
}

// LinesFromFile loads a feed file and returns its raw text lines in order.
func LinesFromFile(path string) ([]string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", "":
		return splitLines(string(blob)), nil
	case ".html", ".htm":
		return linesFromHTML(blob)
	case ".pdf":
		return linesFromPDF(blob)
	case ".xlsx", ".xls":
		return linesFromXLSX(blob)
	case ".eml":
		return linesFromEML(blob)
	default:
		return nil, fmt.Errorf("unsupported feed file: %s", path)
	}
}

// linesFromHTML strips portal markup from a scraped page, keeping only the
// visible text. <br> runs become line boundaries before the DOM walk so
// glued ad fragments stay on separate lines.
func linesFromHTML(blob []byte) ([]string, error) {
	html := reBreakTag.ReplaceAllString(string(blob), "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Find("script,style,noscript,nav,footer").Remove()

	var lines []string
	doc.Find("p,li,td,h1,h2,h3,h4,div").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		lines = append(lines, splitLines(sel.Text())...)
	})
	if len(lines) == 0 {
		lines = splitLines(doc.Text())
	}
	return lines, nil
}

func linesFromPDF(blob []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, err
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return lines, nil
}

func linesFromXLSX(blob []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " "))
			}
		}
	}
	return lines, nil
}

// linesFromEML reads an emailed agency feed: the text body plus any XLSX or
// PDF attachment.
func linesFromEML(blob []byte) ([]string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}

	lines := splitLines(env.Text)
	for _, att := range env.Attachments {
		lower := strings.ToLower(att.FileName)
		switch {
		case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
			if extra, err := linesFromXLSX(att.Content); err == nil {
				lines = append(lines, extra...)
			}
		case strings.HasSuffix(lower, ".pdf"):
			if extra, err := linesFromPDF(att.Content); err == nil {
				lines = append(lines, extra...)
			}
		}
	}
	return lines, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
