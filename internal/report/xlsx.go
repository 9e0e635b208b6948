package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/sitespider/internal/model"
)

// xlsxSheetName is the sheet holding the URL inventory.
const xlsxSheetName = "URLs"

// XLSXWriter outputs the crawl results as a spreadsheet.
//
// The spreadsheet duplicates the sitemap content in a format that
// non-technical reviewers can filter and annotate, which is how crawl
// inventories tend to circulate in practice.
type XLSXWriter struct {
	// path is the destination .xlsx file.
	path string
}

// NewXLSXWriter creates an XLSXWriter targeting the given file path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write outputs the entries to the spreadsheet, overwriting any
// existing file at the configured path.
func (w *XLSXWriter) Write(entries []model.SitemapEntry) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to flush

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := []any{"URL", "Last-Modified", "Crawled At"}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []any{entry.URL, entry.LastModified, entry.CrawledAt}
		if err := f.SetSheetRow(xlsxSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}
