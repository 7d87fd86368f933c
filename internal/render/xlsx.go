// Package render exports a function curve as a spreadsheet or a PDF plot.
package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rcliao/geofunc/internal/model"
)

// Sheet names used by XLSX.
const (
	SummarySheet = "summary"
	PointsSheet  = "points"
)

// XLSX renders f as a workbook with a summary sheet (identity, spec and one
// row per option) and a points sheet (tag, X, Y).
func XLSX(f *model.Function) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := x.NewSheet(PointsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	summary := [][]any{
		{"ID", f.ID},
		{"Name", f.Name},
		{"Function", f.Spec},
		{"Estimate", f.Estimate},
		{"Points", f.Len()},
	}
	for _, o := range f.Options.Entries() {
		summary = append(summary, []any{o.Key, o.Value})
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := x.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}

	header := []any{"Tag", "X", "Y"}
	if err := x.SetSheetRow(PointsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write points: %w", err)
	}
	for i, p := range f.Points {
		row := []any{f.Tags[i], p.X, p.Y}
		if err := x.SetSheetRow(PointsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write points: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
