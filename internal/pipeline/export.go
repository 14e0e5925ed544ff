package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"factura/internal"
)

func WriteJSON(w io.Writer, lines []internal.InvoiceLine) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lines)
}

func WriteNDJSON(w io.Writer, lines []internal.InvoiceLine) error {
	enc := json.NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

type csvRow struct {
	Page        int     `csv:"page"`
	Row         int     `csv:"row"`
	Reference   string  `csv:"reference"`
	Description string  `csv:"description"`
	Quantity    float64 `csv:"quantity"`
	UnitPrice   float64 `csv:"unit_price"`
	LineTotal   float64 `csv:"line_total"`
	TVA         string  `csv:"tva"`
	LookupID    string  `csv:"lookup_id"`
}

func WriteCSV(path string, lines []internal.InvoiceLine) error {
	rows := make([]csvRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, csvRow{
			Page:        line.Page,
			Row:         line.Row,
			Reference:   line.Reference,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
			TVA:         derefString(line.TVA),
			LookupID:    derefString(line.LookupID),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}

func ExportXLSX(path string, lines []internal.InvoiceLine) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"page", "row", "reference", "description", "quantity",
		"unit_price", "line_total", "tva", "lookup_id", "initial_stock", "stock_status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, line := range lines {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, line.Page)
		set(2, line.Row)
		set(3, line.Reference)
		set(4, line.Description)
		set(5, line.Quantity)
		set(6, line.UnitPrice)
		set(7, line.LineTotal)
		set(8, derefString(line.TVA))
		set(9, derefString(line.LookupID))
		if line.InitialStock != nil {
			set(10, *line.InitialStock)
		}
		if line.StockUpdate != nil {
			set(11, string(line.StockUpdate.Status))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
