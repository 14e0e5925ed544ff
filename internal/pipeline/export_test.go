package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factura/internal"
	"factura/internal/util"
)

func sampleLines() []internal.InvoiceLine {
	return []internal.InvoiceLine{
		{
			Page: 1, Row: 1, Reference: "REF001", Description: "Widget A",
			Quantity: 3, UnitPrice: 10.5, LineTotal: 31.5,
			TVA: util.StringPtr("20%"), Raw: "REF001 Widget A 3 10,50 31,50 20%",
			LookupID: util.StringPtr("77"),
		},
		{
			Page: 1, Row: 2, Reference: "REF002", Description: "Widget B",
			Quantity: 1, UnitPrice: 4, LineTotal: 4,
			Raw: "REF002 Widget B 1 4,00 4,00",
		},
	}
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, sampleLines()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if !strings.Contains(rows[0], `"reference":"REF001"`) {
		t.Fatalf("row: %s", rows[0])
	}
	if strings.Contains(rows[1], "lookup_id") {
		t.Fatalf("unset optional field should be omitted: %s", rows[1])
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "lines.csv")
	if err := WriteCSV(path, sampleLines()); err != nil {
		t.Fatalf("write: %v", err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rows := strings.Split(strings.TrimSpace(string(blob)), "\n")
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if !strings.HasPrefix(rows[0], "page,row,reference,description,quantity") {
		t.Fatalf("header: %s", rows[0])
	}
	if !strings.Contains(rows[1], "REF001") || !strings.Contains(rows[1], "Widget A") {
		t.Fatalf("row: %s", rows[1])
	}
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "lines.xlsx")
	if err := ExportXLSX(path, sampleLines()); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty workbook")
	}
}
